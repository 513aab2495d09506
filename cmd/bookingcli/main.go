package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"filmsphere/internal/banner"
	"filmsphere/internal/booking"
	"filmsphere/internal/config"
	"filmsphere/internal/draft"
	"filmsphere/internal/gateway"
	"filmsphere/internal/logger"
	"filmsphere/internal/models"
	"filmsphere/internal/notify"
	"filmsphere/internal/seats"
)

// bookingcli drives the booking flow end to end against a running
// reservation backend: load seats, toggle a selection, reserve, then
// confirm or cancel. It is demo scaffolding around the client core.
func main() {
	showID := flag.Int64("show", 0, "show id to book")
	seatIDs := flag.String("seats", "", "comma-separated seat labels, e.g. A1,A2")
	confirm := flag.Bool("confirm", false, "confirm the reservation instead of cancelling it")
	flag.Parse()

	// .env is optional; environment variables win.
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	if *showID == 0 || *seatIDs == "" {
		logger.Fatal("usage: bookingcli -show <id> -seats A1,A2 [-confirm]")
	}

	storage, err := newStorage(cfg)
	if err != nil {
		logger.Fatal("failed to set up draft storage", "error", err)
	}

	client := gateway.New(gateway.Config{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.SessionToken,
		Timeout: cfg.APITimeout,
	})

	notifier := notify.NewChannel(cfg.NotificationTTL)
	drafts := draft.NewStore(storage)
	controller := seats.NewController(client, drafts, notifier)
	orchestrator := booking.NewOrchestrator(client, drafts, notifier)

	client.OnSessionExpired = func() {
		orchestrator.Reset()
		notifier.Clear()
	}

	watcher := banner.New(drafts, orchestrator)
	watcher.Start()
	defer watcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	profile, err := client.Profile(ctx)
	if err != nil {
		logger.Fatal("failed to fetch profile", "error", err)
	}
	orchestrator.SetBalance(profile.Balance)
	log.Info("session ready", "user", profile.Username, "balance", profile.Balance)

	if err := orchestrator.SyncFromServer(ctx); err != nil {
		log.Warn("could not sync server-side drafts", "error", err)
	}

	show := &models.Show{ID: *showID}
	layout, err := controller.LoadSeats(ctx, show)
	if err != nil {
		logger.Fatal("failed to load seats", "show_id", *showID, "error", err)
	}
	log.Info("seats loaded", "show_id", *showID, "rows", len(layout))

	if details, ok := orchestrator.Resume(show); ok {
		log.Info("resuming locked draft", "booking_id", details.ID, "total_price", details.TotalPrice)
	} else {
		if err := toggleByLabel(controller, layout, *seatIDs); err != nil {
			logger.Fatal("seat selection failed", "error", err)
		}
		log.Info("seats selected", "count", len(controller.Selected()), "total_price", controller.TotalPrice())

		if _, err := orchestrator.Reserve(ctx, show, controller.Selected()); err != nil {
			drainNotifications(notifier, log)
			logger.Fatal("reserve failed", "error", err)
		}
	}

	d := drafts.Current()
	if d == nil {
		logger.Fatal("draft disappeared after reserve")
	}
	if rem := drafts.TimeRemaining(); rem != nil {
		log.Info("hold acquired", "booking_id", d.BookingID,
			"expires_in", fmt.Sprintf("%d:%02d", rem.Minutes, rem.Seconds))
	}

	if *confirm {
		details, err := orchestrator.Confirm(ctx, d.BookingID, d.Details.TotalPrice)
		if err != nil {
			drainNotifications(notifier, log)
			logger.Fatal("confirm failed", "error", err)
		}
		log.Info("booking confirmed", "booking_id", details.ID)
	} else {
		if err := orchestrator.CancelDraft(ctx); err != nil {
			logger.Fatal("cancel failed", "error", err)
		}
		log.Info("draft cancelled, seats released")
	}

	drainNotifications(notifier, log)
}

func newStorage(cfg *config.Config) (draft.Storage, error) {
	switch cfg.StorageBackend {
	case "redis":
		return draft.NewRedisStorage(cfg.Redis)
	case "memory":
		return draft.NewMemoryStorage(), nil
	default:
		return draft.NewFileStorage(cfg.StoragePath), nil
	}
}

func toggleByLabel(controller *seats.Controller, layout []seats.Row, labels string) error {
	byID := make(map[string]models.Seat)
	for _, row := range layout {
		for _, s := range row.Seats {
			byID[s.ID] = s
		}
	}

	for _, label := range strings.Split(labels, ",") {
		label = strings.TrimSpace(label)
		seat, ok := byID[label]
		if !ok {
			return fmt.Errorf("unknown seat %q", label)
		}
		if err := controller.Toggle(seat); err != nil {
			return err
		}
	}
	return nil
}

func drainNotifications(notifier *notify.Channel, log *slog.Logger) {
	for _, msg := range notifier.Active() {
		log.Info("notification", "kind", msg.Kind, "text", msg.Text)
	}
}

package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"filmsphere/internal/apierror"
	"filmsphere/internal/draft"
	"filmsphere/internal/logger"
	"filmsphere/internal/models"
	"filmsphere/internal/notify"
)

// Step is the orchestrator's position in the two-phase flow. Confirm is
// only reachable from StepPayment, which is only reachable through a
// successful Reserve or a resumed locked draft.
type Step int

const (
	StepSelectSeats Step = iota + 1
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepSelectSeats:
		return "select_seats"
	case StepPayment:
		return "payment"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// API is the slice of the gateway the orchestrator drives.
type API interface {
	ReserveSeats(ctx context.Context, showID int64, seatUUIDs []string) (*models.BookingDetails, error)
	ConfirmBooking(ctx context.Context, bookingID int64) (*models.BookingDetails, error)
	CancelDraftBooking(ctx context.Context, bookingID int64) error
	UserDraftBookings(ctx context.Context) ([]models.BookingDetails, error)
	UserBookings(ctx context.Context) ([]models.BookingDetails, error)
}

// Orchestrator drives the reserve→confirm flow over the draft store and
// the gateway. Gateway failures never escape it as surprises: every error
// is also pushed to the notification channel.
type Orchestrator struct {
	mu       sync.Mutex
	api      API
	drafts   *draft.Store
	notifier *notify.Channel
	log      *slog.Logger

	step     Step
	balance  float64
	bookings []models.BookingDetails
	synced   bool
}

func NewOrchestrator(api API, drafts *draft.Store, notifier *notify.Channel) *Orchestrator {
	return &Orchestrator{
		api:      api,
		drafts:   drafts,
		notifier: notifier,
		log:      logger.WithFields("component", "booking"),
		step:     StepSelectSeats,
	}
}

// Step returns the current flow position.
func (o *Orchestrator) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.step
}

// SetBalance updates the cached balance used by the confirm pre-check.
// The server re-validates regardless.
func (o *Orchestrator) SetBalance(balance float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.balance = balance
}

// Reserve asks the server to lock the selected seats. On success the draft
// is promoted to locked and the flow advances to payment. On failure the
// selection stays intact at the seat-selection step.
func (o *Orchestrator) Reserve(ctx context.Context, show *models.Show, seats []models.Seat) (*models.BookingDetails, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if len(seats) == 0 {
		return nil, apierror.New(apierror.KindAPI, "no seats selected")
	}

	// A pending lock must be resolved before reserving again; this is
	// decided locally, without contacting the server.
	if d := o.drafts.Current(); d.Locked() {
		if d.ShowID != show.ID {
			o.notifier.Push("You already have a pending booking. Complete or cancel it first.", notify.KindError)
			return nil, apierror.New(apierror.KindDraftConflict, "a locked draft exists for another show")
		}
		o.step = StepPayment
		return nil, apierror.New(apierror.KindDraftConflict, "seats for this show are already reserved")
	}

	uuids := make([]string, len(seats))
	for i, s := range seats {
		uuids[i] = s.UUID
	}

	if err := o.drafts.Start(show.ID, show.MovieID, seats); err != nil {
		return nil, err
	}

	details, err := o.api.ReserveSeats(ctx, show.ID, uuids)
	if err != nil {
		o.log.Warn("reserve failed", "show_id", show.ID, "seats", len(seats), "error", err)
		o.notifier.Push(userMessage(err, "Failed to reserve seats."), notify.KindError)
		return nil, err
	}

	if err := o.drafts.PromoteToLocked(details.ID, details); err != nil {
		return nil, fmt.Errorf("record seat lock: %w", err)
	}

	o.step = StepPayment
	o.notifier.Push("Seats reserved successfully!", notify.KindSuccess)
	o.log.Info("seats reserved", "booking_id", details.ID, "show_id", show.ID, "total_price", details.TotalPrice)
	return details, nil
}

// Confirm finalizes the locked draft. The cached balance is checked first
// so an obviously unaffordable confirm never leaves the client. On success
// the draft is cleared and the booking appended to the history.
func (o *Orchestrator) Confirm(ctx context.Context, draftBookingID int64, totalPrice float64) (*models.BookingDetails, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step != StepPayment {
		return nil, apierror.New(apierror.KindAPI, "nothing to confirm")
	}

	if o.balance < totalPrice {
		o.notifier.Push("Insufficient balance.", notify.KindError)
		return nil, apierror.New(apierror.KindBalanceInsufficient, "insufficient balance")
	}

	details, err := o.api.ConfirmBooking(ctx, draftBookingID)
	if err != nil {
		// The draft stays locked so the user can retry or cancel.
		o.log.Warn("confirm failed", "booking_id", draftBookingID, "error", err)
		o.notifier.Push(userMessage(err, "Failed to confirm booking."), notify.KindError)
		if apierror.Is(err, apierror.KindHoldExpired) {
			o.drafts.Clear()
			o.step = StepSelectSeats
		}
		return nil, err
	}

	o.drafts.Clear()
	o.bookings = append(o.bookings, *details)
	o.step = StepSelectSeats
	o.notifier.Push("Booking confirmed successfully!", notify.KindSuccess)
	o.log.Info("booking confirmed", "booking_id", details.ID, "total_price", totalPrice)
	return details, nil
}

// CancelDraft releases the server hold and clears the draft slot. Calling
// it with no active draft is a safe no-op.
func (o *Orchestrator) CancelDraft(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	d := o.drafts.Current()
	if d == nil {
		return nil
	}

	if d.Locked() {
		if err := o.api.CancelDraftBooking(ctx, d.BookingID); err != nil {
			// A hold the server already expired is as released as a
			// cancelled one; anything else keeps the draft for a retry.
			if !apierror.Is(err, apierror.KindHoldExpired) {
				o.notifier.Push(userMessage(err, "Failed to cancel the reservation."), notify.KindError)
				return err
			}
		}
		o.notifier.Push("Draft booking canceled. Seats are now unlocked.", notify.KindSuccess)
	}

	o.drafts.Clear()
	o.step = StepSelectSeats
	return nil
}

// Resume moves straight to the payment step when a locked draft for this
// show already exists, reusing the cached booking snapshot instead of
// re-reserving.
func (o *Orchestrator) Resume(show *models.Show) (*models.BookingDetails, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	d := o.drafts.Current()
	if !d.Locked() || d.ShowID != show.ID {
		return nil, false
	}
	o.step = StepPayment
	return d.Details, true
}

// SyncFromServer adopts the newest server-side draft when the local slot
// is empty, e.g. after state was lost on another device. It runs at most
// once per orchestrator lifetime.
func (o *Orchestrator) SyncFromServer(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.synced || o.drafts.Current() != nil {
		return nil
	}
	o.synced = true

	remote, err := o.api.UserDraftBookings(ctx)
	if err != nil {
		return fmt.Errorf("sync draft bookings: %w", err)
	}
	if len(remote) == 0 {
		return nil
	}

	latest := remote[0]
	movieID := ""
	if latest.Show != nil {
		movieID = latest.Show.MovieID
	}
	if err := o.drafts.Adopt(&latest, movieID); err != nil {
		return fmt.Errorf("adopt draft booking: %w", err)
	}
	o.step = StepPayment
	o.log.Info("adopted server-side draft", "booking_id", latest.ID)
	return nil
}

// RefreshBookings reloads the confirmed booking history.
func (o *Orchestrator) RefreshBookings(ctx context.Context) error {
	bookings, err := o.api.UserBookings(ctx)
	if err != nil {
		o.notifier.Push(userMessage(err, "Failed to fetch booking history."), notify.KindError)
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.bookings = bookings
	return nil
}

// Bookings returns the cached confirmed booking history.
func (o *Orchestrator) Bookings() []models.BookingDetails {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.BookingDetails, len(o.bookings))
	copy(out, o.bookings)
	return out
}

// Reset wipes all orchestrator state and the draft slot, used when the
// session expires.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drafts.Clear()
	o.step = StepSelectSeats
	o.balance = 0
	o.bookings = nil
	o.synced = false
}

// userMessage prefers the typed error's text for user display.
func userMessage(err error, fallback string) string {
	var ae *apierror.Error
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	return fallback
}

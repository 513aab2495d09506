package banner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"filmsphere/internal/draft"
	"filmsphere/internal/logger"
	"filmsphere/internal/models"
)

// State is the banner's visibility state.
type State int

const (
	Hidden State = iota
	Visible
	Dismissed
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Visible:
		return "visible"
	case Dismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// urgentWindow is the remaining time below which the banner re-appears
// even after a manual dismissal.
const urgentWindow = 60 * time.Second

// Canceller releases the server hold behind the draft.
type Canceller interface {
	CancelDraft(ctx context.Context) error
}

// Banner watches the draft store from anywhere in the app and surfaces
// the hold countdown. Every tick recomputes remaining time from the
// absolute server creation timestamp, so the countdown never drifts. When
// the hold runs out the banner clears the draft as a client-side fallback;
// the server expires the hold authoritatively on its own.
type Banner struct {
	mu        sync.Mutex
	drafts    *draft.Store
	canceller Canceller
	log       *slog.Logger

	state     State
	remaining *draft.Remaining

	interval time.Duration
	ticker   *time.Ticker
	done     chan struct{}
}

func New(drafts *draft.Store, canceller Canceller) *Banner {
	return &Banner{
		drafts:    drafts,
		canceller: canceller,
		log:       logger.WithFields("component", "banner"),
		state:     Hidden,
		interval:  time.Second,
		done:      make(chan struct{}),
	}
}

// Start begins the one-second watch loop. It runs an initial tick
// immediately so a rehydrated draft is noticed before the first interval.
func (b *Banner) Start() {
	b.ticker = time.NewTicker(b.interval)
	b.Tick()

	go func() {
		for {
			select {
			case <-b.ticker.C:
				b.Tick()
			case <-b.done:
				return
			}
		}
	}()
}

// Stop cancels the watch loop.
func (b *Banner) Stop() {
	if b.ticker != nil {
		b.ticker.Stop()
	}
	close(b.done)
}

// Tick recomputes the countdown and applies the visibility transitions.
func (b *Banner) Tick() {
	b.mu.Lock()
	defer b.mu.Unlock()

	rem := b.drafts.TimeRemaining()
	if rem == nil {
		// Draft gone: confirmed, cancelled or never locked.
		b.state = Hidden
		b.remaining = nil
		return
	}
	b.remaining = rem

	if rem.Expired() {
		b.log.Info("draft hold ran out, clearing draft")
		b.drafts.Clear()
		b.state = Hidden
		b.remaining = nil
		return
	}

	switch {
	case rem.Total <= urgentWindow:
		// Urgency overrides an earlier dismissal.
		b.state = Visible
	case b.state == Hidden:
		b.state = Visible
	}
}

// State returns the current visibility state.
func (b *Banner) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Remaining returns the countdown observed at the last tick, nil when no
// locked draft exists.
func (b *Banner) Remaining() *draft.Remaining {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.remaining
}

// Dismiss hides the banner until the urgent window re-asserts it.
// Dismissal is not permanent.
func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = Dismissed
}

// Resume hands back the draft's show and movie so the caller can navigate
// into the booking flow.
func (b *Banner) Resume() (*models.Draft, bool) {
	d := b.drafts.Current()
	if !d.Locked() {
		return nil, false
	}
	return d, true
}

// Cancel releases the hold through the orchestrator and hides the banner.
func (b *Banner) Cancel(ctx context.Context) error {
	if err := b.canceller.CancelDraft(ctx); err != nil {
		return err
	}
	b.mu.Lock()
	b.state = Hidden
	b.remaining = nil
	b.mu.Unlock()
	return nil
}

package draft

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"filmsphere/internal/logger"
	"filmsphere/internal/models"
)

// HoldDuration is the fixed server-side seat hold TTL mirrored by the
// client. Remaining time is always recomputed from the server-reported
// creation timestamp, never from a persisted countdown.
const HoldDuration = 6 * time.Minute

var (
	// ErrDraftActive is returned by Start when a draft for a different
	// show exists. Callers must cancel it first.
	ErrDraftActive = errors.New("another draft booking is active")

	// ErrSeatsFrozen is returned when the seat set of a locked draft
	// would be mutated. Changing seats requires cancelling the draft.
	ErrSeatsFrozen = errors.New("seat selection is frozen while locked")

	// ErrNoDraft is returned by PromoteToLocked without an open draft.
	ErrNoDraft = errors.New("no draft booking")
)

// Storage is the persistence port for the single draft slot. Load returns
// (nil, nil) when no draft is persisted.
type Storage interface {
	Load() (*models.Draft, error)
	Save(d *models.Draft) error
	Clear() error
}

// Remaining is the derived hold countdown.
type Remaining struct {
	Minutes int
	Seconds int
	Total   time.Duration
}

// Expired reports whether the hold deadline has passed.
func (r *Remaining) Expired() bool {
	return r != nil && r.Total <= 0
}

// Store owns the single draft booking slot. All mutations go through it
// and are persisted so the draft survives a process restart. Expiry is
// lazy: an overdue draft is cleared on first access, not eagerly at load
// time, so a confirm already in flight is not raced.
type Store struct {
	mu      sync.Mutex
	storage Storage
	now     func() time.Time
	draft   *models.Draft
	loaded  bool
}

// NewStore creates a draft store over the given persistence backend.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage, now: time.Now}
}

// SetClock replaces the wall clock, for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Current returns the active draft, or nil. A locked draft whose hold has
// already expired is cleared here and reported as absent.
func (s *Store) Current() *models.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	if s.draft.Locked() && s.now().Sub(s.draft.CreatedAt) >= HoldDuration {
		logger.WithFields("component", "draft").Info("draft hold expired, clearing",
			"booking_id", s.draft.BookingID,
			"created_at", s.draft.CreatedAt)
		s.clear()
		return nil
	}
	return s.draft
}

// Start opens or updates the pre-lock draft for a show. An existing draft
// for a different show is never overwritten; a same-show draft has its
// seat set replaced while still unlocked. An empty seat set clears the
// slot, mirroring a fully deselected grid.
func (s *Store) Start(showID int64, movieID string, seats []models.Seat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	if s.draft != nil && s.draft.ShowID != showID {
		return fmt.Errorf("show %d: %w", s.draft.ShowID, ErrDraftActive)
	}
	if s.draft.Locked() {
		return ErrSeatsFrozen
	}

	if len(seats) == 0 {
		s.clear()
		return nil
	}

	s.draft = &models.Draft{
		ShowID:  showID,
		MovieID: movieID,
		Seats:   copySeats(seats),
		Status:  models.DraftOpen,
	}
	s.persist()
	return nil
}

// PromoteToLocked records a granted server hold. BookingID and the
// creation timestamp come from the server response; the client never
// invents them. This is the only transition into the locked status.
func (s *Store) PromoteToLocked(bookingID int64, details *models.BookingDetails) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	if s.draft == nil {
		return ErrNoDraft
	}
	if bookingID == 0 || details == nil || details.CreatedAt.IsZero() {
		return errors.New("locked draft requires a server booking id and creation time")
	}

	s.draft.BookingID = bookingID
	s.draft.Status = models.DraftLocked
	s.draft.CreatedAt = details.CreatedAt
	s.draft.Details = details
	s.persist()
	return nil
}

// Adopt installs a locked draft fetched from the server, used when the
// local slot is empty after a restart but the server still holds seats.
func (s *Store) Adopt(details *models.BookingDetails, movieID string) error {
	if details == nil || details.ID == 0 || details.CreatedAt.IsZero() {
		return errors.New("adopted draft requires a server booking id and creation time")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	if s.draft != nil {
		return ErrDraftActive
	}

	var showID int64
	if details.Show != nil {
		showID = details.Show.ID
	}
	s.draft = &models.Draft{
		BookingID: details.ID,
		ShowID:    showID,
		MovieID:   movieID,
		Seats:     copySeats(details.Seats),
		Status:    models.DraftLocked,
		CreatedAt: details.CreatedAt,
		Details:   details,
	}
	s.persist()
	return nil
}

// Clear empties the draft slot. It is idempotent and always succeeds.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = true
	s.clear()
}

// TimeRemaining derives the hold countdown from the server creation
// timestamp. It is nil when no locked draft exists. Unlike Current it does
// not clear an expired draft, so watchers can observe the zero crossing.
func (s *Store) TimeRemaining() *Remaining {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.load()

	if !s.draft.Locked() {
		return nil
	}

	total := HoldDuration - s.now().Sub(s.draft.CreatedAt)
	if total < 0 {
		return &Remaining{Total: total}
	}
	return &Remaining{
		Minutes: int(total / time.Minute),
		Seconds: int((total % time.Minute) / time.Second),
		Total:   total,
	}
}

// load pulls the persisted draft into memory once per store lifetime.
// Callers must hold the mutex.
func (s *Store) load() {
	if s.loaded {
		return
	}
	s.loaded = true

	d, err := s.storage.Load()
	if err != nil {
		logger.WithFields("component", "draft").Error("failed to load persisted draft", "error", err)
		return
	}
	s.draft = d
}

func (s *Store) persist() {
	if err := s.storage.Save(s.draft); err != nil {
		logger.WithFields("component", "draft").Error("failed to persist draft", "error", err)
	}
}

func (s *Store) clear() {
	s.draft = nil
	if err := s.storage.Clear(); err != nil {
		logger.WithFields("component", "draft").Error("failed to clear persisted draft", "error", err)
	}
}

func copySeats(seats []models.Seat) []models.Seat {
	out := make([]models.Seat, len(seats))
	copy(out, seats)
	return out
}

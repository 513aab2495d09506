package banner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmsphere/internal/draft"
	"filmsphere/internal/models"
)

type fakeCanceller struct {
	calls int
	store *draft.Store
}

func (f *fakeCanceller) CancelDraft(_ context.Context) error {
	f.calls++
	f.store.Clear()
	return nil
}

// newLockedDraft sets up a store with a locked draft created at base and a
// movable clock.
func newLockedDraft(t *testing.T, base time.Time) (*draft.Store, *time.Time) {
	t.Helper()
	store := draft.NewStore(draft.NewMemoryStorage())

	now := base
	store.SetClock(func() time.Time { return now })

	require.NoError(t, store.Start(1, "tt0111161", []models.Seat{{ID: "A1", UUID: "uuid-a1"}}))
	require.NoError(t, store.PromoteToLocked(42, &models.BookingDetails{
		ID:         42,
		TotalPrice: 150,
		CreatedAt:  base,
		Show:       &models.Show{ID: 1, MovieID: "tt0111161"},
	}))
	return store, &now
}

func TestBannerHiddenWithoutDraft(t *testing.T) {
	store := draft.NewStore(draft.NewMemoryStorage())
	b := New(store, &fakeCanceller{store: store})

	b.Tick()
	assert.Equal(t, Hidden, b.State())
	assert.Nil(t, b.Remaining())
}

func TestBannerShowsWhileDraftIsHeld(t *testing.T) {
	base := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	store, _ := newLockedDraft(t, base)
	b := New(store, &fakeCanceller{store: store})

	b.Tick()
	assert.Equal(t, Visible, b.State())

	rem := b.Remaining()
	require.NotNil(t, rem)
	assert.Equal(t, 6, rem.Minutes)
}

func TestDismissalOverriddenOnceUrgent(t *testing.T) {
	base := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	store, now := newLockedDraft(t, base)
	b := New(store, &fakeCanceller{store: store})

	// Dismiss while about 2 minutes remain.
	*now = base.Add(4 * time.Minute)
	b.Tick()
	require.Equal(t, Visible, b.State())
	b.Dismiss()

	// Still dismissed above the 60-second threshold.
	*now = base.Add(4*time.Minute + 30*time.Second)
	b.Tick()
	assert.Equal(t, Dismissed, b.State())

	// At 45 seconds remaining the banner re-asserts itself.
	*now = base.Add(5*time.Minute + 15*time.Second)
	b.Tick()
	assert.Equal(t, Visible, b.State())

	rem := b.Remaining()
	require.NotNil(t, rem)
	assert.Equal(t, 0, rem.Minutes)
	assert.Equal(t, 45, rem.Seconds)
}

func TestExpiryClearsDraftAndHidesBanner(t *testing.T) {
	base := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	store, now := newLockedDraft(t, base)
	b := New(store, &fakeCanceller{store: store})

	*now = base.Add(6*time.Minute + time.Second)
	b.Tick()

	assert.Equal(t, Hidden, b.State())
	assert.Nil(t, b.Remaining())
	assert.Nil(t, store.Current())
}

func TestBannerHidesWhenDraftCleared(t *testing.T) {
	base := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)
	store, _ := newLockedDraft(t, base)
	b := New(store, &fakeCanceller{store: store})

	b.Tick()
	require.Equal(t, Visible, b.State())

	// Confirmed or cancelled elsewhere.
	store.Clear()
	b.Tick()
	assert.Equal(t, Hidden, b.State())
}

func TestResumeHandsBackDraft(t *testing.T) {
	base := time.Now()
	store, _ := newLockedDraft(t, base)
	b := New(store, &fakeCanceller{store: store})

	d, ok := b.Resume()
	require.True(t, ok)
	assert.Equal(t, int64(1), d.ShowID)
	assert.Equal(t, "tt0111161", d.MovieID)
}

func TestCancelDelegatesAndHides(t *testing.T) {
	base := time.Now()
	store, _ := newLockedDraft(t, base)
	canceller := &fakeCanceller{store: store}
	b := New(store, canceller)

	b.Tick()
	require.NoError(t, b.Cancel(context.Background()))
	assert.Equal(t, 1, canceller.calls)
	assert.Equal(t, Hidden, b.State())

	b.Tick()
	assert.Equal(t, Hidden, b.State())
}

func TestStartStopLifecycle(t *testing.T) {
	store := draft.NewStore(draft.NewMemoryStorage())
	b := New(store, &fakeCanceller{store: store})
	b.interval = 10 * time.Millisecond

	b.Start()
	time.Sleep(30 * time.Millisecond)
	b.Stop()

	assert.Equal(t, Hidden, b.State())
}

package seats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filmsphere/internal/apierror"
	"filmsphere/internal/draft"
	"filmsphere/internal/models"
	"filmsphere/internal/notify"
)

type fakeSeatSource struct {
	seats []models.Seat
	err   error
}

func (f *fakeSeatSource) ShowSeats(_ context.Context, _ int64) ([]models.Seat, error) {
	return f.seats, f.err
}

func showSeats() []models.Seat {
	return []models.Seat{
		{ID: "A1", UUID: "uuid-a1", Row: "A", Col: 1, Category: models.CategoryStandard, State: models.SeatAvailable},
		{ID: "A2", UUID: "uuid-a2", Row: "A", Col: 2, Category: models.CategoryPremium, State: models.SeatAvailable},
		{ID: "B1", UUID: "uuid-b1", Row: "B", Col: 1, Category: models.CategoryVIP, State: models.SeatAvailable},
		{ID: "B2", UUID: "uuid-b2", Row: "B", Col: 2, Category: models.CategoryStandard, State: models.SeatBooked},
		{ID: "B3", UUID: "uuid-b3", Row: "B", Col: 3, Category: models.CategoryDisabled, State: models.SeatAvailable},
	}
}

func newTestController(t *testing.T, source *fakeSeatSource) (*Controller, *draft.Store, []Row) {
	t.Helper()
	drafts := draft.NewStore(draft.NewMemoryStorage())
	c := NewController(source, drafts, notify.NewChannel(time.Minute))

	show := &models.Show{ID: 1, MovieID: "tt0111161", BasePrice: 100}
	layout, err := c.LoadSeats(context.Background(), show)
	require.NoError(t, err)
	return c, drafts, layout
}

func seatByID(layout []Row, id string) models.Seat {
	for _, row := range layout {
		for _, s := range row.Seats {
			if s.ID == id {
				return s
			}
		}
	}
	return models.Seat{}
}

func TestLoadSeatsBuildsSortedLayout(t *testing.T) {
	_, _, layout := newTestController(t, &fakeSeatSource{seats: showSeats()})

	require.Len(t, layout, 2)
	assert.Equal(t, "A", layout[0].Label)
	assert.Equal(t, "B", layout[1].Label)
	assert.Equal(t, []int{1, 2, 3}, []int{layout[1].Seats[0].Col, layout[1].Seats[1].Col, layout[1].Seats[2].Col})
}

func TestLoadSeatsFailure(t *testing.T) {
	drafts := draft.NewStore(draft.NewMemoryStorage())
	c := NewController(&fakeSeatSource{err: errors.New("boom")}, drafts, notify.NewChannel(time.Minute))

	_, err := c.LoadSeats(context.Background(), &models.Show{ID: 9})
	assert.True(t, apierror.Is(err, apierror.KindSeatFetch))
}

func TestToggleParity(t *testing.T) {
	c, _, layout := newTestController(t, &fakeSeatSource{seats: showSeats()})

	// Seats toggled an odd number of times remain selected, unique by id.
	for _, id := range []string{"A1", "A2", "A1", "B1", "A2", "A2"} {
		require.NoError(t, c.Toggle(seatByID(layout, id)))
	}

	selected := c.Selected()
	require.Len(t, selected, 2)
	assert.Equal(t, "A2", selected[0].ID)
	assert.Equal(t, "B1", selected[1].ID)
}

func TestToggleRejectsBookedSeat(t *testing.T) {
	c, _, layout := newTestController(t, &fakeSeatSource{seats: showSeats()})

	err := c.Toggle(seatByID(layout, "B2"))
	assert.True(t, apierror.Is(err, apierror.KindSeatUnselectable))
	assert.Empty(t, c.Selected())
}

func TestToggleRejectsDisabledCategory(t *testing.T) {
	c, _, layout := newTestController(t, &fakeSeatSource{seats: showSeats()})

	err := c.Toggle(seatByID(layout, "B3"))
	assert.True(t, apierror.Is(err, apierror.KindSeatUnselectable))
}

func TestTotalPriceUsesCategoryMultipliers(t *testing.T) {
	c, _, layout := newTestController(t, &fakeSeatSource{seats: showSeats()})

	require.NoError(t, c.Toggle(seatByID(layout, "A1"))) // standard, 100
	require.NoError(t, c.Toggle(seatByID(layout, "A2"))) // premium, 150
	require.NoError(t, c.Toggle(seatByID(layout, "B1"))) // vip, 200

	assert.Equal(t, float64(450), c.TotalPrice())
}

func TestToggleFeedsDraftStorePreLock(t *testing.T) {
	c, drafts, layout := newTestController(t, &fakeSeatSource{seats: showSeats()})

	require.NoError(t, c.Toggle(seatByID(layout, "A1")))
	d := drafts.Current()
	require.NotNil(t, d)
	assert.Equal(t, models.DraftOpen, d.Status)
	assert.Len(t, d.Seats, 1)

	// Deselecting the last seat clears the slot.
	require.NoError(t, c.Toggle(seatByID(layout, "A1")))
	assert.Nil(t, drafts.Current())
}

func TestToggleRejectedOnceLocked(t *testing.T) {
	c, drafts, layout := newTestController(t, &fakeSeatSource{seats: showSeats()})

	require.NoError(t, c.Toggle(seatByID(layout, "A1")))
	require.NoError(t, drafts.PromoteToLocked(42, &models.BookingDetails{
		ID:        42,
		CreatedAt: time.Now(),
	}))

	err := c.Toggle(seatByID(layout, "A2"))
	assert.ErrorIs(t, err, draft.ErrSeatsFrozen)
	assert.Len(t, drafts.Current().Seats, 1)
}

func TestToggleRolledBackWhenAnotherShowHoldsDraft(t *testing.T) {
	drafts := draft.NewStore(draft.NewMemoryStorage())
	require.NoError(t, drafts.Start(2, "tt0068646", []models.Seat{{ID: "C1", UUID: "uuid-c1"}}))

	c := NewController(&fakeSeatSource{seats: showSeats()}, drafts, notify.NewChannel(time.Minute))
	layout, err := c.LoadSeats(context.Background(), &models.Show{ID: 1, MovieID: "tt0111161", BasePrice: 100})
	require.NoError(t, err)

	err = c.Toggle(seatByID(layout, "A1"))
	assert.ErrorIs(t, err, draft.ErrDraftActive)
	assert.Empty(t, c.Selected())
}

func TestLoadSeatsRestoresSelectionFromDraft(t *testing.T) {
	drafts := draft.NewStore(draft.NewMemoryStorage())
	require.NoError(t, drafts.Start(1, "tt0111161", []models.Seat{
		{ID: "A1", UUID: "uuid-a1", Row: "A", Col: 1, Category: models.CategoryStandard},
	}))

	c := NewController(&fakeSeatSource{seats: showSeats()}, drafts, notify.NewChannel(time.Minute))
	_, err := c.LoadSeats(context.Background(), &models.Show{ID: 1, MovieID: "tt0111161", BasePrice: 100})
	require.NoError(t, err)

	selected := c.Selected()
	require.Len(t, selected, 1)
	assert.Equal(t, "A1", selected[0].ID)
}

func TestPriceFor(t *testing.T) {
	assert.Equal(t, float64(100), PriceFor(models.CategoryStandard, 100))
	assert.Equal(t, float64(150), PriceFor(models.CategoryPremium, 100))
	assert.Equal(t, float64(200), PriceFor(models.CategoryVIP, 100))
	assert.Equal(t, float64(0), PriceFor(models.CategoryDisabled, 100))
}

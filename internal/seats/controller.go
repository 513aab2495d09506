package seats

import (
	"context"
	"fmt"
	"sort"

	"filmsphere/internal/apierror"
	"filmsphere/internal/draft"
	"filmsphere/internal/models"
	"filmsphere/internal/notify"
)

// SeatSource fetches the authoritative seat records for a show.
type SeatSource interface {
	ShowSeats(ctx context.Context, showID int64) ([]models.Seat, error)
}

// Row is one renderable row of the seat grid, seats ordered by column.
type Row struct {
	Label string
	Seats []models.Seat
}

// Controller maps raw seat records into a grid, tracks the user's picks
// and computes the total price. While the draft is still unlocked every
// toggle is mirrored into the draft store; a locked draft freezes the
// selection entirely.
type Controller struct {
	source   SeatSource
	drafts   *draft.Store
	notifier *notify.Channel

	show     *models.Show
	layout   []Row
	selected map[string]models.Seat
}

func NewController(source SeatSource, drafts *draft.Store, notifier *notify.Channel) *Controller {
	return &Controller{
		source:   source,
		drafts:   drafts,
		notifier: notifier,
		selected: make(map[string]models.Seat),
	}
}

// LoadSeats fetches the seats for a show and rebuilds the grid. On failure
// it returns a seat-fetch error; callers are expected to navigate away.
func (c *Controller) LoadSeats(ctx context.Context, show *models.Show) ([]Row, error) {
	raw, err := c.source.ShowSeats(ctx, show.ID)
	if err != nil {
		return nil, apierror.Wrap(apierror.KindSeatFetch, fmt.Sprintf("could not load seats for show %d", show.ID), err)
	}

	c.show = show
	c.layout = buildLayout(raw)
	c.selected = make(map[string]models.Seat)
	c.restoreSelection()
	return c.layout, nil
}

// Toggle adds the seat to the selection if absent and removes it if
// present. Booked seats are rejected; locked-state seats are left to the
// server to arbitrate at confirm time. Pre-lock, the new selection is
// pushed into the draft store.
func (c *Controller) Toggle(seat models.Seat) error {
	if c.show == nil {
		return apierror.New(apierror.KindSeatFetch, "no show loaded")
	}
	if seat.State == models.SeatBooked {
		c.notifier.Push(fmt.Sprintf("Seat %s is already booked.", seat.ID), notify.KindError)
		return apierror.New(apierror.KindSeatUnselectable, "seat is already booked")
	}
	if seat.Category == models.CategoryDisabled {
		return apierror.New(apierror.KindSeatUnselectable, "not a selectable seat")
	}
	if c.drafts.Current().Locked() {
		c.notifier.Push("Seats are locked. Cancel the reservation to change them.", notify.KindError)
		return draft.ErrSeatsFrozen
	}

	_, wasSelected := c.selected[seat.ID]
	if wasSelected {
		delete(c.selected, seat.ID)
	} else {
		c.selected[seat.ID] = seat
	}

	if err := c.drafts.Start(c.show.ID, c.show.MovieID, c.Selected()); err != nil {
		// Roll the pick back so the view stays consistent with the store.
		if wasSelected {
			c.selected[seat.ID] = seat
		} else {
			delete(c.selected, seat.ID)
		}
		c.notifier.Push("Finish or cancel your pending booking first.", notify.KindError)
		return err
	}
	return nil
}

// Selected returns the current picks ordered by display id.
func (c *Controller) Selected() []models.Seat {
	out := make([]models.Seat, 0, len(c.selected))
	for _, s := range c.selected {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TotalPrice sums category prices over the selection.
func (c *Controller) TotalPrice() float64 {
	if c.show == nil {
		return 0
	}
	var total float64
	for _, s := range c.selected {
		total += PriceFor(s.Category, c.show.BasePrice)
	}
	return total
}

// ClearSelection drops the picks without touching a locked draft.
func (c *Controller) ClearSelection() {
	c.selected = make(map[string]models.Seat)
}

// PriceFor derives a seat price from the show's base price.
func PriceFor(category models.SeatCategory, basePrice float64) float64 {
	switch category {
	case models.CategoryStandard:
		return basePrice
	case models.CategoryPremium:
		return basePrice * 1.5
	case models.CategoryVIP:
		return basePrice * 2
	default:
		return 0
	}
}

// restoreSelection re-applies the seats of an existing draft for this show
// so a reload lands with the prior picks intact.
func (c *Controller) restoreSelection() {
	d := c.drafts.Current()
	if d == nil || d.ShowID != c.show.ID {
		return
	}
	for _, s := range d.Seats {
		c.selected[s.ID] = s
	}
}

// buildLayout groups seats into rows sorted by label, each row sorted by
// column.
func buildLayout(seats []models.Seat) []Row {
	byRow := make(map[string][]models.Seat)
	for _, s := range seats {
		byRow[s.Row] = append(byRow[s.Row], s)
	}

	labels := make([]string, 0, len(byRow))
	for label := range byRow {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([]Row, 0, len(labels))
	for _, label := range labels {
		rowSeats := byRow[label]
		sort.Slice(rowSeats, func(i, j int) bool { return rowSeats[i].Col < rowSeats[j].Col })
		rows = append(rows, Row{Label: label, Seats: rowSeats})
	}
	return rows
}

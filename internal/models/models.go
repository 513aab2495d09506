package models

import (
	"time"
)

// SeatCategory determines the price multiplier applied to a show's base price.
type SeatCategory string

const (
	CategoryStandard SeatCategory = "standard"
	CategoryPremium  SeatCategory = "premium"
	CategoryVIP      SeatCategory = "vip"
	CategoryDisabled SeatCategory = "disabled"
)

// SeatState is the server-authoritative availability of a seat. The client
// never invents a state; "selected" is an overlay kept outside the Seat.
type SeatState string

const (
	SeatAvailable SeatState = "available"
	SeatLocked    SeatState = "locked"
	SeatBooked    SeatState = "booked"
)

// Seat is an immutable per-show seat record. ID is the display label
// ("A5"), UUID is the stable opaque identifier used for server-side locking.
type Seat struct {
	ID       string       `json:"id"`
	UUID     string       `json:"uuid"`
	Row      string       `json:"row"`
	Col      int          `json:"col"`
	Category SeatCategory `json:"type"`
	State    SeatState    `json:"state"`
}

// Show identifies a screening of a movie in a screen.
type Show struct {
	ID        int64     `json:"id"`
	MovieID   string    `json:"movie_id"`
	Screen    string    `json:"screen"`
	DateTime  time.Time `json:"date_time"`
	BasePrice float64   `json:"base_price"`
	Movie     *Movie    `json:"movie,omitempty"`
}

// Movie is the subset of movie metadata the booking flow needs.
type Movie struct {
	IMDBID string `json:"imdb_id"`
	Title  string `json:"title"`
}

// BookingDetails is the full server booking record snapshot returned by the
// reserve and confirm endpoints. It is cached in the draft so the flow can
// resume and display without refetching.
type BookingDetails struct {
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	Show       *Show     `json:"show,omitempty"`
	Seats      []Seat    `json:"seats,omitempty"`
}

// DraftStatus is the stored lifecycle state of a draft. Terminal states
// (confirmed, cancelled, expired) are never stored; they clear the draft.
type DraftStatus string

const (
	DraftOpen   DraftStatus = "draft"
	DraftLocked DraftStatus = "locked"
)

// Draft is a held, uncommitted booking. BookingID and CreatedAt are
// server-assigned and only present once the draft is locked.
type Draft struct {
	BookingID int64           `json:"booking_id,omitempty"`
	ShowID    int64           `json:"show_id"`
	MovieID   string          `json:"movie_id"`
	Seats     []Seat          `json:"seats"`
	Status    DraftStatus     `json:"status"`
	CreatedAt time.Time       `json:"created_at,omitempty"`
	Details   *BookingDetails `json:"booking_details,omitempty"`
}

// Locked reports whether the draft holds a server-side seat lock.
func (d *Draft) Locked() bool {
	return d != nil && d.Status == DraftLocked
}

// Profile is the session user snapshot the client caches for balance checks.
type Profile struct {
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Balance    float64   `json:"balance"`
	LastRefill time.Time `json:"last_refill,omitempty"`
}

// ReserveSeatsRequest locks seats by their opaque UUIDs, never by display
// id, which collides across shows.
type ReserveSeatsRequest struct {
	ShowID    string   `json:"show_id"`
	SeatUUIDs []string `json:"seat_uuids"`
}

// CancelDraftResponse acknowledges a released hold.
type CancelDraftResponse struct {
	Success bool `json:"success"`
}

// RefillBalanceResponse carries the post-refill balance.
type RefillBalanceResponse struct {
	Balance float64 `json:"balance"`
}

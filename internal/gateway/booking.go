package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"filmsphere/internal/models"
)

// ReserveSeats asks the server to lock the given seats for a show. The
// seats are addressed by their opaque UUIDs.
func (c *Client) ReserveSeats(ctx context.Context, showID int64, seatUUIDs []string) (*models.BookingDetails, error) {
	req := models.ReserveSeatsRequest{
		ShowID:    strconv.FormatInt(showID, 10),
		SeatUUIDs: seatUUIDs,
	}

	var details models.BookingDetails
	if err := c.do(ctx, http.MethodPost, "/api/booking/create-booking", req, &details); err != nil {
		return nil, fmt.Errorf("reserve seats: %w", err)
	}
	return &details, nil
}

// ConfirmBooking finalizes a previously locked draft booking.
func (c *Client) ConfirmBooking(ctx context.Context, bookingID int64) (*models.BookingDetails, error) {
	path := fmt.Sprintf("/api/booking/confirm-booking/%d", bookingID)

	var details models.BookingDetails
	if err := c.do(ctx, http.MethodPost, path, nil, &details); err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	return &details, nil
}

// CancelDraftBooking releases the server-side hold for a draft booking.
func (c *Client) CancelDraftBooking(ctx context.Context, bookingID int64) error {
	path := fmt.Sprintf("/api/booking/delete-draft-booking/%d", bookingID)

	var resp models.CancelDraftResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return fmt.Errorf("cancel draft booking: %w", err)
	}
	return nil
}

// UserDraftBookings returns the caller's active draft bookings, newest
// first. The server holds at most one active draft per user.
func (c *Client) UserDraftBookings(ctx context.Context) ([]models.BookingDetails, error) {
	var drafts []models.BookingDetails
	if err := c.do(ctx, http.MethodGet, "/api/booking/get-user-draft-bookings", nil, &drafts); err != nil {
		return nil, fmt.Errorf("get draft bookings: %w", err)
	}
	return drafts, nil
}

// UserBookings returns the caller's confirmed booking history.
func (c *Client) UserBookings(ctx context.Context) ([]models.BookingDetails, error) {
	var bookings []models.BookingDetails
	if err := c.do(ctx, http.MethodGet, "/api/booking/get-user-bookings", nil, &bookings); err != nil {
		return nil, fmt.Errorf("get bookings: %w", err)
	}
	return bookings, nil
}

// BookingDetails fetches a single booking record.
func (c *Client) BookingDetails(ctx context.Context, bookingID int64) (*models.BookingDetails, error) {
	path := fmt.Sprintf("/api/booking/get-booking-details/%d", bookingID)

	var details models.BookingDetails
	if err := c.do(ctx, http.MethodGet, path, nil, &details); err != nil {
		return nil, fmt.Errorf("get booking details: %w", err)
	}
	return &details, nil
}

// SendTicket asks the server to email the ticket for a confirmed booking.
func (c *Client) SendTicket(ctx context.Context, bookingID int64) error {
	path := fmt.Sprintf("/api/booking/send-tickets/%d", bookingID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil); err != nil {
		return fmt.Errorf("send ticket: %w", err)
	}
	return nil
}

package gateway

import (
	"context"
	"fmt"
	"net/http"

	"filmsphere/internal/models"
)

// ShowSeats fetches the seat records for a show. Seat state in the result
// is authoritative; the client only overlays its own selection on top.
func (c *Client) ShowSeats(ctx context.Context, showID int64) ([]models.Seat, error) {
	path := fmt.Sprintf("/api/movie/get-show-seats/%d", showID)

	var seats []models.Seat
	if err := c.do(ctx, http.MethodGet, path, nil, &seats); err != nil {
		return nil, fmt.Errorf("get show seats: %w", err)
	}
	return seats, nil
}

// Profile fetches the session user, including the cached balance used for
// the client-side confirm pre-check.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodGet, "/api/auth/user", nil, &profile); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// RefillBalance tops up the session user's balance. The server rate-limits
// this endpoint; a 429 surfaces as a rate-limited error with a cooldown.
func (c *Client) RefillBalance(ctx context.Context) (float64, error) {
	var resp models.RefillBalanceResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/refill-balance", nil, &resp); err != nil {
		return 0, fmt.Errorf("refill balance: %w", err)
	}
	return resp.Balance, nil
}

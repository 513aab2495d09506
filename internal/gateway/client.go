package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"filmsphere/internal/apierror"
	"filmsphere/internal/logger"
)

// Client issues authenticated calls against the reservation backend and
// normalizes the {success, message} response envelope into typed results
// and typed errors. It holds no booking state of its own.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger

	// OnSessionExpired fires once per 401 so the app can reset all stores.
	OnSessionExpired func()
}

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: logger.WithFields("component", "gateway"),
	}
}

// envelope is the wire-level wrapper every endpoint responds with. Message
// is the payload on success and a human-readable string on failure; Code is
// the machine-readable failure class.
type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code,omitempty"`
	Message json.RawMessage `json:"message"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	start := time.Now()
	reqID := logger.NewRequestID()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRequest(path, "network_error", time.Since(start))
		c.log.Error("request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return apierror.Wrap(apierror.KindNetwork, "could not reach the reservation service", err)
	}
	defer resp.Body.Close()

	observeRequest(path, strconv.Itoa(resp.StatusCode), time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.OnSessionExpired != nil {
			c.OnSessionExpired()
		}
		return apierror.New(apierror.KindSessionExpired, "session expired, please log in again")

	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := 60 * time.Second
		if s := resp.Header.Get("Retry-After"); s != "" {
			if secs, err := strconv.Atoi(s); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &apierror.Error{
			Kind:       apierror.KindRateLimited,
			Message:    "too many requests, try again later",
			RetryAfter: retryAfter,
		}

	case resp.StatusCode >= http.StatusInternalServerError:
		c.log.Error("server error", "method", method, "path", path, "status", resp.StatusCode, "request_id", reqID)
		return apierror.New(apierror.KindNetwork, fmt.Sprintf("server error (status %d)", resp.StatusCode))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return apierror.Wrap(apierror.KindNetwork, "failed to decode response", err)
	}

	if !env.Success {
		return envelopeError(&env)
	}

	if out != nil && len(env.Message) > 0 {
		if err := json.Unmarshal(env.Message, out); err != nil {
			return apierror.Wrap(apierror.KindNetwork, "failed to decode payload", err)
		}
	}
	return nil
}

// envelopeError maps a failed envelope to the error taxonomy. Unknown codes
// fall through to a generic API error carrying the server's message.
func envelopeError(env *envelope) error {
	msg := "request failed"
	var s string
	if json.Unmarshal(env.Message, &s) == nil && s != "" {
		msg = s
	}

	switch env.Code {
	case "seats_unavailable":
		return apierror.New(apierror.KindSeatsUnavailable, msg)
	case "hold_expired":
		return apierror.New(apierror.KindHoldExpired, msg)
	case "balance_insufficient":
		return apierror.New(apierror.KindBalanceInsufficient, msg)
	default:
		return apierror.New(apierror.KindAPI, msg)
	}
}

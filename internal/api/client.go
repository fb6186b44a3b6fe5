// Package api provides the HTTP collaborators that perform the real
// remote writes replayed from the offline queue.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
)

// TokenSource supplies the bearer token attached to API calls.
type TokenSource interface {
	Token() string
}

// Client is the shared HTTP client for the GreenSentinel API. Every
// call carries its own bounded timeout through the underlying
// http.Client, so a slow call delays only the item it belongs to.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

// DefaultTimeout bounds each remote call.
const DefaultTimeout = 15 * time.Second

// NewClient creates a Client for the given API base URL.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Reports returns the reports collaborator.
func (c *Client) Reports() *ReportsService { return &ReportsService{client: c} }

// Events returns the events collaborator.
func (c *Client) Events() *EventsService { return &EventsService{client: c} }

// Users returns the users collaborator.
func (c *Client) Users() *UsersService { return &UsersService{client: c} }

// do sends a JSON request. idempotencyKey, when non-empty, is forwarded
// so the server can deduplicate replayed writes whose original response
// was lost. Server rejections (4xx) come back as permanent-classifiable
// errors; transport failures and 5xx responses as transient ones.
func (c *Client) do(ctx context.Context, method, path string, idempotencyKey string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.ErrSerialization, "failed to encode request body", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(errors.ErrInvalid, "failed to build request", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrRemoteExecution, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg := readErrorBody(resp.Body)
		if resp.StatusCode >= 500 {
			return errors.New(errors.ErrRemoteExecution,
				fmt.Sprintf("%s %s: server error %d: %s", method, path, resp.StatusCode, msg))
		}
		return errors.New(errors.ErrRemoteRejected,
			fmt.Sprintf("%s %s: rejected with %d: %s", method, path, resp.StatusCode, msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(errors.ErrSerialization, "failed to decode response", err)
		}
	}
	return nil
}

// readErrorBody extracts a short error message from a failed response.
func readErrorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 512))
	if err != nil || len(data) == 0 {
		return "no response body"
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return string(data)
}

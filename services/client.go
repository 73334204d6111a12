// services/client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// Client is the shared core of the API gateway layer: it builds the request,
// attaches the caller's bearer token, serializes the body and hands back the
// raw status and payload. Normalizing the outcome into a Result is left to
// the per-resource services, which know their fallback messages.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds a gateway client for the upstream API at baseURL.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("component", "gateway").Logger(),
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Do performs one upstream call. token may be empty for the public auth
// endpoints; payload nil means no body; query nil means no parameters. The
// returned error is transport-level only (connection, timeout, unreadable
// body); HTTP error statuses come back as (status, body, nil) so callers can
// surface the backend's message verbatim.
func (c *Client) Do(ctx context.Context, method, path, token string, query url.Values, payload interface{}) (int, []byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("upstream call failed")
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Error().Err(err).Str("method", method).Str("path", path).Msg("failed to read upstream response")
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("upstream call")

	return resp.StatusCode, respBody, nil
}

// MessageFrom extracts the backend's message field from an error body,
// falling back to the given default when the body has none.
func MessageFrom(body []byte, fallback string) string {
	if msg := gjson.GetBytes(body, "message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	return fallback
}

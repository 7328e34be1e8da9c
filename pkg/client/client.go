// Package client implements chat.Streamer against a local agent server's
// streaming chat endpoint.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/papercomputeco/neat/pkg/chat"
	"github.com/papercomputeco/neat/pkg/logger"
	"github.com/papercomputeco/neat/pkg/utils"
)

const (
	// DefaultEndpoint is the base URL of a locally running agent server.
	DefaultEndpoint = "http://localhost:8000"

	// ChatPath is appended to the endpoint for every request.
	ChatPath = "/chat"

	// MessageParam carries the user message in the query string.
	MessageParam = "user_message"

	maxErrorBody = 4 * 1024
)

// ErrInvalidEndpoint is returned by New for an endpoint that is not an
// absolute http or https URL.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// StatusError is returned by Stream when the server answers with a status
// other than 200.
type StatusError struct {
	Code int

	// Body holds at most the first 4 KiB of the response body.
	Body string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, utils.Truncate(body, 200))
}

// Config holds configuration for the chat client.
type Config struct {
	// Endpoint is the agent server base URL (e.g., "http://localhost:8000").
	// Defaults to DefaultEndpoint if empty.
	Endpoint string

	// Timeout bounds a whole request including the streamed body.
	// Zero means no timeout.
	Timeout time.Duration
}

// Client sends user messages and hands back the live response body.
type Client struct {
	endpoint   *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client. A nil logger discards all output.
func New(cfg Config, l *slog.Logger) (*Client, error) {
	raw := cfg.Endpoint
	if raw == "" {
		raw = DefaultEndpoint
	}

	endpoint, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidEndpoint, raw, err)
	}
	if endpoint.Scheme != "http" && endpoint.Scheme != "https" {
		return nil, fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidEndpoint, raw)
	}
	if endpoint.Host == "" {
		return nil, fmt.Errorf("%w %q: missing host", ErrInvalidEndpoint, raw)
	}

	if l == nil {
		l = logger.Nop()
	}

	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: l,
	}, nil
}

// Endpoint returns the base URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// URL returns the request URL for text.
func (c *Client) URL(text string) string {
	u := c.endpoint.JoinPath(ChatPath)
	u.RawQuery = url.Values{MessageParam: []string{text}}.Encode()
	return u.String()
}

// Stream issues GET /chat for text. On success the caller owns the returned
// body and must close it.
func (c *Client) Stream(ctx context.Context, text string) (io.ReadCloser, error) {
	target := c.URL(text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	c.logger.Debug("opening stream", "url", target)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("stream opened",
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	return resp.Body, nil
}

// Ensure Client implements chat.Streamer
var _ chat.Streamer = (*Client)(nil)

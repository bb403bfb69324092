// Package api is the REST client for the FixPoint backend. It wraps every
// request with the session bearer token and is the sole component that
// reacts to authentication failures, by destroying the session.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer token and receives auth-failure signals.
// *session.Store satisfies it.
type TokenSource interface {
	// Token returns the current bearer token, or "" when logged out.
	Token() string
	// AuthFailure is invoked exactly when the backend rejects the token.
	AuthFailure()
}

// Client issues authenticated JSON requests against the backend.
type Client struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying transport (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a REST client. tokens may be nil for a purely public
// client (unauthenticated report browsing).
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, payload, out any) error {
	return c.do(ctx, http.MethodPut, path, query, payload, out)
}

func (c *Client) delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// The wrapper is the single writer of "session destroyed due to
		// auth failure"; callers just see the status error.
		if c.tokens != nil {
			c.tokens.AuthFailure()
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newStatusError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

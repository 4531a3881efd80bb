// Package api is the HTTP client for the HealthTrack backend.
//
// Every call goes through handleResponse: non-2xx statuses become *APIError,
// JSON bodies are decoded into typed results. Calls that carry the bearer
// token invoke the unauthorized callback on 401 and 403.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Doer sends a request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource yields the bearer token; ok is false when none is stored.
type TokenSource interface {
	Token(ctx context.Context) (token string, ok bool, err error)
}

type Client struct {
	baseURL        string
	tokens         TokenSource
	doer           Doer
	onUnauthorized func()
	log            zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.doer = hc }
}

// WithDoer replaces the transport, e.g. with a RetryDoer.
func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

// WithUnauthorizedHandler sets the callback invoked when an authenticated
// call is answered with 401 or 403.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for baseURL. tokens may be nil, in which case no
// Authorization header is ever sent.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		doer:    http.DefaultClient,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type call struct {
	method string
	path   string
	body   any
	authed bool
}

func (c *Client) do(ctx context.Context, rc call, out any) error {
	var reader io.Reader
	if rc.body != nil {
		raw, err := json.Marshal(rc.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", rc.method, rc.path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, rc.method, c.baseURL+rc.path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", rc.method, rc.path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	if rc.authed && c.tokens != nil {
		token, ok, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		if ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", rc.method, rc.path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().Str("method", rc.method).Str("path", rc.path).Int("status", resp.StatusCode).Msg("api call")

	err = handleResponse(resp, out)
	if rc.authed && c.onUnauthorized != nil && IsAuthError(err) {
		c.onUnauthorized()
	}
	return err
}

// handleResponse normalizes resp into out or an error. out may be nil when
// the body is irrelevant.
func handleResponse(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		if r, ok := out.(interface{ setRaw(string) }); ok {
			r.setRaw(string(body))
			return nil
		}
		return fmt.Errorf("%w: %q", ErrUnexpectedContentType, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}


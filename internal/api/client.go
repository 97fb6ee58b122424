package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rshade/reminderin/internal/logging"
)

// RequestIDHeader carries the per-request id sent to the server.
const RequestIDHeader = "X-Request-ID"

// Client talks to one scheduling service.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	stream  *http.Client
	limiter *rate.Limiter
	session *SessionStore

	legacyOnce sync.Once
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its cookie jar, if any, holds the session.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout bounds non-streaming requests. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithMutationRate limits create, edit, delete and toggle calls to rps per second.
func WithMutationRate(rps float64) Option {
	return func(c *Client) {
		burst := max(1, int(rps))
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithSession persists the login cookie in store.
func WithSession(store *SessionStore) Option {
	return func(c *Client) { c.session = store }
}

// New creates a client for baseURL, e.g. "https://reminders.example.com".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must use http or https", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Jar: jar},
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		c.http.Jar = jar
	}

	// Event streams stay open until the link completes.
	streamClient := *c.http
	streamClient.Timeout = 0
	c.stream = &streamClient

	if c.session != nil {
		if loadErr := c.session.Load(c.http.Jar, c.baseURL); loadErr != nil {
			return nil, loadErr
		}
	}
	return c, nil
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, logging.NewTraceID())
	return req, nil
}

// send performs req and logs the exchange at debug level.
func (c *Client) send(hc *http.Client, req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := hc.Do(req)

	log := logging.FromContext(req.Context())
	ev := log.Debug().
		Str("component", "api").
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Dur("elapsed", time.Since(start))
	if err != nil {
		ev.Err(err).Msg("request failed")
		return nil, err
	}
	ev.Int("status", resp.StatusCode).Msg("request done")
	return resp, nil
}

// mutate sends a rate-limited request and requires a 2xx answer. If out is
// non-nil and the response has a body, it is decoded into out.
func (c *Client) mutate(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, nil, body)
	if err != nil {
		return err
	}
	resp, err := c.send(c.http, req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newStatusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if decErr := json.NewDecoder(resp.Body).Decode(out); decErr != nil && !errors.Is(decErr, io.EOF) {
		return fmt.Errorf("decoding %s %s response: %w", method, path, decErr)
	}
	return nil
}

// getJSON fetches path and decodes a 200 answer into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	resp, err := c.send(c.http, req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer drainClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return newStatusError(resp)
	}
	if decErr := json.NewDecoder(resp.Body).Decode(out); decErr != nil {
		return fmt.Errorf("decoding GET %s response: %w", path, decErr)
	}
	return nil
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBody))
	_ = body.Close()
}

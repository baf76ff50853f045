package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"menu-admin-go/logger"
	"menu-admin-go/metric"
)

const maxErrorBody = 512

// Client talks to the menu item REST backend on behalf of page handlers.
// Copies made with As share the cache and invalidation subscribers.
type Client struct {
	baseURL string
	http    *http.Client
	cache   *QueryCache
	metrics *metric.Set
	subs    *subscribers
	cookies []*http.Cookie
}

type subscribers struct {
	mu  sync.RWMutex
	fns []func(InvalidationEvent)
}

// Option configures a Client.
type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithCache(q *QueryCache) Option {
	return func(c *Client) { c.cache = q }
}

func WithMetrics(m *metric.Set) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewClient creates a client for the backend at baseURL
// (e.g. "http://127.0.0.1:8080"). Without WithCache every Fetch goes to
// the network.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		cache:   NewQueryCache(0),
		metrics: metric.NoopSet(),
		subs:    &subscribers{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// As returns a copy that forwards r's cookies, so backend calls carry the
// browser's session.
func (c *Client) As(r *http.Request) *Client {
	cp := *c
	cp.cookies = r.Cookies()
	return &cp
}

// Cache exposes the query cache.
func (c *Client) Cache() *QueryCache { return c.cache }

// Subscribe registers fn to receive every invalidation event.
func (c *Client) Subscribe(fn func(InvalidationEvent)) {
	c.subs.mu.Lock()
	defer c.subs.mu.Unlock()
	c.subs.fns = append(c.subs.fns, fn)
}

// Invalidate marks the event's keys stale and notifies subscribers.
func (c *Client) Invalidate(ev InvalidationEvent) {
	c.cache.MarkStale(ev.AffectedKeys...)
	c.metrics.Invalidations.Increment(string(ev.Kind))

	c.subs.mu.RLock()
	fns := append(([]func(InvalidationEvent))(nil), c.subs.fns...)
	c.subs.mu.RUnlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Do executes req and decodes a JSON response into out (which may be nil).
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	raw, err := c.roundTrip(ctx, req)
	if err != nil {
		return err
	}
	if err := c.decode(req, raw, out); err != nil {
		return err
	}
	c.metrics.BackendRequests.Increment(req.Method, "ok")
	return nil
}

// Fetch returns the cached result for q.Key when fresh, otherwise performs
// q.Request and caches the response body.
func (c *Client) Fetch(ctx context.Context, q Query, out any) error {
	if raw, ok := c.cache.Get(q.Key); ok {
		return c.decode(q.Request, raw, out)
	}
	gen := c.cache.Generation(q.Key)
	raw, err := c.roundTrip(ctx, q.Request)
	if err != nil {
		return err
	}
	if err := c.decode(q.Request, raw, out); err != nil {
		return err
	}
	c.metrics.BackendRequests.Increment(q.Request.Method, "ok")
	c.cache.Store(q.Key, gen, raw)
	return nil
}

func (c *Client) decode(req Request, raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		err = fmt.Errorf("failed to decode response: %w", err)
		c.reportFailure(req, err)
		return err
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, req Request) ([]byte, error) {
	raw, err := c.send(ctx, req)
	if err != nil {
		c.reportFailure(req, err)
		return nil, err
	}
	return raw, nil
}

func (c *Client) send(ctx context.Context, req Request) ([]byte, error) {
	target := c.baseURL + req.URL
	if q := req.encodedQuery(); q != "" {
		target += "?" + q
	}

	var body io.Reader
	if req.Data != nil {
		payload, err := json.Marshal(req.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		httpReq.AddCookie(ck)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(raw)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &HTTPError{Method: req.Method, URL: req.URL, Status: resp.StatusCode, Body: snippet}
	}
	return raw, nil
}

func (c *Client) reportFailure(req Request, err error) {
	c.metrics.BackendRequests.Increment(req.Method, "error")
	logger.GetLogger().Errorw(
		fmt.Sprintf("Error communicating with backend via %s on %s", req.Method, req.URL),
		"error", err,
	)
}

// Download performs req and returns the raw response body, bypassing the
// query cache.
func (c *Client) Download(ctx context.Context, req Request) ([]byte, error) {
	raw, err := c.roundTrip(ctx, req)
	if err != nil {
		return nil, err
	}
	c.metrics.BackendRequests.Increment(req.Method, "ok")
	return raw, nil
}

// Package fetch provides the injected network-read capability for stores.
// Responses are cached in memory with a TTL so rapid-fire bindings do not
// hammer the network; transport failures surface as errors while non-2xx
// statuses pass through as ordinary responses.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/Edward-Lombe/besix/internal/log"
	"github.com/Edward-Lombe/besix/internal/store"
)

const (
	// DefaultTTL bounds how long a response is reused.
	DefaultTTL = 30 * time.Second

	defaultCleanupInterval = 5 * time.Minute
	defaultTimeout         = 10 * time.Second
)

// Client performs HTTP reads with TTL response caching. It implements
// store.Fetcher.
type Client struct {
	http  *http.Client
	cache *gocache.Cache
	ttl   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTTL sets how long responses are cached. Zero disables caching.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// New creates a client with a default timeout and the default cache TTL.
func New(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: defaultTimeout},
		ttl:  DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = gocache.New(c.ttl, defaultCleanupInterval)
	return c
}

// Fetch issues a GET for url, returning the raw status and body. Cached
// responses are reused within the TTL. The context cancels the request and
// only suspends the calling flow; event dispatch elsewhere is unaffected.
func (c *Client) Fetch(ctx context.Context, url string) (*store.Response, error) {
	if c.ttl > 0 {
		if cached, ok := c.cache.Get(url); ok {
			resp, isResp := cached.(*store.Response)
			if isResp {
				log.Debug(log.CatFetch, "cache hit", "url", url)
				return resp, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &store.Response{Status: httpResp.StatusCode, Body: body}
	if c.ttl > 0 {
		c.cache.Set(url, resp, c.ttl)
	}
	log.Debug(log.CatFetch, "fetched", "url", url, "status", resp.Status, "bytes", len(body))
	return resp, nil
}

// Invalidate drops the cached response for url, if any.
func (c *Client) Invalidate(url string) {
	c.cache.Delete(url)
}

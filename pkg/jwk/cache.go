package jwk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/jmhodges/clock"
	"github.com/trustkit/jose/pkg/errcode"
)

// maxSetSize bounds the response body read by FetchSet.
const maxSetSize = 1 << 20

// FetchSet fetches a JWK set from the given URL, typically the "jku" header
// parameter of a JWS, using the given HTTP client.
func FetchSet(ctx context.Context, url string, client *http.Client) (*Set, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.SetFetch, err, url)
	}
	req.Header.Set("Accept", MIMESet)

	resp, err := client.Do(req)
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.SetFetch, err, url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errcode.Wrap(errcode.Argument, errcode.SetFetch, fmt.Errorf("unexpected status %s", resp.Status), url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSetSize))
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.SetFetch, err, url)
	}

	set, err := ParseSet(body)
	if err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.SetFetch, err, url)
	}

	if err := set.Validate(); err != nil {
		return nil, errcode.Wrap(errcode.Argument, errcode.SetFetch, err, url)
	}

	return set, nil
}

// URLSetCache is a cache of JWK sets keyed by URL that can be easily used to verify
// JWSs from multiple issuers. It handles refreshing the JWK sets when they expire,
// and caching the JWK sets for a configurable amount of time.
type URLSetCache struct {
	mutex sync.RWMutex

	// sets is a map of JWK sets keyed by URL.
	sets map[string]*Set

	// expiry is a map of JWK set expiry times keyed by URL.
	expiry map[string]time.Time

	// client is the HTTP client used to fetch JWK sets.
	client *http.Client

	// clk is the source of time for cache expiry.
	clk clock.Clock

	// refreshInterval is the amount of time between refreshing JWK sets.
	refreshInterval time.Duration

	// cacheDuration is the amount of time to cache JWK sets.
	cacheDuration time.Duration
}

// NewURLSetCache returns a new JWK set cache.
func NewURLSetCache(client *http.Client, refreshInterval, cacheDuration time.Duration) *URLSetCache {
	return NewURLSetCacheWithClock(client, clock.New(), refreshInterval, cacheDuration)
}

// NewURLSetCacheWithClock returns a new JWK set cache using clk to expire
// cached sets.
func NewURLSetCacheWithClock(client *http.Client, clk clock.Clock, refreshInterval, cacheDuration time.Duration) *URLSetCache {
	if client == nil {
		client = http.DefaultClient
	}
	return &URLSetCache{
		sets:            make(map[string]*Set),
		expiry:          make(map[string]time.Time),
		client:          client,
		clk:             clk,
		refreshInterval: refreshInterval,
		cacheDuration:   cacheDuration,
	}
}

// Get returns the JWK set for the given URL, fetching it if it is not cached
// or the cached copy has expired.
func (c *URLSetCache) Get(ctx context.Context, url string) (*Set, error) {
	c.mutex.RLock()
	set, cached := c.sets[url]
	expiry := c.expiry[url]
	c.mutex.RUnlock()

	if !cached || !c.clk.Now().Before(expiry) {
		return c.Fetch(ctx, url)
	}
	return set, nil
}

// GetKey returns the key from the JWK set for the given URL that matches
// the given key ID, fetching the JWK set if it is not cached or expired.
func (c *URLSetCache) GetKey(ctx context.Context, url string, keyID string) (*Key, error) {
	set, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return set.Get(keyID)
}

// Range iterates over the JWK sets in the cache, calling the given function for each
// URL and key. If the function returns false, the iteration will stop.
func (c *URLSetCache) Range(fn func(url string, key *Key) bool) {
	if fn == nil || c == nil {
		return
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for url, set := range c.sets {
		for _, key := range set.keys {
			if !fn(url, key) {
				return
			}
		}
	}
}

// Fetch fetches the JWK set for the given URL and caches it.
func (c *URLSetCache) Fetch(ctx context.Context, url string) (*Set, error) {
	set, err := FetchSet(ctx, url, c.client)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.sets[url] = set
	c.expiry[url] = c.clk.Now().Add(c.cacheDuration)
	c.mutex.Unlock()

	return set, nil
}

// RefreshAll refreshes all JWK sets in the cache.
func (c *URLSetCache) RefreshAll(ctx context.Context) error {
	c.mutex.RLock()
	urls := make([]string, 0, len(c.sets))
	for url := range c.sets {
		urls = append(urls, url)
	}
	c.mutex.RUnlock()

	for _, url := range urls {
		if _, err := c.Fetch(ctx, url); err != nil {
			return fmt.Errorf("failed to refresh JWK set for %q: %w", url, err)
		}
	}
	return nil
}

// Start starts the JWK set cache, refreshing the JWK sets at the given interval.
// It will block until the context is canceled, and will only return an error if
// the refresh fails, possibly due to a network error.
//
// Most callers will want to call this in a goroutine after creating the cache.
func (c *URLSetCache) Start(ctx context.Context) error {
	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := c.RefreshAll(ctx)
			if err != nil {
				return fmt.Errorf("failed to refresh JWK sets: %w", err)
			}
		}
	}
}

package source

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/cache"
	"github.com/matzehuels/occupancy/pkg/observability"
)

// Cached serves pages from a cache and falls back to the wrapped source.
// Records are stored as JSON, so values come back as JSON types (dates as
// strings, numbers as float64), which booking.ParseRecord accepts.
type Cached struct {
	Inner Source
	Cache cache.Cache
	Keyer cache.Keyer

	// PageTTL and SupportsTTL default to cache.TTLPage and cache.TTLSupports.
	PageTTL     time.Duration
	SupportsTTL time.Duration

	// Refresh skips cache reads but still writes fresh results.
	Refresh bool
}

// NewCached wraps inner. A nil keyer uses cache.DefaultKeyer.
func NewCached(inner Source, c cache.Cache, keyer cache.Keyer) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Cached{
		Inner:       inner,
		Cache:       c,
		Keyer:       keyer,
		PageTTL:     cache.TTLPage,
		SupportsTTL: cache.TTLSupports,
	}
}

// Name returns the wrapped source's name.
func (c *Cached) Name() string { return c.Inner.Name() }

// FetchBookings returns a cached page or fetches and stores it.
func (c *Cached) FetchBookings(ctx context.Context, q Query, token string) (Page, error) {
	key := c.Keyer.PageKey(c.Name(), cache.PageKeyOpts{Year: q.Year, PageSize: q.Size(), Token: token})

	var page Page
	if c.lookup(ctx, key, "page", &page) {
		return page, nil
	}

	page, err := c.Inner.FetchBookings(ctx, q, token)
	if err != nil {
		return Page{}, err
	}
	c.store(ctx, key, "page", page, c.PageTTL)
	return page, nil
}

// FetchSupports returns cached support records or fetches and stores them.
func (c *Cached) FetchSupports(ctx context.Context) ([]booking.Record, error) {
	key := c.Keyer.SupportsKey(c.Name())

	var records []booking.Record
	if c.lookup(ctx, key, "supports", &records) {
		return records, nil
	}

	records, err := c.Inner.FetchSupports(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, "supports", records, c.SupportsTTL)
	return records, nil
}

// Close closes the wrapped source. The cache is owned by the caller.
func (c *Cached) Close() error { return c.Inner.Close() }

// lookup decodes a cache hit into v. Read and decode failures count as misses.
func (c *Cached) lookup(ctx context.Context, key, keyType string, v any) bool {
	if c.Refresh {
		return false
	}
	data, hit, err := c.Cache.Get(ctx, key)
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

// store writes v; cache write failures never fail the fetch.
func (c *Cached) store(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.Cache.Set(ctx, key, data, ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, keyType, len(data))
	}
}

var _ Source = (*Cached)(nil)

// Package cache provides the byte cache used for booking source pages.
//
// Implementations:
//
//   - [FileCache]: JSON entry files under a directory, for CLI use
//   - [RedisCache]: a shared Redis instance, for the server
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that every layer agrees on the key shape:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.PageKey("mongo:bookings", cache.PageKeyOpts{Year: 2024, PageSize: 500})
//
// Only raw source pages are cached; computed layouts are always rebuilt.
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry kind.
const (
	// TTLPage is how long a fetched booking page stays fresh.
	TTLPage = 10 * time.Minute

	// TTLSupports is how long the support directory stays fresh.
	TTLSupports = time.Hour
)

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// PageKeyOpts identifies one page of a booking query.
type PageKeyOpts struct {
	Year     int    `json:"year"`
	PageSize int    `json:"page_size"`
	Token    string `json:"token"`
}

// Keyer generates cache keys.
type Keyer interface {
	// PageKey is the key of one booking page from the named source.
	PageKey(source string, opts PageKeyOpts) string

	// SupportsKey is the key of the support directory of the named source.
	SupportsKey(source string) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// PageKey returns "page:" followed by a hash of source and opts.
func (DefaultKeyer) PageKey(source string, opts PageKeyOpts) string {
	return hashKey("page", source, opts)
}

// SupportsKey returns "supports:" followed by a hash of source.
func (DefaultKeyer) SupportsKey(source string) string {
	return hashKey("supports", source)
}

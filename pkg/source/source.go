// Package source fetches raw booking and support records.
//
// A [Source] serves booking records in pages, mirroring a paginated query
// service. [Collect] drains every page for a year so the caller can hand the
// full set to the timeline builder:
//
//	records, err := source.Collect(ctx, src, source.Query{Year: 2024})
//
// Implementations live in subpackages (source/file, source/mongo). [Static]
// serves records held in memory and [Cached] wraps any source with a
// cache.Cache.
package source

import (
	"context"
	"fmt"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/cache"
	"github.com/matzehuels/occupancy/pkg/observability"
)

// DefaultPageSize is used when a Query leaves PageSize at zero.
const DefaultPageSize = 500

// maxPages bounds Collect against sources that never stop paging.
const maxPages = 10000

// Query selects the bookings relevant to one year.
type Query struct {
	Year     int
	PageSize int
}

// Size returns the effective page size.
func (q Query) Size() int {
	if q.PageSize <= 0 {
		return DefaultPageSize
	}
	return q.PageSize
}

// Page is one page of booking records. Next is empty on the last page.
type Page struct {
	Records []booking.Record `json:"records"`
	Next    string           `json:"next,omitempty"`
}

// Source serves booking and support records.
type Source interface {
	// Name identifies the source in logs and cache keys.
	Name() string

	// FetchBookings returns the page starting at token ("" for the first
	// page). A source may return bookings outside q.Year; they are dropped
	// when the timeline is built.
	FetchBookings(ctx context.Context, q Query, token string) (Page, error)

	// FetchSupports returns every support record.
	FetchSupports(ctx context.Context) ([]booking.Record, error)

	// Close releases the source's resources.
	Close() error
}

// Collect fetches every booking page for q. Transient failures are retried
// with backoff.
func Collect(ctx context.Context, src Source, q Query) ([]booking.Record, error) {
	var (
		records []booking.Record
		token   string
		seen    = map[string]bool{}
	)
	retry := cache.DefaultBackoff
	retry.OnRetry = func(attempt int, err error) {
		observability.Source().OnRetry(ctx, src.Name(), attempt, err)
	}
	for i := 0; i < maxPages; i++ {
		var page Page
		err := retry.Do(ctx, func() error {
			var err error
			page, err = src.FetchBookings(ctx, q, token)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("%s: page %d: %w", src.Name(), i, err)
		}
		observability.Source().OnPageFetched(ctx, src.Name(), i, len(page.Records))
		records = append(records, page.Records...)

		if page.Next == "" {
			return records, nil
		}
		if seen[page.Next] {
			return nil, fmt.Errorf("%s: page token %q repeated", src.Name(), page.Next)
		}
		seen[page.Next] = true
		token = page.Next
	}
	return nil, fmt.Errorf("%s: more than %d pages", src.Name(), maxPages)
}

// Directory fetches the support records of src and indexes them. Malformed
// support records are returned as issues.
func Directory(ctx context.Context, src Source) (booking.Directory, []booking.Issue, error) {
	records, err := src.FetchSupports(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: supports: %w", src.Name(), err)
	}
	supports, issues := booking.ParseSupportRecords(records)
	return booking.NewDirectory(supports), issues, nil
}

package source

import (
	"context"
	"strconv"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/errors"
)

// Static serves records held in memory, paginated by offset.
type Static struct {
	name     string
	bookings []booking.Record
	supports []booking.Record
}

// NewStatic creates a source over the given records.
func NewStatic(name string, bookings, supports []booking.Record) *Static {
	return &Static{name: name, bookings: bookings, supports: supports}
}

// Name returns the source name.
func (s *Static) Name() string { return s.name }

// FetchBookings returns the page at the offset encoded in token.
func (s *Static) FetchBookings(ctx context.Context, q Query, token string) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	offset := 0
	if token != "" {
		n, err := strconv.Atoi(token)
		if err != nil || n < 0 || n > len(s.bookings) {
			return Page{}, errors.New(errors.ErrCodeInvalidInput, "invalid page token %q", token)
		}
		offset = n
	}

	end := offset + q.Size()
	if end > len(s.bookings) {
		end = len(s.bookings)
	}
	page := Page{Records: s.bookings[offset:end]}
	if end < len(s.bookings) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}

// FetchSupports returns the support records.
func (s *Static) FetchSupports(ctx context.Context) ([]booking.Record, error) {
	return s.supports, ctx.Err()
}

// Close does nothing.
func (s *Static) Close() error { return nil }

var _ Source = (*Static)(nil)

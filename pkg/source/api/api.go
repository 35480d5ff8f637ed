// Package api serves booking and support records from a remote booking
// service over HTTP.
//
// The service exposes two paginated JSON collections:
//
//	GET {base}/bookings?year=2024&page_size=500&page=<token>
//	GET {base}/supports?page=<token>
//
// Each response is an envelope {"data": [...], "next": "<token>"}; an empty
// next marks the last page. Support pages are drained in FetchSupports.
package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/errors"
	"github.com/matzehuels/occupancy/pkg/httputil"
	"github.com/matzehuels/occupancy/pkg/source"
)

// Default resource paths, relative to BaseURL.
const (
	DefaultBookingsPath = "/bookings"
	DefaultSupportsPath = "/supports"
)

// maxSupportPages bounds FetchSupports against a service that never stops paging.
const maxSupportPages = 1000

// Options configures the API source.
type Options struct {
	BaseURL      string
	BookingsPath string // defaults to DefaultBookingsPath
	SupportsPath string // defaults to DefaultSupportsPath
	Token        string // sent as a bearer token when set
	Timeout      time.Duration
}

// envelope is one page of a collection.
type envelope struct {
	Data []booking.Record `json:"data"`
	Next string           `json:"next"`
}

// Source reads bookings and supports from a booking service.
type Source struct {
	base     *url.URL
	bookings string
	supports string
	client   *httputil.Client
}

// New validates opts and returns a source. No request is made.
func New(opts Options) (*Source, error) {
	if err := errors.ValidateURL(opts.BaseURL, "http", "https"); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse booking service URL")
	}
	if opts.BookingsPath == "" {
		opts.BookingsPath = DefaultBookingsPath
	}
	if opts.SupportsPath == "" {
		opts.SupportsPath = DefaultSupportsPath
	}

	client := httputil.NewClient(opts.Timeout)
	if opts.Token != "" {
		client.Header.Set("Authorization", "Bearer "+opts.Token)
	}
	return &Source{
		base:     base,
		bookings: opts.BookingsPath,
		supports: opts.SupportsPath,
		client:   client,
	}, nil
}

// Name returns "api:<host>".
func (s *Source) Name() string { return "api:" + s.base.Host }

// FetchBookings returns one page of bookings for q.Year. The token is passed
// through to the service untouched.
func (s *Source) FetchBookings(ctx context.Context, q source.Query, token string) (source.Page, error) {
	params := url.Values{}
	params.Set("year", strconv.Itoa(q.Year))
	params.Set("page_size", strconv.Itoa(q.Size()))
	if token != "" {
		params.Set("page", token)
	}

	var env envelope
	if err := s.client.GetJSON(ctx, s.endpoint(s.bookings, params), &env); err != nil {
		return source.Page{}, err
	}
	return source.Page{Records: env.Data, Next: env.Next}, nil
}

// FetchSupports drains every page of the supports collection.
func (s *Source) FetchSupports(ctx context.Context) ([]booking.Record, error) {
	var (
		records []booking.Record
		token   string
	)
	for i := 0; i < maxSupportPages; i++ {
		params := url.Values{}
		if token != "" {
			params.Set("page", token)
		}
		var env envelope
		if err := s.client.GetJSON(ctx, s.endpoint(s.supports, params), &env); err != nil {
			return nil, err
		}
		records = append(records, env.Data...)
		if env.Next == "" || env.Next == token {
			return records, nil
		}
		token = env.Next
	}
	return nil, errors.New(errors.ErrCodeSourceUnavailable, "supports: more than %d pages", maxSupportPages)
}

// Close releases idle connections.
func (s *Source) Close() error {
	s.client.HTTP.CloseIdleConnections()
	return nil
}

func (s *Source) endpoint(path string, params url.Values) string {
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = params.Encode()
	return u.String()
}

var _ source.Source = (*Source)(nil)

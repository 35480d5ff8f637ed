// Package mongo serves booking and support records from MongoDB.
//
// Bookings are queried one page at a time with skip/limit, sorted by _id so
// pages are stable. Only bookings whose dates intersect the query year are
// returned; dates may be stored either as BSON dates or as ISO-8601 strings,
// under start_date/end_date, startDate/endDate or start/end.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/cache"
	occerrors "github.com/matzehuels/occupancy/pkg/errors"
	"github.com/matzehuels/occupancy/pkg/source"
)

// Default collection names.
const (
	DefaultBookings = "bookings"
	DefaultSupports = "supports"
)

// Options configures the MongoDB source.
type Options struct {
	URI                string
	Database           string
	Collection         string // bookings, defaults to DefaultBookings
	SupportsCollection string // defaults to DefaultSupports
	ConnectTimeout     time.Duration
}

// finder is the subset of *mongo.Collection used by Source.
type finder interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Source reads from two MongoDB collections.
type Source struct {
	name     string
	client   *mongo.Client
	bookings finder
	supports finder
}

// Open connects to MongoDB and pings the primary.
func Open(ctx context.Context, opts Options) (*Source, error) {
	if err := occerrors.ValidateURL(opts.URI, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if opts.Database == "" {
		return nil, occerrors.New(occerrors.ErrCodeInvalidInput, "mongo database is required")
	}
	if opts.Collection == "" {
		opts.Collection = DefaultBookings
	}
	if opts.SupportsCollection == "" {
		opts.SupportsCollection = DefaultSupports
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, occerrors.Wrap(occerrors.ErrCodeSourceUnavailable, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, occerrors.Wrap(occerrors.ErrCodeSourceUnavailable, err, "ping mongo")
	}

	db := client.Database(opts.Database)
	return &Source{
		name:     fmt.Sprintf("mongo:%s.%s", opts.Database, opts.Collection),
		client:   client,
		bookings: db.Collection(opts.Collection),
		supports: db.Collection(opts.SupportsCollection),
	}, nil
}

// Name returns "mongo:<database>.<collection>".
func (s *Source) Name() string { return s.name }

// FetchBookings returns one page of bookings intersecting q.Year. The token
// is the number of documents already returned.
func (s *Source) FetchBookings(ctx context.Context, q source.Query, token string) (source.Page, error) {
	skip := int64(0)
	if token != "" {
		n, err := strconv.ParseInt(token, 10, 64)
		if err != nil || n < 0 {
			return source.Page{}, occerrors.New(occerrors.ErrCodeInvalidInput, "invalid page token %q", token)
		}
		skip = n
	}
	limit := int64(q.Size())

	findOpts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	records, err := s.find(ctx, s.bookings, YearFilter(q.Year), findOpts)
	if err != nil {
		return source.Page{}, err
	}

	page := source.Page{Records: records}
	if int64(len(records)) == limit {
		page.Next = strconv.FormatInt(skip+limit, 10)
	}
	return page, nil
}

// FetchSupports returns every support document.
func (s *Source) FetchSupports(ctx context.Context) ([]booking.Record, error) {
	return s.find(ctx, s.supports, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

// Close disconnects the client.
func (s *Source) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Source) find(ctx context.Context, coll finder, filter interface{}, opts *options.FindOptions) ([]booking.Record, error) {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classify(err)
	}
	defer cur.Close(ctx)

	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify(err)
	}

	records := make([]booking.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, Normalize(d))
	}
	return records, nil
}

// classify marks network and timeout failures as retryable.
func classify(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return cache.Retryable(occerrors.Wrap(occerrors.ErrCodeNetwork, err, "mongo query"))
	}
	return occerrors.Wrap(occerrors.ErrCodeSourceUnavailable, err, "mongo query")
}

// dateFields are the start/end key pairs a booking document may use.
var dateFields = [][2]string{
	{"start_date", "end_date"},
	{"startDate", "endDate"},
	{"start", "end"},
}

// YearFilter matches bookings whose date range intersects year, for every
// key pair in dateFields and for both BSON date and ISO string storage.
func YearFilter(year int) bson.D {
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(year, time.December, 31, 23, 59, 59, 0, time.UTC)

	bounds := [][2]interface{}{
		{primitive.NewDateTimeFromTime(last), primitive.NewDateTimeFromTime(first)},
		{fmt.Sprintf("%04d-12-31\uffff", year), fmt.Sprintf("%04d-01-01", year)},
	}
	var branches bson.A
	for _, f := range dateFields {
		for _, b := range bounds {
			branches = append(branches, bson.D{
				{Key: f[0], Value: bson.D{{Key: "$lte", Value: b[0]}}},
				{Key: f[1], Value: bson.D{{Key: "$gte", Value: b[1]}}},
			})
		}
	}
	return bson.D{{Key: "$or", Value: branches}}
}

// Normalize converts BSON-specific values into the plain types accepted by
// booking.ParseRecord.
func Normalize(doc bson.M) booking.Record {
	rec := make(booking.Record, len(doc))
	for k, v := range doc {
		rec[k] = normalizeValue(v)
	}
	return rec
}

func normalizeValue(v interface{}) interface{} {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time().UTC()
	case primitive.Decimal128:
		return x.String()
	case primitive.ObjectID:
		return x.Hex()
	case int32:
		return int64(x)
	case bson.M:
		return Normalize(x)
	default:
		return v
	}
}

var _ source.Source = (*Source)(nil)

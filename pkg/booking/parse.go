package booking

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/occupancy/pkg/errors"
)

// Record is a loosely-typed booking or support as read from a source.
type Record = map[string]any

// DateLayout is the ISO-8601 calendar date format accepted for dates.
const DateLayout = "2006-01-02"

// Field aliases, first match wins.
var (
	idKeys        = []string{"id", "_id", "booking_id", "bookingId"}
	supportIDKeys = []string{"support_id", "supportId", "support"}
	startKeys     = []string{"start_date", "startDate", "start"}
	endKeys       = []string{"end_date", "endDate", "end"}
	clientKeys    = []string{"client", "client_name", "clientName"}
	vendorKeys    = []string{"vendor", "vendor_name", "vendorName"}
	totalKeys     = []string{"total", "amount", "price"}
	statusKeys    = []string{"status", "state"}

	codeKeys  = []string{"code", "reference"}
	titleKeys = []string{"title", "name"}
	cityKeys  = []string{"city", "town"}
)

// Issue describes a record that was excluded during parsing.
type Issue struct {
	Index int    // position in the input batch
	ID    string // record id if one could be read
	Err   error
}

func (i Issue) Error() string {
	if i.ID != "" {
		return fmt.Sprintf("record %d (id %s): %v", i.Index, i.ID, i.Err)
	}
	return fmt.Sprintf("record %d: %v", i.Index, i.Err)
}

// ParseRecords parses a batch of records. Malformed records are excluded and
// reported as issues; they never abort the batch.
func ParseRecords(records []Record) ([]Booking, []Issue) {
	bookings := make([]Booking, 0, len(records))
	var issues []Issue
	for i, r := range records {
		b, err := ParseRecord(r)
		if err != nil {
			id, _ := stringField(r, idKeys)
			issues = append(issues, Issue{Index: i, ID: id, Err: err})
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, issues
}

// ParseRecord converts a single record into a Booking.
func ParseRecord(r Record) (Booking, error) {
	id, err := requiredID(r, idKeys, "booking id")
	if err != nil {
		return Booking{}, err
	}
	supportID, err := requiredID(r, supportIDKeys, "support id")
	if err != nil {
		return Booking{}, err
	}

	start, err := dateField(r, startKeys, "start date")
	if err != nil {
		return Booking{}, err
	}
	end, err := dateField(r, endKeys, "end date")
	if err != nil {
		return Booking{}, err
	}
	if start.After(end) {
		return Booking{}, errors.New(errors.ErrCodeInvalidRange,
			"start date %s is after end date %s", start.Format(DateLayout), end.Format(DateLayout))
	}

	total, err := decimalField(r, totalKeys)
	if err != nil {
		return Booking{}, err
	}

	client, _ := stringField(r, clientKeys)
	vendor, _ := stringField(r, vendorKeys)
	status, _ := stringField(r, statusKeys)

	return Booking{
		ID:        id,
		SupportID: supportID,
		Start:     start,
		End:       end,
		Client:    client,
		Vendor:    vendor,
		Total:     total,
		Status:    ParseStatus(status),
	}, nil
}

// ParseSupportRecord converts a single record into a Support.
func ParseSupportRecord(r Record) (Support, error) {
	id, err := requiredID(r, idKeys, "support id")
	if err != nil {
		return Support{}, err
	}
	code, _ := stringField(r, codeKeys)
	title, _ := stringField(r, titleKeys)
	city, _ := stringField(r, cityKeys)
	return Support{ID: id, Code: code, Title: title, City: city}, nil
}

// ParseSupportRecords parses a batch of support records, skipping malformed ones.
func ParseSupportRecords(records []Record) ([]Support, []Issue) {
	supports := make([]Support, 0, len(records))
	var issues []Issue
	for i, r := range records {
		s, err := ParseSupportRecord(r)
		if err != nil {
			issues = append(issues, Issue{Index: i, Err: err})
			continue
		}
		supports = append(supports, s)
	}
	return supports, issues
}

// ParseDate parses an ISO-8601 date or an RFC 3339 timestamp. Only the
// calendar date is kept, in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New(errors.ErrCodeInvalidDate, "empty date")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return truncateDate(t), nil
	}
	return time.Time{}, errors.New(errors.ErrCodeInvalidDate, "unparsable date %q", s)
}

func truncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// lookup returns the first present, non-nil value among keys.
func lookup(r Record, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func requiredID(r Record, keys []string, kind string) (string, error) {
	id, ok := stringField(r, keys)
	if !ok {
		return "", errors.New(errors.ErrCodeInvalidInput, "%s is required", kind)
	}
	if err := errors.ValidateIdentifier(kind, id); err != nil {
		return "", err
	}
	return id, nil
}

// stringField reads a field as a string. Integral numbers are formatted
// without a fractional part so numeric ids compare cleanly.
func stringField(r Record, keys []string) (string, bool) {
	v, ok := lookup(r, keys)
	if !ok {
		return "", false
	}
	switch x := v.(type) {
	case string:
		s := strings.TrimSpace(x)
		return s, s != ""
	case int:
		return strconv.Itoa(x), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case float64:
		if x == math.Trunc(x) && !math.IsInf(x, 0) {
			return strconv.FormatInt(int64(x), 10), true
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case fmt.Stringer:
		s := strings.TrimSpace(x.String())
		return s, s != ""
	default:
		return "", false
	}
}

func dateField(r Record, keys []string, kind string) (time.Time, error) {
	v, ok := lookup(r, keys)
	if !ok {
		return time.Time{}, errors.New(errors.ErrCodeInvalidDate, "%s is required", kind)
	}
	switch x := v.(type) {
	case time.Time:
		return truncateDate(x), nil
	case string:
		t, err := ParseDate(x)
		if err != nil {
			return time.Time{}, errors.New(errors.ErrCodeInvalidDate, "%s: %s", kind, errors.UserMessage(err))
		}
		return t, nil
	default:
		return time.Time{}, errors.New(errors.ErrCodeInvalidDate, "%s has unsupported type %T", kind, v)
	}
}

func decimalField(r Record, keys []string) (decimal.Decimal, error) {
	v, ok := lookup(r, keys)
	if !ok {
		return decimal.Zero, nil
	}
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return decimal.Zero, nil
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, errors.New(errors.ErrCodeInvalidInput, "invalid total %q", s)
		}
		return d, nil
	default:
		return decimal.Zero, errors.New(errors.ErrCodeInvalidInput, "total has unsupported type %T", v)
	}
}

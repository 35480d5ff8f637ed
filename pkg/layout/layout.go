package layout

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/timeline"
)

// =============================================================================
// Document - Serialized Occupancy Layout
// =============================================================================

// Document is one year of packed support timelines, optionally sectioned.
type Document struct {
	Year     int       `json:"year" bson:"year"`
	GroupBy  string    `json:"group_by,omitempty" bson:"group_by,omitempty"`
	Sections []Section `json:"sections" bson:"sections"`
	Skipped  []Skipped `json:"skipped,omitempty" bson:"skipped,omitempty"`
}

// Section is a display group. Key is empty for ungrouped documents and for
// bookings with no value for the group attribute.
type Section struct {
	Key      string    `json:"key" bson:"key"`
	Total    string    `json:"total" bson:"total"`
	Supports []Support `json:"supports" bson:"supports"`
}

// Support is one support's timeline.
type Support struct {
	ID       string    `json:"id" bson:"id"`
	Code     string    `json:"code,omitempty" bson:"code,omitempty"`
	Title    string    `json:"title,omitempty" bson:"title,omitempty"`
	City     string    `json:"city,omitempty" bson:"city,omitempty"`
	Rows     int       `json:"rows" bson:"rows"`
	Peak     int       `json:"peak" bson:"peak"`
	Total    string    `json:"total" bson:"total"`
	Bookings []Booking `json:"bookings" bson:"bookings"`
}

// Label returns the display name of the support.
func (s Support) Label() string {
	return booking.Support{ID: s.ID, Code: s.Code, Title: s.Title, City: s.City}.Label()
}

// Booking is a clipped, row-assigned booking.
type Booking struct {
	ID         string `json:"id" bson:"id"`
	Client     string `json:"client,omitempty" bson:"client,omitempty"`
	Vendor     string `json:"vendor,omitempty" bson:"vendor,omitempty"`
	Status     string `json:"status,omitempty" bson:"status,omitempty"`
	Total      string `json:"total" bson:"total"` // decimal string
	StartDate  string `json:"start_date" bson:"start_date"`
	EndDate    string `json:"end_date" bson:"end_date"`
	StartMonth int    `json:"start_month" bson:"start_month"` // 0-11
	Duration   int    `json:"duration" bson:"duration"`       // months, >= 1
	Row        int    `json:"row" bson:"row"`
}

// Range returns the booking's month range.
func (b Booking) Range() timeline.MonthRange {
	return timeline.MonthRange{Start: b.StartMonth, Duration: b.Duration}
}

// Skipped records an input record excluded from the layout.
type Skipped struct {
	Index  int    `json:"index" bson:"index"`
	ID     string `json:"id,omitempty" bson:"id,omitempty"`
	Reason string `json:"reason" bson:"reason"`
}

// =============================================================================
// Conversion
// =============================================================================

// FromSections converts grouped timelines to a Document.
func FromSections(year int, key timeline.GroupKey, sections []timeline.Section) Document {
	doc := Document{Year: year, Sections: make([]Section, 0, len(sections))}
	if key != timeline.GroupNone {
		doc.GroupBy = string(key)
	}
	for _, s := range sections {
		out := Section{Key: s.Key, Total: s.Total.String(), Supports: make([]Support, 0, len(s.Timelines))}
		for _, tl := range s.Timelines {
			out.Supports = append(out.Supports, fromTimeline(tl))
		}
		doc.Sections = append(doc.Sections, out)
	}
	return doc
}

// FromTimelines converts ungrouped timelines to a single-section Document.
func FromTimelines(year int, timelines []timeline.SupportTimeline) Document {
	return FromSections(year, timeline.GroupNone, timeline.GroupBy(timelines, timeline.GroupNone))
}

// WithIssues returns doc with the given parse issues recorded as skipped.
func (d Document) WithIssues(issues []booking.Issue) Document {
	for _, is := range issues {
		d.Skipped = append(d.Skipped, Skipped{Index: is.Index, ID: is.ID, Reason: is.Err.Error()})
	}
	return d
}

func fromTimeline(tl timeline.SupportTimeline) Support {
	s := Support{
		ID:       tl.Support.ID,
		Code:     tl.Support.Code,
		Title:    tl.Support.Title,
		City:     tl.Support.City,
		Rows:     tl.Rows,
		Peak:     tl.Peak(),
		Total:    tl.Total().String(),
		Bookings: make([]Booking, 0, len(tl.Bookings)),
	}
	for _, b := range tl.Bookings {
		s.Bookings = append(s.Bookings, Booking{
			ID:         b.Booking.ID,
			Client:     b.Booking.Client,
			Vendor:     b.Booking.Vendor,
			Status:     string(b.Booking.Status),
			Total:      b.Booking.Total.String(),
			StartDate:  b.Booking.Start.Format(booking.DateLayout),
			EndDate:    b.Booking.End.Format(booking.DateLayout),
			StartMonth: b.Range.Start,
			Duration:   b.Range.Duration,
			Row:        b.Row,
		})
	}
	return s
}

// Supports returns every support of every section, in order.
func (d Document) Supports() []Support {
	var out []Support
	for _, s := range d.Sections {
		out = append(out, s.Supports...)
	}
	return out
}

// BookingCount returns the number of bookings across all sections.
func (d Document) BookingCount() int {
	n := 0
	for _, s := range d.Supports() {
		n += len(s.Bookings)
	}
	return n
}

// =============================================================================
// Serialization API
// =============================================================================

// Marshal serializes a Document to pretty-printed JSON bytes.
func Marshal(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Unmarshal deserializes and validates JSON bytes into a Document.
func Unmarshal(data []byte) (Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := d.Validate(); err != nil {
		return Document{}, err
	}
	return d, nil
}

// Validate checks the structural invariants of a document.
func (d Document) Validate() error {
	if d.Year == 0 {
		return fmt.Errorf("layout must contain a year")
	}
	for _, sec := range d.Sections {
		for _, s := range sec.Supports {
			if s.ID == "" {
				return fmt.Errorf("support without id in section %q", sec.Key)
			}
			for i, b := range s.Bookings {
				r := b.Range()
				if r.Start < 0 || r.Duration < 1 || r.End() >= timeline.MonthsPerYear {
					return fmt.Errorf("support %s booking %s: month range %d+%d outside year", s.ID, b.ID, r.Start, r.Duration)
				}
				if b.Row < 0 || b.Row >= s.Rows {
					return fmt.Errorf("support %s booking %s: row %d outside 0..%d", s.ID, b.ID, b.Row, s.Rows-1)
				}
				for _, o := range s.Bookings[i+1:] {
					if o.Row == b.Row && r.Overlaps(o.Range()) {
						return fmt.Errorf("support %s: bookings %s and %s overlap on row %d", s.ID, b.ID, o.ID, b.Row)
					}
				}
			}
		}
	}
	return nil
}

// WriteFile writes a Document to a JSON file.
func WriteFile(d Document, path string) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Document from a JSON file.
func ReadFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}

package layout

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/errors"
	"github.com/matzehuels/occupancy/pkg/timeline"
)

func sampleDocument() Document {
	d := func(m time.Month, day int) time.Time { return time.Date(2024, m, day, 0, 0, 0, 0, time.UTC) }
	bookings := []booking.Booking{
		{ID: "A", SupportID: "S1", Start: d(1, 1), End: d(3, 31), Client: "Acme", Total: decimal.NewFromInt(300)},
		{ID: "B", SupportID: "S1", Start: d(2, 1), End: d(4, 30), Client: "Zeta", Total: decimal.RequireFromString("12.5")},
		{ID: "C", SupportID: "S2", Start: d(5, 1), End: d(5, 31), Client: "Acme"},
	}
	dir := booking.NewDirectory([]booking.Support{{ID: "S1", Code: "P1", Title: "Gare", City: "Lyon"}})
	sections := timeline.GroupBy(timeline.Build(bookings, dir, 2024), timeline.GroupClient)
	return FromSections(2024, timeline.GroupClient, sections)
}

func TestFromSections(t *testing.T) {
	doc := sampleDocument()

	if doc.Year != 2024 || doc.GroupBy != "client" {
		t.Errorf("Year/GroupBy = %d/%q", doc.Year, doc.GroupBy)
	}
	if len(doc.Sections) != 2 || doc.Sections[0].Key != "Acme" {
		t.Fatalf("sections = %+v", doc.Sections)
	}

	acme := doc.Sections[0]
	if acme.Total != "300" {
		t.Errorf("Acme total = %q, want 300", acme.Total)
	}
	s1 := acme.Supports[0]
	if s1.Rows != 2 || s1.Label() != "P1 Gare" {
		t.Errorf("S1 = %+v", s1)
	}
	a := s1.Bookings[0]
	if a.StartDate != "2024-01-01" || a.StartMonth != 0 || a.Duration != 3 || a.Row != 0 {
		t.Errorf("booking A = %+v", a)
	}

	if doc.BookingCount() != 3 {
		t.Errorf("BookingCount = %d, want 3", doc.BookingCount())
	}
}

func TestFromTimelinesUngrouped(t *testing.T) {
	doc := FromTimelines(2024, nil)
	if doc.GroupBy != "" || len(doc.Sections) != 0 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestWithIssues(t *testing.T) {
	doc := Document{Year: 2024}.WithIssues([]booking.Issue{
		{Index: 3, ID: "x", Err: errors.New(errors.ErrCodeInvalidDate, "unparsable date")},
	})
	if len(doc.Skipped) != 1 || doc.Skipped[0].ID != "x" || !strings.Contains(doc.Skipped[0].Reason, "unparsable") {
		t.Errorf("Skipped = %+v", doc.Skipped)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.json")
	want := sampleDocument()

	if err := WriteFile(want, path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.BookingCount() != want.BookingCount() || got.Sections[1].Key != want.Sections[1].Key {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestUnmarshalValidates(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"bad json", `{`, "unmarshal layout"},
		{"no year", `{"sections":[]}`, "year"},
		{"missing id", `{"year":2024,"sections":[{"supports":[{"rows":1}]}]}`, "without id"},
		{"range outside year", `{"year":2024,"sections":[{"supports":[{"id":"S","rows":1,"bookings":[{"id":"b","start_month":10,"duration":3,"row":0}]}]}]}`, "outside year"},
		{"zero duration", `{"year":2024,"sections":[{"supports":[{"id":"S","rows":1,"bookings":[{"id":"b","start_month":1,"duration":0,"row":0}]}]}]}`, "outside year"},
		{"row beyond rows", `{"year":2024,"sections":[{"supports":[{"id":"S","rows":1,"bookings":[{"id":"b","start_month":1,"duration":1,"row":1}]}]}]}`, "row 1"},
		{"overlap on row", `{"year":2024,"sections":[{"supports":[{"id":"S","rows":1,"bookings":[
			{"id":"a","start_month":0,"duration":3,"row":0},
			{"id":"b","start_month":2,"duration":1,"row":0}]}]}]}`, "overlap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.json))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

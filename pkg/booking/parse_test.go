package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/occupancy/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseRecord(t *testing.T) {
	r := Record{
		"id":         float64(17),
		"support_id": "S1",
		"start_date": "2024-01-15",
		"end_date":   "2024-03-31",
		"client":     "Acme",
		"vendor":     "Jane",
		"total":      "1250.50",
		"status":     "Confirmed",
	}

	b, err := ParseRecord(r)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}

	if b.ID != "17" {
		t.Errorf("ID = %q, want %q", b.ID, "17")
	}
	if b.SupportID != "S1" {
		t.Errorf("SupportID = %q, want %q", b.SupportID, "S1")
	}
	if !b.Start.Equal(date(2024, time.January, 15)) {
		t.Errorf("Start = %v", b.Start)
	}
	if !b.End.Equal(date(2024, time.March, 31)) {
		t.Errorf("End = %v", b.End)
	}
	if !b.Total.Equal(decimal.RequireFromString("1250.5")) {
		t.Errorf("Total = %s, want 1250.5", b.Total)
	}
	if b.Status != StatusConfirmed {
		t.Errorf("Status = %q, want %q", b.Status, StatusConfirmed)
	}
	if b.Client != "Acme" || b.Vendor != "Jane" {
		t.Errorf("Client/Vendor = %q/%q", b.Client, b.Vendor)
	}
}

func TestParseRecordAliases(t *testing.T) {
	r := Record{
		"_id":       "b-1",
		"supportId": 42,
		"startDate": time.Date(2024, 5, 1, 13, 30, 0, 0, time.UTC),
		"endDate":   "2024-05-31T22:00:00Z",
		"amount":    99.0,
	}

	b, err := ParseRecord(r)
	if err != nil {
		t.Fatalf("ParseRecord: %v", err)
	}
	if b.ID != "b-1" || b.SupportID != "42" {
		t.Errorf("ID/SupportID = %q/%q", b.ID, b.SupportID)
	}
	if !b.Start.Equal(date(2024, time.May, 1)) {
		t.Errorf("Start = %v, want date truncated", b.Start)
	}
	if !b.End.Equal(date(2024, time.May, 31)) {
		t.Errorf("End = %v, want date truncated", b.End)
	}
	if !b.Total.Equal(decimal.NewFromInt(99)) {
		t.Errorf("Total = %s", b.Total)
	}
}

func TestParseRecordErrors(t *testing.T) {
	base := func() Record {
		return Record{
			"id":         "1",
			"support_id": "S1",
			"start_date": "2024-01-01",
			"end_date":   "2024-02-01",
		}
	}

	tests := []struct {
		name   string
		mutate func(Record)
		code   errors.Code
	}{
		{"missing id", func(r Record) { delete(r, "id") }, errors.ErrCodeInvalidInput},
		{"blank id", func(r Record) { r["id"] = "  " }, errors.ErrCodeInvalidInput},
		{"missing support", func(r Record) { delete(r, "support_id") }, errors.ErrCodeInvalidInput},
		{"missing start", func(r Record) { delete(r, "start_date") }, errors.ErrCodeInvalidDate},
		{"bad start", func(r Record) { r["start_date"] = "2024-13-01" }, errors.ErrCodeInvalidDate},
		{"bad end type", func(r Record) { r["end_date"] = true }, errors.ErrCodeInvalidDate},
		{"start after end", func(r Record) { r["start_date"] = "2024-03-01" }, errors.ErrCodeInvalidRange},
		{"bad total", func(r Record) { r["total"] = "lots" }, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base()
			tt.mutate(r)
			_, err := ParseRecord(r)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestParseRecordsExcludesMalformed(t *testing.T) {
	records := []Record{
		{"id": "1", "support_id": "S1", "start_date": "2024-01-01", "end_date": "2024-01-31"},
		{"id": "2", "support_id": "S1", "start_date": "not a date", "end_date": "2024-01-31"},
		{"id": "3", "support_id": "S2", "start_date": "2024-06-01", "end_date": "2024-05-01"},
		{"id": "4", "support_id": "S2", "start_date": "2024-06-01", "end_date": "2024-06-30"},
	}

	bookings, issues := ParseRecords(records)

	if len(bookings) != 2 {
		t.Fatalf("got %d bookings, want 2", len(bookings))
	}
	if bookings[0].ID != "1" || bookings[1].ID != "4" {
		t.Errorf("kept ids = %s,%s; want 1,4", bookings[0].ID, bookings[1].ID)
	}
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2", len(issues))
	}
	if issues[0].Index != 1 || issues[0].ID != "2" {
		t.Errorf("issue[0] = %+v", issues[0])
	}
	if issues[1].Index != 2 || issues[1].ID != "3" {
		t.Errorf("issue[1] = %+v", issues[1])
	}
}

func TestParseRecordsEmpty(t *testing.T) {
	bookings, issues := ParseRecords(nil)
	if len(bookings) != 0 || len(issues) != 0 {
		t.Errorf("ParseRecords(nil) = %d bookings, %d issues", len(bookings), len(issues))
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"confirmed", StatusConfirmed},
		{" CONFIRMED ", StatusConfirmed},
		{"canceled", StatusCancelled},
		{"pending", StatusOption},
		{"Reserved", Status("reserved")},
		{"", Status("")},
	}

	for _, tt := range tests {
		if got := ParseStatus(tt.in); got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSupportRecord(t *testing.T) {
	s, err := ParseSupportRecord(Record{"id": 7, "code": "PAN-07", "name": "Gare Nord", "city": "Lyon"})
	if err != nil {
		t.Fatalf("ParseSupportRecord: %v", err)
	}
	want := Support{ID: "7", Code: "PAN-07", Title: "Gare Nord", City: "Lyon"}
	if s != want {
		t.Errorf("got %+v, want %+v", s, want)
	}

	if _, err := ParseSupportRecord(Record{"code": "X"}); err == nil {
		t.Error("expected error for support without id")
	}
}

func TestDirectoryLookup(t *testing.T) {
	dir := NewDirectory([]Support{{ID: "S1", Code: "C1", Title: "Main St", City: "Paris"}})

	if got := dir.Lookup("S1"); got.City != "Paris" {
		t.Errorf("Lookup(S1) = %+v", got)
	}

	got := dir.Lookup("S9")
	if got != (Support{ID: "S9"}) {
		t.Errorf("Lookup(S9) = %+v, want placeholder", got)
	}
	if got.Label() != "S9" {
		t.Errorf("placeholder Label() = %q, want S9", got.Label())
	}

	var nilDir Directory
	if got := nilDir.Lookup("S1"); got.ID != "S1" {
		t.Errorf("nil directory Lookup = %+v", got)
	}
}

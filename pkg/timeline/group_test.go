package timeline

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/errors"
)

func groupFixture() []SupportTimeline {
	bookings := []booking.Booking{
		{ID: "1", SupportID: "S1", Start: day(2024, 1, 1), End: day(2024, 3, 1), Vendor: "Ann", Client: "Acme", Status: booking.StatusConfirmed, Total: decimal.NewFromInt(10)},
		{ID: "2", SupportID: "S1", Start: day(2024, 2, 1), End: day(2024, 4, 1), Vendor: "Bob", Client: "Acme", Status: booking.StatusOption, Total: decimal.NewFromInt(20)},
		{ID: "3", SupportID: "S2", Start: day(2024, 5, 1), End: day(2024, 5, 1), Vendor: "Ann", Client: "Zeta", Status: booking.StatusConfirmed, Total: decimal.NewFromInt(5)},
		{ID: "4", SupportID: "S3", Start: day(2024, 5, 1), End: day(2024, 5, 1), Client: "Zeta", Total: decimal.NewFromInt(1)},
	}
	dir := booking.NewDirectory([]booking.Support{
		{ID: "S1", City: "Lyon"},
		{ID: "S2", City: "Paris"},
		{ID: "S3", City: "Lyon"},
	})
	return Build(bookings, dir, 2024)
}

func sectionKeys(sections []Section) []string {
	keys := make([]string, len(sections))
	for i, s := range sections {
		keys[i] = s.Key
	}
	return keys
}

func TestGroupByNone(t *testing.T) {
	sections := GroupBy(groupFixture(), GroupNone)
	if len(sections) != 1 || len(sections[0].Timelines) != 3 {
		t.Fatalf("sections = %+v", sections)
	}
	if !sections[0].Total.Equal(decimal.NewFromInt(36)) {
		t.Errorf("Total = %s, want 36", sections[0].Total)
	}
}

func TestGroupByCity(t *testing.T) {
	sections := GroupBy(groupFixture(), GroupCity)

	if got := sectionKeys(sections); len(got) != 2 || got[0] != "Lyon" || got[1] != "Paris" {
		t.Fatalf("keys = %v, want [Lyon Paris]", got)
	}
	if len(sections[0].Timelines) != 2 {
		t.Errorf("Lyon has %d timelines, want 2", len(sections[0].Timelines))
	}
	if !sections[0].Total.Equal(decimal.NewFromInt(31)) {
		t.Errorf("Lyon total = %s, want 31", sections[0].Total)
	}
}

func TestGroupByVendorKeepsRows(t *testing.T) {
	timelines := groupFixture()
	sections := GroupBy(timelines, GroupVendor)

	if got := sectionKeys(sections); len(got) != 3 || got[0] != "Ann" || got[1] != "Bob" || got[2] != "" {
		t.Fatalf("keys = %v, want [Ann Bob \"\"]", got)
	}

	bob := sections[1]
	if len(bob.Timelines) != 1 {
		t.Fatalf("Bob timelines = %d, want 1", len(bob.Timelines))
	}
	s1 := bob.Timelines[0]
	if s1.Support.ID != "S1" || len(s1.Bookings) != 1 {
		t.Fatalf("Bob S1 = %+v", s1)
	}
	// Booking 2 was packed on row 1 of a 2-row support; grouping keeps that.
	if s1.Bookings[0].Row != 1 || s1.Rows != 2 {
		t.Errorf("row = %d rows = %d, want 1 and 2", s1.Bookings[0].Row, s1.Rows)
	}

	// The input timelines are untouched.
	if len(timelines[0].Bookings) != 2 {
		t.Error("GroupBy mutated its input")
	}
}

func TestGroupByStatusAndClient(t *testing.T) {
	status := GroupBy(groupFixture(), GroupStatus)
	if got := sectionKeys(status); len(got) != 3 || got[0] != "confirmed" || got[1] != "option" {
		t.Errorf("status keys = %v", got)
	}
	if len(status[0].Timelines) != 2 {
		t.Errorf("confirmed timelines = %d, want 2", len(status[0].Timelines))
	}

	client := GroupBy(groupFixture(), GroupClient)
	if got := sectionKeys(client); len(got) != 2 || got[0] != "Acme" || got[1] != "Zeta" {
		t.Errorf("client keys = %v", got)
	}
}

func TestGroupByEmpty(t *testing.T) {
	if got := GroupBy(nil, GroupVendor); got != nil {
		t.Errorf("GroupBy(nil) = %v, want nil", got)
	}
}

func TestParseGroupKey(t *testing.T) {
	tests := []struct {
		in      string
		want    GroupKey
		wantErr bool
	}{
		{"", GroupNone, false},
		{"none", GroupNone, false},
		{"Vendor", GroupVendor, false},
		{" city ", GroupCity, false},
		{"status", GroupStatus, false},
		{"client", GroupClient, false},
		{"support", GroupNone, true},
	}

	for _, tt := range tests {
		got, err := ParseGroupKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGroupKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidGroup) {
			t.Errorf("ParseGroupKey(%q) code = %v", tt.in, errors.GetCode(err))
		}
		if got != tt.want {
			t.Errorf("ParseGroupKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package timeline

import (
	"math/rand"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/occupancy/pkg/booking"
)

func bk(id, support string, start, end time.Time) booking.Booking {
	return booking.Booking{ID: id, SupportID: support, Start: start, End: end, Total: decimal.Zero}
}

func TestBuildScenario(t *testing.T) {
	bookings := []booking.Booking{
		bk("A", "S1", day(2024, 1, 1), day(2024, 3, 31)),
		bk("B", "S1", day(2024, 2, 1), day(2024, 4, 30)),
		bk("C", "S1", day(2024, 5, 1), day(2024, 5, 31)),
	}
	dir := booking.NewDirectory([]booking.Support{{ID: "S1", Code: "S1", City: "Lyon"}})

	got := Build(bookings, dir, 2024)
	if len(got) != 1 {
		t.Fatalf("got %d timelines, want 1", len(got))
	}
	tl := got[0]
	if tl.Support.City != "Lyon" {
		t.Errorf("Support = %+v", tl.Support)
	}
	if tl.Rows != 2 {
		t.Errorf("Rows = %d, want 2", tl.Rows)
	}
	if tl.Peak() != 2 {
		t.Errorf("Peak = %d, want 2", tl.Peak())
	}

	rows := rowsByID(tl.Bookings)
	if rows["A"] == rows["B"] {
		t.Errorf("A and B share row %d", rows["A"])
	}
	if rows["A"] != 0 || rows["B"] != 1 || rows["C"] != 0 {
		t.Errorf("rows = %v, want A:0 B:1 C:0", rows)
	}

	want := map[string]MonthRange{"A": {0, 3}, "B": {1, 3}, "C": {4, 1}}
	for _, b := range tl.Bookings {
		if b.Range != want[b.Booking.ID] {
			t.Errorf("%s range = %+v, want %+v", b.Booking.ID, b.Range, want[b.Booking.ID])
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil, nil, 2024); len(got) != 0 {
		t.Errorf("Build(nil) = %v, want empty", got)
	}
}

func TestBuildExcludesOtherYears(t *testing.T) {
	bookings := []booking.Booking{
		bk("old", "S1", day(2022, 2, 1), day(2022, 11, 30)),
		bk("new", "S2", day(2024, 2, 1), day(2024, 3, 1)),
		bk("gone", "S2", day(2025, 1, 1), day(2025, 3, 1)),
	}

	got := Build(bookings, nil, 2024)
	if len(got) != 1 {
		t.Fatalf("got %d timelines, want 1 (S1 has no 2024 booking)", len(got))
	}
	if got[0].Support.ID != "S2" || len(got[0].Bookings) != 1 || got[0].Bookings[0].Booking.ID != "new" {
		t.Errorf("timeline = %+v", got[0])
	}
}

func TestBuildSupportOrderAndPlaceholder(t *testing.T) {
	bookings := []booking.Booking{
		bk("1", "S3", day(2024, 6, 1), day(2024, 6, 2)),
		bk("2", "S1", day(2024, 1, 1), day(2024, 1, 2)),
		bk("3", "S3", day(2024, 1, 1), day(2024, 1, 2)),
		bk("4", "S2", day(2024, 1, 1), day(2024, 1, 2)),
	}
	dir := booking.NewDirectory([]booking.Support{{ID: "S1", Title: "Known"}})

	got := Build(bookings, dir, 2024)

	var ids []string
	for _, tl := range got {
		ids = append(ids, tl.Support.ID)
	}
	if !reflect.DeepEqual(ids, []string{"S3", "S1", "S2"}) {
		t.Errorf("support order = %v, want [S3 S1 S2]", ids)
	}
	if got[2].Support != (booking.Support{ID: "S2"}) {
		t.Errorf("unknown support = %+v, want placeholder", got[2].Support)
	}
	// S3's bookings are sorted by start month inside the timeline.
	if got[0].Bookings[0].Booking.ID != "3" {
		t.Errorf("S3 first booking = %s, want 3", got[0].Bookings[0].Booking.ID)
	}
}

func TestBuildClipsAcrossYears(t *testing.T) {
	b := bk("x", "S1", day(2023, 11, 1), day(2024, 2, 1))

	for year, want := range map[int]MonthRange{2023: {10, 2}, 2024: {0, 2}} {
		got := Build([]booking.Booking{b}, nil, year)
		if len(got) != 1 || got[0].Bookings[0].Range != want {
			t.Errorf("year %d: got %+v, want range %+v", year, got, want)
		}
	}
}

func TestBuildIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	bookings := randomBookings(rng, 200)

	first := Build(bookings, nil, 2024)
	second := Build(bookings, nil, 2024)
	if !reflect.DeepEqual(first, second) {
		t.Error("Build is not deterministic")
	}

	// Input order within a support must not change the result.
	shuffled := make([]booking.Booking, len(bookings))
	copy(shuffled, bookings)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	third := Build(shuffled, nil, 2024)

	byID := func(tls []SupportTimeline) map[string]SupportTimeline {
		m := make(map[string]SupportTimeline)
		for _, tl := range tls {
			m[tl.Support.ID] = tl
		}
		return m
	}
	if !reflect.DeepEqual(byID(first), byID(third)) {
		t.Error("Build depends on input order within a support")
	}
}

func TestBuildInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 50; iter++ {
		for _, tl := range Build(randomBookings(rng, 120), nil, 2024) {
			if tl.Rows != tl.Peak() {
				t.Fatalf("support %s: rows = %d, peak = %d", tl.Support.ID, tl.Rows, tl.Peak())
			}
			for i, a := range tl.Bookings {
				if a.Range.Duration < 1 || a.Range.Start < 0 || a.Range.End() > 11 {
					t.Fatalf("bad range %+v", a.Range)
				}
				for _, b := range tl.Bookings[i+1:] {
					if a.Row == b.Row && a.Range.Overlaps(b.Range) {
						t.Fatalf("support %s: %s and %s overlap on row %d",
							tl.Support.ID, a.Booking.ID, b.Booking.ID, a.Row)
					}
				}
			}
		}
	}
}

func randomBookings(rng *rand.Rand, n int) []booking.Booking {
	out := make([]booking.Booking, n)
	base := day(2023, 1, 1)
	for i := range out {
		start := base.AddDate(0, 0, rng.Intn(3*365))
		end := start.AddDate(0, 0, rng.Intn(200))
		out[i] = booking.Booking{
			ID:        strconv.Itoa(i),
			SupportID: "S" + strconv.Itoa(rng.Intn(8)),
			Start:     start,
			End:       end,
			Total:     decimal.NewFromInt(int64(rng.Intn(5000))),
		}
	}
	return out
}

func TestSupportTimelineAggregates(t *testing.T) {
	bookings := []booking.Booking{
		bk("1", "S1", day(2024, 1, 1), day(2024, 2, 1)),
		bk("2", "S1", day(2024, 2, 1), day(2024, 2, 1)),
		bk("3", "S1", day(2024, 6, 1), day(2024, 6, 1)),
	}
	bookings[0].Total = decimal.RequireFromString("100.10")
	bookings[1].Total = decimal.RequireFromString("0.90")

	tl := Build(bookings, nil, 2024)[0]

	if !tl.Total().Equal(decimal.NewFromInt(101)) {
		t.Errorf("Total = %s, want 101", tl.Total())
	}
	occ := tl.Occupancy()
	if occ[0] != 1 || occ[1] != 2 || occ[5] != 1 || occ[2] != 0 {
		t.Errorf("Occupancy = %v", occ)
	}
	if tl.OccupiedMonths() != 3 {
		t.Errorf("OccupiedMonths = %d, want 3", tl.OccupiedMonths())
	}
	rows := tl.RowBookings()
	if len(rows) != 2 || len(rows[0]) != 2 || len(rows[1]) != 1 {
		t.Errorf("RowBookings shape = %v", rows)
	}
}

func TestSummarize(t *testing.T) {
	bookings := []booking.Booking{
		bk("1", "S1", day(2024, 1, 1), day(2024, 3, 1)),
		bk("2", "S1", day(2024, 2, 1), day(2024, 2, 1)),
		bk("3", "S2", day(2024, 2, 1), day(2024, 2, 1)),
	}
	s := Summarize(Build(bookings, nil, 2024))

	if s.Supports != 2 || s.Bookings != 3 || s.Rows != 3 || s.Peak != 2 {
		t.Errorf("Summary = %+v", s)
	}
	if s.BusiestMonth != 1 || s.Occupancy[1] != 3 {
		t.Errorf("BusiestMonth = %d, occupancy = %v", s.BusiestMonth, s.Occupancy)
	}

	if empty := Summarize(nil); empty.BusiestMonth != -1 || !empty.Total.IsZero() {
		t.Errorf("Summarize(nil) = %+v", empty)
	}
}

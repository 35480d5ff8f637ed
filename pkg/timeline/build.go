package timeline

import (
	"github.com/shopspring/decimal"

	"github.com/matzehuels/occupancy/pkg/booking"
)

// SupportTimeline is one support's packed bookings for a year.
type SupportTimeline struct {
	Support  booking.Support
	Bookings []ClippedBooking // sorted by start month, then booking id
	Rows     int
}

// Build clips bookings to year, groups them by support in order of first
// appearance, and packs each group. Supports with no booking in the year
// are omitted. Supports missing from dir get a placeholder carrying only
// the ID.
func Build(bookings []booking.Booking, dir booking.Directory, year int) []SupportTimeline {
	var order []string
	groups := make(map[string][]Entry)

	for _, b := range bookings {
		r, ok := Clip(b.Start, b.End, year)
		if !ok {
			continue
		}
		if _, seen := groups[b.SupportID]; !seen {
			order = append(order, b.SupportID)
		}
		groups[b.SupportID] = append(groups[b.SupportID], Entry{Booking: b, Range: r})
	}

	timelines := make([]SupportTimeline, 0, len(order))
	for _, id := range order {
		packed := Pack(SortEntries(groups[id]))
		timelines = append(timelines, SupportTimeline{
			Support:  dir.Lookup(id),
			Bookings: packed,
			Rows:     RowCount(packed),
		})
	}
	return timelines
}

// Total returns the sum of booking totals on the timeline.
func (t SupportTimeline) Total() decimal.Decimal {
	total := decimal.Zero
	for _, b := range t.Bookings {
		total = total.Add(b.Booking.Total)
	}
	return total
}

// Occupancy returns the number of bookings active in each month.
func (t SupportTimeline) Occupancy() [MonthsPerYear]int {
	var counts [MonthsPerYear]int
	for _, b := range t.Bookings {
		for m := b.Range.Start; m <= b.Range.End() && m < MonthsPerYear; m++ {
			counts[m]++
		}
	}
	return counts
}

// Peak returns the largest number of bookings active in a single month.
func (t SupportTimeline) Peak() int {
	peak := 0
	for _, n := range t.Occupancy() {
		if n > peak {
			peak = n
		}
	}
	return peak
}

// OccupiedMonths returns how many months have at least one booking.
func (t SupportTimeline) OccupiedMonths() int {
	n := 0
	for _, c := range t.Occupancy() {
		if c > 0 {
			n++
		}
	}
	return n
}

// RowBookings returns the bookings of each row, indexed by row.
func (t SupportTimeline) RowBookings() [][]ClippedBooking {
	rows := make([][]ClippedBooking, t.Rows)
	for _, b := range t.Bookings {
		if b.Row < len(rows) {
			rows[b.Row] = append(rows[b.Row], b)
		}
	}
	return rows
}

package timeline

import (
	"sort"
	"strconv"

	"github.com/matzehuels/occupancy/pkg/booking"
)

// Entry is a booking annotated with its month range for a target year.
type Entry struct {
	Booking booking.Booking
	Range   MonthRange
}

// ClippedBooking is an entry with its assigned row.
type ClippedBooking struct {
	Booking booking.Booking
	Range   MonthRange
	Row     int
}

// SortEntries returns a copy of entries ordered by start month, then by
// booking ID. IDs that are both integers compare numerically.
func SortEntries(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Range.Start != b.Range.Start {
			return a.Range.Start < b.Range.Start
		}
		return lessID(a.Booking.ID, b.Booking.ID)
	})
	return sorted
}

func lessID(a, b string) bool {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	switch {
	case aerr == nil && berr == nil:
		return ai < bi
	case aerr == nil:
		return true // numeric ids sort before others
	case berr == nil:
		return false
	default:
		return a < b
	}
}

// Pack assigns each entry the first row where it overlaps nothing already
// placed, opening a new row when none fits. Entries are processed in the
// given order and returned in that order.
func Pack(entries []Entry) []ClippedBooking {
	out := make([]ClippedBooking, 0, len(entries))
	var rows [][]MonthRange

	for _, e := range entries {
		row := firstFit(rows, e.Range)
		if row == len(rows) {
			rows = append(rows, nil)
		}
		rows[row] = append(rows[row], e.Range)
		out = append(out, ClippedBooking{Booking: e.Booking, Range: e.Range, Row: row})
	}
	return out
}

func firstFit(rows [][]MonthRange, r MonthRange) int {
	for i, placed := range rows {
		fits := true
		for _, p := range placed {
			if p.Overlaps(r) {
				fits = false
				break
			}
		}
		if fits {
			return i
		}
	}
	return len(rows)
}

// RowCount returns max(row)+1, or 0 for no bookings.
func RowCount(bookings []ClippedBooking) int {
	n := 0
	for _, b := range bookings {
		if b.Row+1 > n {
			n = b.Row + 1
		}
	}
	return n
}

package timeline

import "github.com/shopspring/decimal"

// Summary aggregates figures over a set of timelines.
type Summary struct {
	Supports     int
	Bookings     int
	Rows         int
	Peak         int // highest per-support peak
	Total        decimal.Decimal
	Occupancy    [MonthsPerYear]int // bookings active per month, all supports
	BusiestMonth int                // -1 when there are no bookings
}

// Summarize computes a Summary. Timelines may come from different sections;
// a support listed more than once is counted once per listing.
func Summarize(timelines []SupportTimeline) Summary {
	s := Summary{Total: decimal.Zero, BusiestMonth: -1}
	for _, t := range timelines {
		s.Supports++
		s.Bookings += len(t.Bookings)
		s.Rows += t.Rows
		s.Total = s.Total.Add(t.Total())
		if p := t.Peak(); p > s.Peak {
			s.Peak = p
		}
		occ := t.Occupancy()
		for m := range occ {
			s.Occupancy[m] += occ[m]
		}
	}

	best := 0
	for m, n := range s.Occupancy {
		if n > best {
			best = n
			s.BusiestMonth = m
		}
	}
	return s
}

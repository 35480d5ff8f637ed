package timeline

import "time"

// MonthsPerYear is the number of month columns in a timeline.
const MonthsPerYear = 12

// MonthRange is a closed interval of month indexes within one year.
type MonthRange struct {
	Start    int // 0-11
	Duration int // >= 1
}

// End returns the last month index covered by the range.
func (r MonthRange) End() int {
	return r.Start + r.Duration - 1
}

// Contains reports whether month falls within the range.
func (r MonthRange) Contains(month int) bool {
	return month >= r.Start && month <= r.End()
}

// Overlaps reports whether r and o share at least one month.
func (r MonthRange) Overlaps(o MonthRange) bool {
	return r.Start <= o.End() && o.Start <= r.End()
}

// Overlaps reports whether two month ranges share at least one month.
func Overlaps(a, b MonthRange) bool {
	return a.Overlaps(b)
}

// Months returns the inclusive number of calendar months from start to end.
// A range that starts and ends in the same month counts as one. The result
// is never less than one.
func Months(start, end time.Time) int {
	n := (end.Year()-start.Year())*12 + int(end.Month()-start.Month()) + 1
	if n < 1 {
		return 1
	}
	return n
}

// Clip returns the month range that [start, end] occupies within year.
// It returns false when the dates do not intersect the year, or when end
// is before start.
func Clip(start, end time.Time, year int) (MonthRange, bool) {
	if end.Before(start) {
		return MonthRange{}, false
	}
	if start.Year() > year || end.Year() < year {
		return MonthRange{}, false
	}

	loc := start.Location()
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	last := time.Date(year, time.December, 31, 0, 0, 0, 0, loc)

	if start.Before(first) {
		start = first
	}
	if end.After(last) {
		end = last
	}

	r := MonthRange{
		Start:    int(start.Month()) - 1,
		Duration: Months(start, end),
	}
	if r.End() >= MonthsPerYear {
		// Unreachable once both dates are inside year.
		r.Duration = MonthsPerYear - r.Start
	}
	return r, true
}

// Package timeline computes yearly occupancy layouts for supports.
//
// The package is a pure transform: given bookings and a target year it
// clips every booking to that year, groups bookings by support, and packs
// each support's bookings onto rows so that no two overlapping bookings
// share a row.
//
// # Month Ranges
//
// A [MonthRange] is a closed interval of month indexes (0 = January,
// 11 = December) expressed as a start and a duration of at least one
// month. [Clip] derives it from a booking's dates:
//
//	r, ok := timeline.Clip(start, end, 2024)
//	// 2023-11-01..2024-02-01 → {Start: 0, Duration: 2}, true
//
// # Row Packing
//
// [Pack] assigns rows greedily: each entry goes to the first row whose
// ranges it does not overlap, or to a new row. When entries are ordered by
// start month (see [SortEntries]) the row count equals the maximum number
// of bookings active in any single month.
//
// # Building Timelines
//
// [Build] runs the whole pass:
//
//	timelines := timeline.Build(bookings, dir, 2024)
//	for _, tl := range timelines {
//	    fmt.Println(tl.Support.Label(), tl.Rows)
//	}
//
// [GroupBy] then splits the result into display sections keyed by vendor,
// client, city or status. Grouping never changes row assignment.
//
// Nothing in this package mutates its inputs; each call allocates fresh
// results, and identical inputs yield identical outputs.
package timeline

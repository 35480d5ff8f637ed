package timeline_test

import (
	"fmt"
	"time"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/timeline"
)

func ExampleClip() {
	start := time.Date(2023, time.November, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)

	for _, year := range []int{2023, 2024, 2025} {
		r, ok := timeline.Clip(start, end, year)
		fmt.Println(year, r.Start, r.Duration, ok)
	}
	// Output:
	// 2023 10 2 true
	// 2024 0 2 true
	// 2025 0 0 false
}

func ExampleBuild() {
	d := func(m time.Month, day int) time.Time { return time.Date(2024, m, day, 0, 0, 0, 0, time.UTC) }
	bookings := []booking.Booking{
		{ID: "A", SupportID: "S1", Start: d(time.January, 1), End: d(time.March, 31)},
		{ID: "B", SupportID: "S1", Start: d(time.February, 1), End: d(time.April, 30)},
		{ID: "C", SupportID: "S1", Start: d(time.May, 1), End: d(time.May, 31)},
	}

	for _, tl := range timeline.Build(bookings, nil, 2024) {
		fmt.Println(tl.Support.ID, "rows:", tl.Rows)
		for _, b := range tl.Bookings {
			fmt.Printf("  %s start=%d duration=%d row=%d\n", b.Booking.ID, b.Range.Start, b.Range.Duration, b.Row)
		}
	}
	// Output:
	// S1 rows: 2
	//   A start=0 duration=3 row=0
	//   B start=1 duration=3 row=1
	//   C start=4 duration=1 row=0
}

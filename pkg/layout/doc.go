// Package layout provides the serialization format for computed occupancy
// layouts.
//
// A [Document] is the wire form of one year's timelines, used for JSON
// files, API responses and as the input of every renderer. It carries
// json and bson tags so the same value can be written to disk or stored
// alongside bookings.
//
// # Converting
//
//	sections := timeline.GroupBy(timeline.Build(bookings, dir, 2024), timeline.GroupCity)
//	doc := layout.FromSections(2024, timeline.GroupCity, sections)
//
// # Files
//
//	layout.WriteFile(doc, "layout.json")
//	doc, err := layout.ReadFile("layout.json")
//
// [Unmarshal] validates the document: month indexes and durations must stay
// within the year and no two bookings of a support may share a row while
// overlapping.
package layout

package pipeline

import (
	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/timeline"
)

// =============================================================================
// Dataset
// =============================================================================

// Dataset is the parsed output of the load stage.
type Dataset struct {
	Source    string
	Records   int // raw booking records fetched
	Bookings  []booking.Booking
	Directory booking.Directory
	Issues    []booking.Issue // malformed booking records, excluded from Bookings
}

// NewDataset parses raw booking and support records. Malformed booking
// records become issues; malformed support records are dropped, which
// leaves their bookings on placeholder supports.
func NewDataset(name string, records, supports []booking.Record) *Dataset {
	bookings, issues := booking.ParseRecords(records)
	sups, _ := booking.ParseSupportRecords(supports)
	return &Dataset{
		Source:    name,
		Records:   len(records),
		Bookings:  bookings,
		Directory: booking.NewDirectory(sups),
		Issues:    issues,
	}
}

// =============================================================================
// Layout Generation
// =============================================================================

// ComputeLayout filters the dataset, builds the year's timelines and groups
// them. The summary is computed before grouping, so supports split across
// sections are counted once.
//
// ComputeLayout is pure: the same dataset and options give the same document.
func ComputeLayout(data *Dataset, opts Options) (layout.Document, timeline.Summary) {
	bookings := opts.Filter.Apply(data.Bookings)
	timelines := timeline.Build(bookings, data.Directory, opts.Year)
	summary := timeline.Summarize(timelines)

	sections := timeline.GroupBy(timelines, opts.GroupKey())
	doc := layout.FromSections(opts.Year, opts.GroupKey(), sections).WithIssues(data.Issues)
	return doc, summary
}

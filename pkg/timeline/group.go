package timeline

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/matzehuels/occupancy/pkg/errors"
)

// GroupKey selects the attribute used to section timelines for display.
type GroupKey string

// Supported group keys.
const (
	GroupNone   GroupKey = ""
	GroupVendor GroupKey = "vendor"
	GroupClient GroupKey = "client"
	GroupCity   GroupKey = "city"
	GroupStatus GroupKey = "status"
)

// ValidGroupKeys lists the accepted values for ParseGroupKey.
var ValidGroupKeys = []GroupKey{GroupNone, GroupVendor, GroupClient, GroupCity, GroupStatus}

// ParseGroupKey accepts "", "none" or one of the attribute names.
func ParseGroupKey(s string) (GroupKey, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "none":
		return GroupNone, nil
	case string(GroupVendor), string(GroupClient), string(GroupCity), string(GroupStatus):
		return GroupKey(v), nil
	default:
		return GroupNone, errors.New(errors.ErrCodeInvalidGroup,
			"invalid group %q (must be one of: none, vendor, client, city, status)", s)
	}
}

func (k GroupKey) String() string {
	if k == GroupNone {
		return "none"
	}
	return string(k)
}

// Section is a display group of timelines sharing one attribute value.
type Section struct {
	Key       string // attribute value, empty when unset
	Timelines []SupportTimeline
	Total     decimal.Decimal
}

// GroupBy splits timelines into sections by key. Sections appear in order
// of first encounter.
//
// City groups whole timelines. Vendor, client and status are booking
// attributes: a support appears in every section one of its bookings
// belongs to, carrying only those bookings. Row indexes and row counts are
// kept from the packed timeline so a support has the same shape in every
// section.
//
// GroupNone yields a single section holding every timeline.
func GroupBy(timelines []SupportTimeline, key GroupKey) []Section {
	if len(timelines) == 0 {
		return nil
	}

	switch key {
	case GroupNone:
		s := Section{Timelines: timelines}
		s.Total = sumTotals(timelines)
		return []Section{s}
	case GroupCity:
		return groupTimelines(timelines, func(t SupportTimeline) string { return t.Support.City })
	case GroupVendor, GroupClient, GroupStatus:
		return groupBookings(timelines, bookingAttr(key))
	default:
		panic(fmt.Sprintf("timeline: unknown group key %q", string(key)))
	}
}

func bookingAttr(key GroupKey) func(ClippedBooking) string {
	switch key {
	case GroupVendor:
		return func(b ClippedBooking) string { return b.Booking.Vendor }
	case GroupClient:
		return func(b ClippedBooking) string { return b.Booking.Client }
	default:
		return func(b ClippedBooking) string { return string(b.Booking.Status) }
	}
}

type sectionIndex struct {
	order []string
	byKey map[string]*Section
}

func newSectionIndex() *sectionIndex {
	return &sectionIndex{byKey: make(map[string]*Section)}
}

func (ix *sectionIndex) get(key string) *Section {
	s, ok := ix.byKey[key]
	if !ok {
		s = &Section{Key: key, Total: decimal.Zero}
		ix.byKey[key] = s
		ix.order = append(ix.order, key)
	}
	return s
}

func (ix *sectionIndex) sections() []Section {
	out := make([]Section, 0, len(ix.order))
	for _, k := range ix.order {
		out = append(out, *ix.byKey[k])
	}
	return out
}

func groupTimelines(timelines []SupportTimeline, attr func(SupportTimeline) string) []Section {
	ix := newSectionIndex()
	for _, t := range timelines {
		s := ix.get(attr(t))
		s.Timelines = append(s.Timelines, t)
		s.Total = s.Total.Add(t.Total())
	}
	return ix.sections()
}

func groupBookings(timelines []SupportTimeline, attr func(ClippedBooking) string) []Section {
	ix := newSectionIndex()
	for _, t := range timelines {
		var keys []string
		subsets := make(map[string][]ClippedBooking)
		for _, b := range t.Bookings {
			k := attr(b)
			if _, ok := subsets[k]; !ok {
				keys = append(keys, k)
			}
			subsets[k] = append(subsets[k], b)
		}
		for _, k := range keys {
			sub := SupportTimeline{Support: t.Support, Bookings: subsets[k], Rows: t.Rows}
			s := ix.get(k)
			s.Timelines = append(s.Timelines, sub)
			s.Total = s.Total.Add(sub.Total())
		}
	}
	return ix.sections()
}

func sumTotals(timelines []SupportTimeline) decimal.Decimal {
	total := decimal.Zero
	for _, t := range timelines {
		total = total.Add(t.Total())
	}
	return total
}

package sink

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/render/locale"
)

const (
	icsProductID = "-//occupancy//year layout//EN"
	icsDomain    = "occupancy"
	icsCalName   = "X-WR-CALNAME"
)

// RenderICS encodes one all-day VEVENT per booking, clipped to the document
// year. DTEND is exclusive. DTSTAMP is fixed to January 1st of the year so
// that the same document always encodes to the same bytes.
func RenderICS(doc layout.Document, loc *locale.Localizer) ([]byte, error) {
	if loc == nil {
		loc = locale.New("")
	}
	name := fmt.Sprintf("%s %d", loc.T(locale.LabelCalendar), doc.Year)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, icsProductID)
	// SetText would add VALUE=TEXT to the extension property.
	calName := ical.NewProp(icsCalName)
	calName.Value = name
	cal.Props.Set(calName)

	yearStart := time.Date(doc.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(doc.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	stamp := ical.NewProp(ical.PropDateTimeStamp)
	stamp.SetDateTime(yearStart)

	for _, s := range doc.Supports() {
		for _, b := range s.Bookings {
			start, err := booking.ParseDate(b.StartDate)
			if err != nil {
				return nil, fmt.Errorf("booking %s: %w", b.ID, err)
			}
			end, err := booking.ParseDate(b.EndDate)
			if err != nil {
				return nil, fmt.Errorf("booking %s: %w", b.ID, err)
			}
			if start.Before(yearStart) {
				start = yearStart
			}
			if end.After(yearEnd) {
				end = yearEnd
			}

			event := ical.NewEvent()
			event.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%d@%s", b.ID, doc.Year, icsDomain))
			event.Props.Set(stamp)
			event.Props.SetText(ical.PropSummary, summary(s, b))
			if s.City != "" {
				event.Props.SetText(ical.PropLocation, s.City)
			}
			if b.Status != "" {
				event.Props.SetText(ical.PropCategories, b.Status)
			}
			event.Props.SetText(ical.PropDescription, description(s, b))

			dtStart := ical.NewProp(ical.PropDateTimeStart)
			dtStart.SetDate(start)
			event.Props.Set(dtStart)
			dtEnd := ical.NewProp(ical.PropDateTimeEnd)
			dtEnd.SetDate(end.AddDate(0, 0, 1))
			event.Props.Set(dtEnd)

			cal.Children = append(cal.Children, event.Component)
		}
	}

	var buf bytes.Buffer
	if len(cal.Children) == 0 {
		// The encoder rejects calendars without components.
		fmt.Fprintf(&buf, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:%s\r\n%s:%s\r\nEND:VCALENDAR\r\n", icsProductID, icsCalName, name)
		return buf.Bytes(), nil
	}
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

func summary(s layout.Support, b layout.Booking) string {
	if b.Client == "" {
		return s.Label()
	}
	return s.Label() + ": " + b.Client
}

func description(s layout.Support, b layout.Booking) string {
	parts := []string{"booking " + b.ID, "support " + s.ID, fmt.Sprintf("row %d", b.Row)}
	if b.Vendor != "" {
		parts = append(parts, "vendor "+b.Vendor)
	}
	if b.Total != "" {
		parts = append(parts, "total "+b.Total)
	}
	return strings.Join(parts, "\n")
}

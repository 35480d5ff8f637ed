package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"hash/fnv"

	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/render/locale"
	"github.com/matzehuels/occupancy/pkg/timeline"
)

// Style selects how booking bars are colored.
type Style string

const (
	StyleStatus Style = "status" // theme status colors
	StyleClient Style = "client" // palette, stable per client
	StyleVendor Style = "vendor" // palette, stable per vendor
	StyleMono   Style = "mono"   // single color
)

// ValidStyles lists the accepted styles.
var ValidStyles = []Style{StyleStatus, StyleClient, StyleVendor, StyleMono}

// ParseStyle validates a style name. Empty means StyleStatus.
func ParseStyle(s string) (Style, error) {
	if s == "" {
		return StyleStatus, nil
	}
	for _, v := range ValidStyles {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown style %q (valid: status, client, vendor, mono)", s)
}

const (
	fontCharWidth = 0.55
	sublabelScale = 0.8
)

const bookingCSS = `
    .booking { stroke: rgba(0,0,0,0.25); stroke-width: 1; }
    .booking:hover { stroke: #000; stroke-width: 2; }
    .booking-text { pointer-events: none; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme Theme
	loc   *locale.Localizer
	style Style
}

func WithTheme(t Theme) SVGOption                 { return func(r *svgRenderer) { r.theme = t } }
func WithLocalizer(l *locale.Localizer) SVGOption { return func(r *svgRenderer) { r.loc = l } }
func WithStyle(s Style) SVGOption                 { return func(r *svgRenderer) { r.style = s } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{theme: DefaultTheme(), style: StyleStatus}
	for _, opt := range opts {
		opt(&r)
	}
	if r.loc == nil {
		r.loc = locale.New("")
	}
	return r
}

// RenderSVG draws the document as a year grid: twelve month columns, one
// band per support and one lane per packed row.
func RenderSVG(doc layout.Document, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	g := r.geometry()

	var body bytes.Buffer
	y := float64(r.theme.Layout.Margin + r.theme.Layout.HeaderHeight)
	band := 0
	for _, sec := range doc.Sections {
		if doc.GroupBy != "" {
			r.renderSection(&body, g, y, doc.GroupBy, sec)
			y += float64(r.theme.Layout.SectionHeight)
		}
		for _, s := range sec.Supports {
			y += r.renderSupport(&body, g, y, band, s)
			band++
		}
	}
	if band == 0 {
		fmt.Fprintf(&body, `  <text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="middle">%s</text>`+"\n",
			g.gridX+g.gridW/2, y+float64(r.theme.Layout.LaneHeight), r.theme.Font.Size, r.theme.Colors.Text,
			EscapeXML(r.loc.T(locale.LabelEmpty)))
		y += 2 * float64(r.theme.Layout.LaneHeight)
	}
	height := y + float64(r.theme.Layout.Margin)

	var buf bytes.Buffer
	width := float64(r.theme.Layout.Width)
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		width, height, width, height, EscapeXML(r.theme.Font.Family))
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", bookingCSS)
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%.1f" height="%.1f" fill="%s"/>`+"\n", width, height, r.theme.Colors.Background)
	r.renderHeader(&buf, g, doc.Year, height)
	buf.Write(body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

type geometry struct {
	labelX float64
	gridX  float64
	gridW  float64
	colW   float64
}

func (r *svgRenderer) geometry() geometry {
	l := r.theme.Layout
	gridX := float64(l.Margin + l.LabelWidth)
	gridW := float64(l.Width-l.Margin) - gridX
	return geometry{
		labelX: float64(l.Margin),
		gridX:  gridX,
		gridW:  gridW,
		colW:   gridW / timeline.MonthsPerYear,
	}
}

func (r *svgRenderer) renderHeader(buf *bytes.Buffer, g geometry, year int, height float64) {
	l := r.theme.Layout
	top := float64(l.Margin)
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%d" font-weight="bold" fill="%s">%d</text>`+"\n",
		g.labelX, top+float64(r.theme.Font.Size)*1.5, r.theme.Font.Size+4, r.theme.Colors.Text, year)

	labelY := top + float64(l.HeaderHeight) - float64(r.theme.Font.Size)/2
	for m := 0; m < timeline.MonthsPerYear; m++ {
		x := g.gridX + float64(m)*g.colW
		fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
			x, top, x, height-float64(l.Margin), r.theme.Colors.Grid)
		fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="middle">%s</text>`+"\n",
			x+g.colW/2, labelY, r.theme.Font.Size, r.theme.Colors.Text, EscapeXML(r.loc.MonthShort(m)))
	}
	end := g.gridX + g.gridW
	fmt.Fprintf(buf, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
		end, top, end, height-float64(l.Margin), r.theme.Colors.Grid)
}

func (r *svgRenderer) renderSection(buf *bytes.Buffer, g geometry, y float64, attr string, sec layout.Section) {
	h := float64(r.theme.Layout.SectionHeight)
	label := r.loc.GroupLabel(attr) + ": " + r.loc.SectionLabel(sec.Key)
	fmt.Fprintf(buf, `  <g class="section" data-key="%s">`+"\n", EscapeXML(sec.Key))
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%d" font-weight="bold" fill="%s">%s</text>`+"\n",
		g.labelX, y+h*0.7, r.theme.Font.Size+1, r.theme.Colors.Section, EscapeXML(label))
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s %s</text>`+"\n",
		g.gridX+g.gridW, y+h*0.7, r.theme.Font.Size, r.theme.Colors.Section,
		EscapeXML(r.loc.T(locale.LabelTotal)), EscapeXML(sec.Total))
	buf.WriteString("  </g>\n")
}

// renderSupport draws one support band and returns its height.
func (r *svgRenderer) renderSupport(buf *bytes.Buffer, g geometry, y float64, band int, s layout.Support) float64 {
	l := r.theme.Layout
	lanes := max(1, s.Rows)
	laneH := float64(l.LaneHeight)
	gap := float64(l.LaneGap)
	pad := float64(l.BandPadding)
	h := 2*pad + float64(lanes)*laneH + float64(lanes-1)*gap
	fontSize := float64(r.theme.Font.Size)

	fmt.Fprintf(buf, `  <g class="support" id="support-%s">`+"\n", EscapeXML(s.ID))
	if band%2 == 0 {
		fmt.Fprintf(buf, `    <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
			g.labelX, y, g.gridX+g.gridW-g.labelX, h, r.theme.Colors.Band)
	}

	labelW := float64(l.LabelWidth) - pad
	fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%d" fill="%s">%s</text>`+"\n",
		g.labelX+pad, y+pad+fontSize, r.theme.Font.Size, r.theme.Colors.Text,
		EscapeXML(truncate(s.Label(), labelW, fontSize)))
	sub := fmt.Sprintf("%s %d · %s %s", r.loc.T(locale.LabelRows), s.Rows, r.loc.T(locale.LabelTotal), s.Total)
	if lanes > 1 || h >= pad+fontSize*2.2 {
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-size="%.1f" fill="%s" opacity="0.7">%s</text>`+"\n",
			g.labelX+pad, y+pad+fontSize*2.1, fontSize*sublabelScale, r.theme.Colors.Text,
			EscapeXML(truncate(sub, labelW, fontSize*sublabelScale)))
	}

	for _, b := range s.Bookings {
		r.renderBooking(buf, g, y+pad+float64(b.Row)*(laneH+gap), b)
	}
	buf.WriteString("  </g>\n")
	return h
}

func (r *svgRenderer) renderBooking(buf *bytes.Buffer, g geometry, y float64, b layout.Booking) {
	laneH := float64(r.theme.Layout.LaneHeight)
	x := g.gridX + float64(b.StartMonth)*g.colW + 1
	w := float64(b.Duration)*g.colW - 2
	fontSize := min(float64(r.theme.Font.Size), laneH*0.6)

	fmt.Fprintf(buf, `    <rect class="booking" id="booking-%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="3" fill="%s" data-row="%d" data-start="%d" data-duration="%d">`,
		EscapeXML(b.ID), x, y, w, laneH, r.fill(b), b.Row, b.StartMonth, b.Duration)
	fmt.Fprintf(buf, `<title>%s</title></rect>`+"\n", EscapeXML(tooltip(b)))

	label := b.Client
	if label == "" {
		label = b.ID
	}
	if text := truncate(label, w-6, fontSize); text != "" {
		fmt.Fprintf(buf, `    <text class="booking-text" x="%.1f" y="%.1f" font-size="%.1f" fill="%s">%s</text>`+"\n",
			x+3, y+laneH/2+fontSize*0.35, fontSize, r.theme.Colors.BookingText, EscapeXML(text))
	}
}

func (r *svgRenderer) fill(b layout.Booking) string {
	c := r.theme.Colors
	switch r.style {
	case StyleClient:
		return pick(c.Palette, b.Client)
	case StyleVendor:
		return pick(c.Palette, b.Vendor)
	case StyleMono:
		return pick(c.Palette, "")
	}
	if f, ok := c.Status[b.Status]; ok {
		return f
	}
	return defaultFill
}

// pick maps key to a palette entry; the empty key always gets the first.
func pick(palette []string, key string) string {
	if len(palette) == 0 {
		return defaultFill
	}
	if key == "" {
		return palette[0]
	}
	h := fnv.New32a()
	h.Write([]byte(key))
	return palette[h.Sum32()%uint32(len(palette))]
}

func tooltip(b layout.Booking) string {
	s := fmt.Sprintf("%s: %s → %s", b.ID, b.StartDate, b.EndDate)
	if b.Client != "" {
		s += "\n" + b.Client
	}
	if b.Vendor != "" {
		s += " / " + b.Vendor
	}
	if b.Status != "" {
		s += "\n" + b.Status
	}
	if b.Total != "" {
		s += "\n" + b.Total
	}
	return s
}

// truncate shortens s to fit width at the given font size. Returns "" when
// not even a few characters fit.
func truncate(s string, width, fontSize float64) string {
	maxChars := int(width / (fontSize * fontCharWidth))
	if maxChars < 3 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars-2]) + ".."
}

func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

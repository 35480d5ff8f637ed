package overlap

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/render/locale"
)

// Options configures overlap diagram rendering.
type Options struct {
	// Detailed adds client, month range and row to node labels.
	// When false, only the booking ID is shown.
	Detailed bool

	// Localizer translates month names. Nil means English.
	Localizer *locale.Localizer
}

var rowColors = []string{"#cfe2f3", "#d9ead3", "#fff2cc", "#f4cccc", "#d9d2e9", "#fce5cd", "#d0e0e3", "#ead1dc"}

// Edge is a pair of overlapping bookings.
type Edge struct {
	From, To string
}

// Edges returns every overlapping pair of the support's bookings, in
// booking order.
func Edges(s layout.Support) []Edge {
	var edges []Edge
	for i, a := range s.Bookings {
		for _, b := range s.Bookings[i+1:] {
			if a.Range().Overlaps(b.Range()) {
				edges = append(edges, Edge{From: a.ID, To: b.ID})
			}
		}
	}
	return edges
}

// ToDOT converts one support timeline to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(s layout.Support, opts Options) string {
	loc := opts.Localizer
	if loc == nil {
		loc = locale.New("")
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", s.Label())
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	rows := max(1, s.Rows)
	for row := 0; row < rows; row++ {
		fmt.Fprintf(&buf, "  subgraph cluster_row%d {\n", row)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("%s %d", loc.T(locale.LabelRows), row))
		buf.WriteString("    style=dashed;\n")
		for _, b := range s.Bookings {
			if b.Row != row {
				continue
			}
			fmt.Fprintf(&buf, "    %q [label=%q, fillcolor=%q];\n",
				b.ID, fmtLabel(b, opts.Detailed, loc), rowColors[row%len(rowColors)])
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range Edges(s) {
		fmt.Fprintf(&buf, "  %q -- %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(b layout.Booking, detailed bool, loc *locale.Localizer) string {
	if !detailed {
		return b.ID
	}
	r := b.Range()
	parts := []string{b.ID}
	if b.Client != "" {
		parts = append(parts, b.Client)
	}
	parts = append(parts, fmt.Sprintf("%s–%s", loc.MonthShort(r.Start), loc.MonthShort(r.End())))
	parts = append(parts, fmt.Sprintf("row: %d", b.Row))
	return strings.Join(parts, "\n")
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales from the
// origin; Graphviz emits pt units and an offset viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

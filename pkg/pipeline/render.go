package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/render/locale"
	"github.com/matzehuels/occupancy/pkg/render/overlap"
	"github.com/matzehuels/occupancy/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, doc layout.Document, opts Options) (map[string][]byte, error) {
	theme, err := sink.LoadTheme(opts.ThemePath)
	if err != nil {
		return nil, err
	}
	style, err := sink.ParseStyle(opts.Style)
	if err != nil {
		return nil, err
	}
	loc := locale.New(opts.Lang)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var data []byte
		switch format {
		case FormatJSON:
			data, err = sink.RenderJSON(doc)
		case FormatSVG:
			data = sink.RenderSVG(doc, sink.WithTheme(theme), sink.WithLocalizer(loc), sink.WithStyle(style))
		case FormatICS:
			data, err = sink.RenderICS(doc, loc)
		case FormatText:
			data = []byte(sink.RenderText(doc, loc))
		case FormatDOT:
			data = renderDOT(doc, overlap.Options{Detailed: opts.Detailed, Localizer: loc})
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderDOT writes one graph per support. Grouping by a booking attribute
// lists a support in several sections; those are merged back first.
func renderDOT(doc layout.Document, opts overlap.Options) []byte {
	var buf bytes.Buffer
	for _, s := range MergeSupports(doc) {
		buf.WriteString(overlap.ToDOT(s, opts))
	}
	return buf.Bytes()
}

// MergeSupports returns one entry per support id, in order of first
// appearance, with the bookings of every section it appears in. Other
// fields, totals included, come from the first listing.
func MergeSupports(doc layout.Document) []layout.Support {
	var (
		out   []layout.Support
		index = map[string]int{}
	)
	for _, s := range doc.Supports() {
		i, ok := index[s.ID]
		if !ok {
			index[s.ID] = len(out)
			s.Bookings = append([]layout.Booking(nil), s.Bookings...)
			out = append(out, s)
			continue
		}
		out[i].Bookings = append(out[i].Bookings, s.Bookings...)
	}
	return out
}

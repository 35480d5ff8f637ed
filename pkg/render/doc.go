// Package render groups the output stages for occupancy layouts.
//
// # Overview
//
// Rendering starts from a [layout.Document], the serialized result of a
// layout pass, and never recomputes rows. Subpackages:
//
//   - [sink]: year grid SVG, terminal table, iCalendar and JSON
//   - [overlap]: interval graph of one support via Graphviz
//   - [locale]: month names and labels (en, fr)
//
// # Usage
//
//	doc, _ := layout.ReadFile("layout.json")
//	svg := sink.RenderSVG(doc, sink.WithLocalizer(locale.New("fr")))
//	ics, err := sink.RenderICS(doc, nil)
//
//	dot := overlap.ToDOT(doc.Supports()[0], overlap.Options{Detailed: true})
//	diagram, err := overlap.RenderSVG(ctx, dot)
//
// [layout.Document]: github.com/matzehuels/occupancy/pkg/layout.Document
// [sink]: github.com/matzehuels/occupancy/pkg/render/sink
// [overlap]: github.com/matzehuels/occupancy/pkg/render/overlap
// [locale]: github.com/matzehuels/occupancy/pkg/render/locale
package render

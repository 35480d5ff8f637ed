// Package overlap renders the interval graph of one support as a Graphviz
// diagram.
//
// # Overview
//
// Each booking is a node and each pair of bookings whose month ranges
// overlap is joined by an edge. Nodes sit in one cluster per packed row, so
// the picture shows why a support needs the rows it has: bookings in the
// same cluster never share an edge.
//
// # Usage
//
//	dot := overlap.ToDOT(support, overlap.Options{Detailed: true})
//	svg, err := overlap.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: node labels include client, month range and row
//   - Localizer: month names in labels (defaults to English)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package overlap

// Package sink renders occupancy layouts into output formats.
//
// A "sink" turns a [layout.Document] into bytes:
//
//   - SVG: year grid with one band per support and one lane per row
//   - Text: terminal table with a month strip per row (lipgloss)
//   - ICS: one all-day VEVENT per booking, clipped to the year
//   - JSON: the document itself
//
// Basic usage:
//
//	svg := sink.RenderSVG(doc,
//	    sink.WithTheme(theme),
//	    sink.WithLocalizer(locale.New("fr")),
//	    sink.WithStyle(sink.StyleClient),
//	)
//
// # Themes
//
// SVG colors and sizes come from a [Theme]. [DefaultTheme] is used unless a
// YAML theme file is loaded with [LoadTheme]; fields missing from the file
// keep their default values.
package sink

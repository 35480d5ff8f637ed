// Package pkg provides the libraries behind occupancy, which lays out the
// bookings of advertising supports for one calendar year.
//
// # Overview
//
// For a year, every support gets one timeline: its bookings clipped to the
// year, converted to month ranges and packed onto rows so that overlapping
// bookings never share a row. The pkg directory is organized into:
//
//  1. [booking] - Strict booking and support types parsed from loose records
//  2. [timeline] - Clipping, durations, overlap, row packing and grouping
//  3. [layout] - The serializable layout document
//  4. [source] - Paginated booking sources (file, MongoDB, HTTP API) and caching
//  5. [render] - SVG, text, ICS, JSON and overlap-graph output
//  6. [pipeline] - Orchestration (load → layout → render)
//  7. [server] - HTTP API over the pipeline
//
// # Architecture
//
// The data flow through occupancy:
//
//	Booking source (file, MongoDB, booking service)
//	         ↓
//	    [source] package (drain pages, optionally through [cache])
//	         ↓
//	    [booking] package (parse records, exclude malformed ones)
//	         ↓
//	    [timeline] package (clip, sort, pack, group)
//	         ↓
//	    [layout] package (document) → [render] sinks
//	         ↓
//	    SVG/TXT/ICS/JSON/DOT output
//
// # Quick Start
//
// Lay out a year from records already in memory:
//
//	bookings, issues := booking.ParseRecords(records)
//	timelines := timeline.Build(bookings, booking.NewDirectory(supports), 2024)
//	doc := layout.FromTimelines(2024, timelines).WithIssues(issues)
//	svg := sink.RenderSVG(doc)
//
// Or run the whole pipeline against a source:
//
//	src, _ := file.Open("bookings.json", "")
//	runner := pipeline.NewRunner(src, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{Year: 2024, Formats: []string{"svg"}})
//
// # Supporting Packages
//
// [errors] - Coded errors and input validators shared by every layer.
//
// [cache] - File, Redis and null caches for source pages, with retry helpers.
//
// [httputil] - JSON HTTP client with retryable error classification.
//
// [observability] - Hooks for load, layout, render, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
package pkg

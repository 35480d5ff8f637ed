// Package pipeline provides the load → layout → render pipeline for
// occupancy layouts.
//
// This package implements the complete pipeline used by the CLI and the HTTP
// server. By centralizing it, both entry points apply the same defaults,
// filters and validation.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Drain the booking pages of a source and parse records
//  2. Layout: Filter, clip, pack and group bookings for one year
//  3. Render: Generate output in various formats (JSON, SVG, ICS, text, DOT)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(src, cache, logger)
//	opts := pipeline.Options{
//	    Year:    2024,
//	    GroupBy: "city",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	data, err := runner.Load(ctx, opts)
//	doc, summary, err := runner.Layout(ctx, data, opts)
//	artifacts, err := runner.Render(ctx, doc, opts)
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/occupancy/pkg/booking"
	"github.com/matzehuels/occupancy/pkg/errors"
	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/render/locale"
	"github.com/matzehuels/occupancy/pkg/render/sink"
	"github.com/matzehuels/occupancy/pkg/source"
	"github.com/matzehuels/occupancy/pkg/timeline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultPageSize is the number of booking records requested per page.
	DefaultPageSize = source.DefaultPageSize

	// DefaultFormat is the output format when none is requested.
	DefaultFormat = FormatJSON

	// DefaultStyle is the default booking coloring.
	DefaultStyle = string(sink.StyleStatus)

	// DefaultLanguage is the default label language.
	DefaultLanguage = locale.DefaultLanguage
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatICS  = "ics"
	FormatText = "txt"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatICS:  true,
	FormatText: true,
	FormatDOT:  true,
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatSVG:  "image/svg+xml",
	FormatICS:  "text/calendar; charset=utf-8",
	FormatText: "text/plain; charset=utf-8",
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
}

// ValidStyles is the set of supported booking colorings.
var ValidStyles = map[string]bool{
	string(sink.StyleStatus): true,
	string(sink.StyleClient): true,
	string(sink.StyleVendor): true,
	string(sink.StyleMono):   true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Filter restricts the bookings laid out. Empty fields match everything;
// comparisons ignore case.
type Filter struct {
	Vendor  string `json:"vendor,omitempty"`
	Client  string `json:"client,omitempty"`
	Status  string `json:"status,omitempty"`
	Support string `json:"support,omitempty"`
}

// IsZero reports whether the filter matches every booking.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether b passes the filter.
func (f Filter) Match(b booking.Booking) bool {
	if f.Vendor != "" && !strings.EqualFold(f.Vendor, b.Vendor) {
		return false
	}
	if f.Client != "" && !strings.EqualFold(f.Client, b.Client) {
		return false
	}
	if f.Status != "" && booking.ParseStatus(f.Status) != b.Status {
		return false
	}
	if f.Support != "" && !strings.EqualFold(f.Support, b.SupportID) {
		return false
	}
	return true
}

// Apply returns the bookings that pass the filter.
func (f Filter) Apply(bookings []booking.Booking) []booking.Booking {
	if f.IsZero() {
		return bookings
	}
	out := make([]booking.Booking, 0, len(bookings))
	for _, b := range bookings {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out
}

// Options contains all configuration for the occupancy pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Year     int  `json:"year"`
	PageSize int  `json:"page_size,omitempty"`
	Refresh  bool `json:"refresh,omitempty"`

	// Layout options
	GroupBy string `json:"group_by,omitempty"`
	Filter  Filter `json:"filter,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Style     string   `json:"style,omitempty"`
	Lang      string   `json:"lang,omitempty"`
	ThemePath string   `json:"-"`
	Detailed  bool     `json:"detailed,omitempty"` // detailed node labels in DOT output

	// Runtime options (not serialized)
	Logger  *log.Logger      `json:"-"`
	Now     func() time.Time `json:"-"` // current time, for the default year
	OnStage func(Stage)      `json:"-"` // called by Runner.Execute as each stage starts

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Stage names one step of Runner.Execute.
type Stage string

const (
	StageLoad   Stage = "load"
	StageLayout Stage = "layout"
	StageRender Stage = "render"
)

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the computed layout.
	Document layout.Document

	// Summary aggregates the layout before grouping.
	Summary timeline.Summary

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records    int // raw booking records fetched
	Bookings   int // bookings laid out
	Skipped    int // malformed records excluded
	Supports   int
	Rows       int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg, ics, txt, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: status, client, vendor, mono)", style)
	}
	return nil
}

// ValidateLang checks that a label language is bundled.
func ValidateLang(lang string) error {
	if !locale.Supported(lang) {
		return errors.New(errors.ErrCodeInvalidInput, "unsupported language: %q (must be one of: %s)",
			lang, strings.Join(locale.Languages(), ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad sets the year and page size defaults and checks them.
func (o *Options) ValidateForLoad() error {
	if o.Year == 0 {
		now := time.Now
		if o.Now != nil {
			now = o.Now
		}
		o.Year = now().Year()
	}
	if err := errors.ValidateYear(o.Year); err != nil {
		return err
	}
	if err := errors.ValidatePageSize(o.PageSize); err != nil {
		return err
	}
	if o.PageSize == 0 {
		o.PageSize = DefaultPageSize
	}
	o.setLogger()
	return nil
}

// ValidateForLayout normalizes the group key and checks the filter.
func (o *Options) ValidateForLayout() error {
	if err := errors.ValidateYear(o.Year); err != nil {
		return err
	}
	key, err := timeline.ParseGroupKey(o.GroupBy)
	if err != nil {
		return err
	}
	o.GroupBy = string(key)
	if o.Filter.Support != "" {
		if err := errors.ValidateIdentifier("support", o.Filter.Support); err != nil {
			return err
		}
	}
	o.setLogger()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Lang == "" {
		o.Lang = DefaultLanguage
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	return ValidateLang(o.Lang)
}

// Clone returns a copy of o that is validated again on next use. Use it to
// derive per-request options from shared defaults.
func (o Options) Clone() Options {
	o.validated = false
	o.Formats = append([]string(nil), o.Formats...)
	return o
}

// Query returns the source query for the options.
func (o *Options) Query() source.Query {
	return source.Query{Year: o.Year, PageSize: o.PageSize}
}

// GroupKey returns the normalized group key. Call after validation.
func (o *Options) GroupKey() timeline.GroupKey {
	return timeline.GroupKey(o.GroupBy)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/occupancy/pkg/cache"
	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/observability"
	"github.com/matzehuels/occupancy/pkg/source"
	"github.com/matzehuels/occupancy/pkg/timeline"
)

// Runner encapsulates pipeline execution against one booking source.
// Both CLI and server use it to avoid duplicating load and render logic.
//
// The Runner is stateless except for the source, cache and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Source source.Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// PageTTL overrides cache.TTLPage for cached booking pages when set.
	PageTTL time.Duration
}

// NewRunner creates a runner reading from src.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(src source.Source, c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	stage := func(st Stage) {
		if opts.OnStage != nil {
			opts.OnStage(st)
		}
	}

	stage(StageLoad)
	loadStart := time.Now()
	data, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.Records = data.Records
	result.Stats.Skipped = len(data.Issues)

	stage(StageLayout)
	layoutStart := time.Now()
	doc, summary, err := r.Layout(ctx, data, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Document = doc
	result.Summary = summary
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.Bookings = summary.Bookings
	result.Stats.Supports = summary.Supports
	result.Stats.Rows = summary.Rows

	stage(StageRender)
	renderStart := time.Now()
	artifacts, err := r.Render(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	return result, nil
}

// Load drains the booking pages for opts.Year and parses every record.
// Malformed records are logged and kept as issues on the dataset.
func (r *Runner) Load(ctx context.Context, opts Options) (data *Dataset, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	src := r.source(opts)
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, src.Name(), opts.Year)
	start := time.Now()
	defer func() {
		records := 0
		if data != nil {
			records = data.Records
		}
		hooks.OnLoadComplete(ctx, src.Name(), records, time.Since(start), err)
	}()

	records, err := source.Collect(ctx, src, opts.Query())
	if err != nil {
		return nil, err
	}
	supports, err := src.FetchSupports(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: supports: %w", src.Name(), err)
	}

	data = NewDataset(src.Name(), records, supports)
	for _, is := range data.Issues {
		opts.Logger.Warn("skipped booking", "index", is.Index, "id", is.ID, "reason", is.Err)
	}
	opts.Logger.Info("loaded bookings",
		"source", src.Name(),
		"records", data.Records,
		"skipped", len(data.Issues),
		"supports", len(data.Directory),
		"duration", time.Since(start))
	return data, nil
}

// Layout computes the document for opts.Year.
func (r *Runner) Layout(ctx context.Context, data *Dataset, opts Options) (doc layout.Document, summary timeline.Summary, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Document{}, timeline.Summary{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, opts.Year, len(data.Bookings))
	start := time.Now()
	defer func() {
		hooks.OnLayoutComplete(ctx, opts.Year, summary.Supports, time.Since(start), err)
	}()

	doc, summary = ComputeLayout(data, opts)
	opts.Logger.Info("computed layout",
		"year", opts.Year,
		"supports", summary.Supports,
		"bookings", summary.Bookings,
		"rows", summary.Rows,
		"sections", len(doc.Sections),
		"duration", time.Since(start))
	return doc, summary, nil
}

// Render generates the requested artifacts from a document.
func (r *Runner) Render(ctx context.Context, doc layout.Document, opts Options) (artifacts map[string][]byte, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	}()

	artifacts, err = Render(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", time.Since(start))
	return artifacts, nil
}

// source returns the runner's source behind the cache for one run.
func (r *Runner) source(opts Options) source.Source {
	if _, ok := r.Cache.(*cache.NullCache); ok || r.Cache == nil {
		return r.Source
	}
	c := source.NewCached(r.Source, r.Cache, r.Keyer)
	c.Refresh = opts.Refresh
	if r.PageTTL > 0 {
		c.PageTTL = r.PageTTL
	}
	return c
}

// Close releases the source and the cache.
func (r *Runner) Close() error {
	var first error
	if r.Source != nil {
		first = r.Source.Close()
	}
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

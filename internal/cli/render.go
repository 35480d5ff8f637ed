package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/pipeline"
)

// renderOpts holds the render-only flags.
type renderOpts struct {
	output     string // output file (single format), base path (multiple) or "-" for stdout
	formatsStr string // comma-separated formats
	layoutFile string // render a precomputed layout instead of loading bookings
	style      string
	lang       string
	theme      string
	detailed   bool
	stdout     io.Writer // destination for "-o -"
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		ro renderOpts
		lf layoutFlags
		sf sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "render [bookings-file]",
		Short: "Render the occupancy of one year",
		Long: `Render the occupancy of one year.

Formats:
  svg   year grid, one band per support and one lane per row
  txt   the same grid as a terminal table
  ics   iCalendar, one event per booking clipped to the year
  json  the layout document
  dot   overlap graph per support (Graphviz)

With --layout the bookings are not loaded again: a layout file produced by
'layout' is rendered as is.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(ro.formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			ro.stdout = cmd.OutOrStdout()
			return c.runRender(cmd.Context(), args, lf, &sf, ro, formats)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple); - for stdout")
	cmd.Flags().StringVarP(&ro.formatsStr, "format", "f", "", "output format(s): svg (default), txt, ics, json, dot (comma-separated)")
	cmd.Flags().StringVar(&ro.layoutFile, "layout", "", "render this layout file instead of loading bookings")
	cmd.Flags().StringVar(&ro.style, "style", "", "booking colors: status (default), client, vendor, mono")
	cmd.Flags().StringVar(&ro.lang, "lang", "", "label language: en (default), fr")
	cmd.Flags().StringVar(&ro.theme, "theme", "", "YAML theme file for SVG output")
	cmd.Flags().BoolVar(&ro.detailed, "detailed", false, "detailed node labels (dot)")
	lf.register(cmd)
	sf.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, args []string, lf layoutFlags, sf *sourceFlags, ro renderOpts, formats []string) error {
	opts := c.options(lf, sf)
	opts.Formats = formats
	opts.Detailed = ro.detailed
	if ro.style != "" {
		opts.Style = ro.style
	}
	if ro.lang != "" {
		opts.Lang = ro.lang
	}
	if ro.theme != "" {
		opts.ThemePath = ro.theme
	}

	var (
		artifacts map[string][]byte
		year      int
		stats     *pipeline.Stats
	)
	if ro.layoutFile != "" {
		doc, err := layout.ReadFile(ro.layoutFile)
		if err != nil {
			return fmt.Errorf("load layout %s: %w", ro.layoutFile, err)
		}
		if err := opts.ValidateForRender(); err != nil {
			return err
		}
		prog := newProgress(loggerFromContext(ctx))
		if artifacts, err = pipeline.Render(ctx, doc, opts); err != nil {
			return err
		}
		prog.done("Rendered layout", "year", doc.Year, "supports", len(doc.Supports()))
		year = doc.Year
	} else {
		runner, err := c.newRunner(ctx, sf, args)
		if err != nil {
			return fmt.Errorf("initialize runner: %w", err)
		}
		defer runner.Close()

		spinner := newSpinnerWithContext(ctx, "Rendering...")
		opts.OnStage = spinner.followStages
		spinner.Start()
		res, err := runner.Execute(ctx, opts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		spinner.Stop()
		artifacts, year, stats = res.Artifacts, res.Document.Year, &res.Stats
	}

	if ro.output == "-" {
		if len(formats) != 1 {
			return fmt.Errorf("stdout output needs exactly one format, got %d", len(formats))
		}
		_, err := ro.stdout.Write(artifacts[formats[0]])
		return err
	}

	paths, err := writeArtifacts(artifacts, formats, ro.output, year)
	if err != nil {
		return err
	}
	printSuccess("Rendered %d", year)
	for _, p := range paths {
		printFile(p)
	}
	if stats != nil {
		printStats(*stats)
	}
	return nil
}

// writeArtifacts writes each rendered format. A single format goes to
// output as given; several share basePath(output) with their own extension.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string, year int) ([]string, error) {
	sorted := append([]string(nil), formats...)
	sort.Strings(sorted)

	var paths []string
	for _, f := range sorted {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := basePath(output, year) + "." + f
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

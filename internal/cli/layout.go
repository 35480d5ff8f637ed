package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/occupancy/pkg/layout"
	"github.com/matzehuels/occupancy/pkg/pipeline"
	"github.com/matzehuels/occupancy/pkg/render/locale"
)

// layoutCommand creates the layout command for computing a year layout.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		lf     layoutFlags
		sf     sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [bookings-file]",
		Short: "Compute the occupancy layout of one year",
		Long: `Compute the occupancy layout of one year.

The layout command loads every booking of the year from the source, clips
them to the year and packs each support's bookings onto rows. The output is a
layout JSON file (same format as 'render -f json') that 'render --layout' and
the HTTP server can consume.

Malformed booking records are skipped and listed in the layout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args, lf, &sf, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: occupancy-<year>.layout.json)")
	lf.register(cmd)
	sf.register(cmd)

	return cmd
}

// runLayout loads the bookings, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, args []string, lf layoutFlags, sf *sourceFlags, output string) error {
	runner, err := c.newRunner(ctx, sf, args)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.options(lf, sf)
	opts.Formats = []string{pipeline.FormatJSON}

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	opts.OnStage = spinner.followStages
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = fmt.Sprintf("%s-%d.layout.json", appName, res.Document.Year)
	}
	if err := layout.WriteFile(res.Document, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout of %d complete", res.Document.Year)
	printFile(outputPath)
	printStats(res.Stats)
	if res.Stats.Skipped > 0 {
		printWarning("%d malformed records skipped (listed under \"skipped\")", res.Stats.Skipped)
	}
	printSummary(res.Summary, locale.New(c.Config.Render.Lang))
	printNewline()
	printNextStep("Render", appName+" render --layout "+outputPath)

	return nil
}

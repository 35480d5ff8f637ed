package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/occupancy/pkg/errors"
	"github.com/matzehuels/occupancy/pkg/pipeline"
	"github.com/matzehuels/occupancy/pkg/render/locale"
	"github.com/matzehuels/occupancy/pkg/render/overlap"
)

// overlapsCommand creates the overlaps command, which draws the interval
// graph of one support: bookings are nodes, overlapping pairs are edges and
// each row is a cluster.
func (c *CLI) overlapsCommand() *cobra.Command {
	var (
		output   string
		format   string
		detailed bool
		lf       layoutFlags
		sf       sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "overlaps SUPPORT_ID [bookings-file]",
		Short: "Draw the overlap graph of one support",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != pipeline.FormatDOT && format != pipeline.FormatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg)", format)
			}
			lf.filter.Support = args[0]
			return c.runOverlaps(cmd.Context(), cmd.OutOrStdout(), args[1:], lf, &sf, format, output, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <support>-<year>.<format>); - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&detailed, "detailed", true, "show client, months and row on each node")
	cmd.Flags().IntVarP(&lf.year, "year", "y", 0, "calendar year (default: current year)")
	sf.register(cmd)

	return cmd
}

func (c *CLI) runOverlaps(ctx context.Context, stdout io.Writer, args []string, lf layoutFlags, sf *sourceFlags, format, output string, detailed bool) error {
	runner, err := c.newRunner(ctx, sf, args)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.options(lf, sf)
	opts.Formats = []string{pipeline.FormatJSON}
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}

	supports := pipeline.MergeSupports(res.Document)
	if len(supports) == 0 {
		return errors.New(errors.ErrCodeNotFound, "no bookings for support %s in %d", lf.filter.Support, res.Document.Year)
	}
	s := supports[0]

	edges := overlap.Edges(s)
	data := []byte(overlap.ToDOT(s, overlap.Options{Detailed: detailed, Localizer: locale.New(c.Config.Render.Lang)}))
	if format == pipeline.FormatSVG {
		if data, err = overlap.RenderSVG(ctx, string(data)); err != nil {
			return fmt.Errorf("render overlap graph: %w", err)
		}
	}

	if output == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if output == "" {
		output = fmt.Sprintf("%s-%d.%s", s.ID, res.Document.Year, format)
	}
	if err := os.WriteFile(output, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Overlap graph of %s", StyleHighlight.Render(s.Label()))
	printFile(output)
	printDetail("%d bookings · %d overlaps · %d rows", len(s.Bookings), len(edges), s.Rows)
	return nil
}

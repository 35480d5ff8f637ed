package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/occupancy/pkg/observability"
	"github.com/matzehuels/occupancy/pkg/server"
)

// serveCommand creates the serve command, which exposes layouts over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		groupBy string
		sf      sourceFlags
	)

	cmd := &cobra.Command{
		Use:   "serve [bookings-file]",
		Short: "Serve year layouts over HTTP",
		Long: `Serve year layouts over HTTP.

Routes:
  GET /healthz
  GET /api/v1/timelines[.json|.svg|.ics|.txt|.dot]?year=&group_by=&vendor=&client=&status=&support=
  GET /api/v1/supports/{id}/overlaps[.dot|.svg]?year=

Every request loads the year from the source (through the page cache) and
lays it out again. Responses carry an ETag; If-None-Match is honored.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), args, &sf, addr, groupBy)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: "+server.DefaultAddr+")")
	cmd.Flags().StringVarP(&groupBy, "group-by", "g", "", "default grouping when a request names none")
	sf.register(cmd)

	return cmd
}

func (c *CLI) runServe(ctx context.Context, args []string, sf *sourceFlags, addr, groupBy string) error {
	runner, err := c.newRunner(ctx, sf, args)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	if addr == "" {
		addr = c.Config.Server.Addr
	}
	observability.SetAll(observability.NewLogHooks(c.Logger))

	srv := server.New(runner, addr, c.Logger)
	srv.Defaults = c.options(layoutFlags{groupBy: groupBy}, sf)

	printInfo("Serving %s on %s", runner.Source.Name(), StyleLink.Render("http://"+srv.Addr))
	err = srv.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

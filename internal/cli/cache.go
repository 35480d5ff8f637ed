package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/occupancy/pkg/cache"
)

// cacheCommand groups the page cache subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the booking page cache",
		Long: `Fetched booking and support pages are cached so repeated runs over the
same year do not query the source again. Layouts are always recomputed.`,
	}
	cmd.AddCommand(c.cacheInfoCommand(), c.cacheClearCommand(), c.cachePathCommand())
	return cmd
}

// cacheLocation describes where cc stores entries.
func cacheLocation(cc CacheConfig) (string, error) {
	switch cc.Kind {
	case cacheNone:
		return "disabled", nil
	case cacheRedis:
		loc := fmt.Sprintf("redis://%s/%d", cc.RedisAddr, cc.RedisDB)
		if cc.Namespace != "" {
			loc += " (namespace " + cc.Namespace + ")"
		}
		return loc, nil
	}
	if cc.Dir != "" {
		return cc.Dir, nil
	}
	return cacheDir()
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := c.Config.Cache
			loc, err := cacheLocation(cc)
			if err != nil {
				return fmt.Errorf("locate cache: %w", err)
			}
			ttl := cache.TTLPage
			if cc.TTL.Duration > 0 {
				ttl = cc.TTL.Duration
			}
			kind := cc.Kind
			if kind == "" {
				kind = cacheFile
			}
			printKeyValue("Kind", kind)
			printKeyValue("Location", loc)
			printKeyValue("Page TTL", ttl.String())
			return nil
		},
	}
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached booking and support pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := c.Config.Cache
			if cc.Kind == cacheNone {
				printInfo("Cache is disabled")
				return nil
			}
			store, err := openCache(cmd.Context(), cc)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				return fmt.Errorf("%T cannot be cleared", store)
			}
			n, err := clearer.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared %d cached entries", n)
			if loc, err := cacheLocation(cc); err == nil {
				printDetail("%s", loc)
			}
			return nil
		},
	}
}

// cachePathCommand prints the file cache directory, for scripts.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.Config.Cache.Dir
			if dir == "" {
				var err error
				if dir, err = cacheDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

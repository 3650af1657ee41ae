package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/designtree/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the result and classifier cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached entry of the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.Config.CacheOptions()
			store, err := cache.Open(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			cl, ok := store.(cache.Clearer)
			if !ok {
				printInfo("The %s backend cannot be cleared from here; entries expire on their own", c.Config.Cache.Backend)
				return nil
			}
			if err := cl.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared the %s cache", c.Config.Cache.Backend)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache location",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, cacheLocation(c.Config.CacheOptions()))
			return nil
		},
	}
}

// cacheLocation describes where the configured backend stores entries.
func cacheLocation(opts cache.Options) string {
	dir := opts.Dir
	if dir == "" {
		dir = cache.DefaultDir()
	}
	switch opts.Backend {
	case cache.BackendFile:
		return dir
	case cache.BackendSQLite:
		if opts.Path != "" {
			return opts.Path
		}
		return filepath.Join(dir, "cache.db")
	case cache.BackendRedis:
		return "redis://" + opts.Redis.Addr + "/" + fmt.Sprint(opts.Redis.DB)
	case cache.BackendMongo:
		return opts.Mongo.URI + " (" + opts.Mongo.Database + "." + opts.Mongo.Collection + ")"
	default:
		return "disabled"
	}
}

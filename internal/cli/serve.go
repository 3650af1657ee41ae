package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/designtree/internal/server"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the resolution pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config
			if addr == "" {
				addr = cfg.Server.Addr
			}

			base := cfg.PipelineOptions()
			if err := base.ValidateForClassify(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx)
			if err != nil {
				return err
			}
			defer runner.Close()

			srv := server.New(runner,
				server.WithLogger(c.Logger),
				server.WithBaseOptions(base),
				server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
				server.WithTimeouts(time.Duration(cfg.Server.ReadTimeout), time.Duration(cfg.Server.WriteTimeout)),
			)
			printInfo("Serving on %s", StyleHighlight.Render(addr))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

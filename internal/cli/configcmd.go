package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/designtree/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML (secrets omitted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(stdout, c.Config.String())
			if c.Config.Classifier.APIKey != "" {
				printDetail("gemini API key: set")
			}
			if c.Config.Classifier.Token != "" {
				printDetail("classifier token: set")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := c.configPath
			if p == "" {
				p = config.Find()
			}
			if p == "" {
				printInfo("No config file; using defaults")
				return nil
			}
			fmt.Fprintln(stdout, p)
			return nil
		},
	})

	return cmd
}

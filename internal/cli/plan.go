package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/designtree/pkg/hierarchy"
)

// planOpts holds the flags of the plan command.
type planOpts struct {
	pipelineFlags
	jsonMode bool
}

// planCommand creates the plan command, which prints the build order
// without writing anything.
func (c *CLI) planCommand() *cobra.Command {
	var opts planOpts

	cmd := &cobra.Command{
		Use:               "plan [file]",
		Short:             "Print the hierarchy tiers and build order",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&opts.jsonMode, "json", false, "print the plan as JSON")
	return cmd
}

func (c *CLI) runPlan(ctx context.Context, input string, opts *planOpts) error {
	popts := opts.options(c.Config)
	popts.SkipHierarchy = false

	res, err := c.execute(ctx, input, popts)
	if err != nil {
		return err
	}

	if opts.jsonMode {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Plan)
	}
	printPlan(res.Plan)
	printRunWarnings(res)
	return nil
}

// printPlan prints the stages of p, one unit per line.
func printPlan(p *hierarchy.Plan) {
	for _, st := range p.Stages {
		fmt.Fprintln(stdout, tierStyle(st.Tier).Render(strings.ToUpper(st.Tier.String()))+
			StyleDim.Render(fmt.Sprintf(" (%d)", len(st.NodeIDs))))
		for _, id := range st.NodeIDs {
			u, ok := p.Unit(id)
			if !ok {
				continue
			}
			line := "  " + StyleValue.Render(u.Name) + " " + StyleDim.Render(u.NodeID)
			if u.IsComponent() {
				line += " " + StyleHighlight.Render("component:"+u.ComponentID)
			}
			if u.Promoted {
				line += " " + StyleWarning.Render("promoted")
			}
			if len(u.Deps) > 0 {
				line += StyleDim.Render(" uses " + strings.Join(u.Deps, ", "))
			}
			fmt.Fprintln(stdout, line)
		}
	}
}

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/designtree/pkg/render"
	"github.com/matzehuels/designtree/pkg/render/nodelink"
)

const (
	diagramTree = "tree"
	diagramPlan = "plan"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	pipelineFlags
	output   string  // output file path, "-" for stdout
	diagram  string  // tree or plan
	format   string  // dot, svg, pdf or png
	detailed bool    // detailed node labels
	depth    int     // maximum tree depth
	scale    float64 // PNG scale
}

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	render.FormatDOT: true, render.FormatSVG: true, render.FormatPDF: true, render.FormatPNG: true,
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{diagram: diagramTree, format: render.FormatSVG, scale: 2}

	cmd := &cobra.Command{
		Use:               "render [file]",
		Short:             "Draw the annotated node tree or the build plan",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateRenderOpts(&opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: <input>.<diagram>.<format>, - for stdout)")
	cmd.Flags().StringVarP(&opts.diagram, "diagram", "d", opts.diagram, "diagram: tree, plan")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show IDs, tiers and confidence in labels")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "maximum tree depth (0 draws everything)")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	registerValueCompletions(cmd, map[string][]string{"diagram": diagramValues, "format": formatValues})
	return cmd
}

func validateRenderOpts(opts *renderOpts) error {
	opts.format = strings.ToLower(opts.format)
	if !validFormats[opts.format] {
		return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', 'pdf', or 'png')", opts.format)
	}
	if opts.diagram != diagramTree && opts.diagram != diagramPlan {
		return fmt.Errorf("invalid diagram: %s (must be 'tree' or 'plan')", opts.diagram)
	}
	if opts.depth < 0 {
		return fmt.Errorf("invalid depth: %d", opts.depth)
	}
	return nil
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	popts := opts.options(c.Config)
	if opts.diagram == diagramPlan {
		popts.SkipHierarchy = false
	}

	res, err := c.execute(ctx, input, popts)
	if err != nil {
		return err
	}

	var dot string
	if opts.diagram == diagramPlan {
		dot = nodelink.PlanDOT(res.Plan)
	} else {
		dot = nodelink.ToDOT(res.Document, nodelink.Options{Detailed: opts.detailed, MaxDepth: opts.depth})
	}

	data, err := nodelink.Render(ctx, dot, opts.format, opts.scale)
	if err != nil {
		return err
	}

	out := opts.output
	if out == "" {
		out = defaultOutput(input, "."+opts.diagram+"."+opts.format)
	}
	if out == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := ensureParent(out); err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	printSuccess("Rendered %s diagram", opts.diagram)
	printFile(out)
	return nil
}

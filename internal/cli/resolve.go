package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/designtree/pkg/design"
	"github.com/matzehuels/designtree/pkg/hierarchy"
	"github.com/matzehuels/designtree/pkg/pipeline"
)

// resolveOpts holds the flags of the resolve command.
type resolveOpts struct {
	pipelineFlags
	output   string // annotated document path, "-" for stdout
	outDir   string // artifact directory; artifacts stay in memory when empty
	jsonMode bool   // print the full result as JSON
}

// resolveCommand creates the resolve command, which runs the whole pipeline.
func (c *CLI) resolveCommand() *cobra.Command {
	var opts resolveOpts

	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Classify, lay out and build the component hierarchy of a design document",
		Long: `Resolve runs the full pipeline over a design document (JSON, "-" for stdin):

  1. validate ownership invariants and fill safe names
  2. classify every visible node with a semantic role
  3. translate constraints into resolved layout geometry
  4. assign atomic-design tiers and build components bottom-up

The annotated document is written next to the input unless -o is given.
With --out-dir each built unit is written as <tier>/<name>.json.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runResolve(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "annotated document output (default: <input>.resolved.json, - for stdout)")
	cmd.Flags().StringVar(&opts.outDir, "out-dir", "", "write built artifacts to this directory")
	cmd.Flags().BoolVar(&opts.jsonMode, "json", false, "print the full result as JSON to stdout")

	return cmd
}

func (c *CLI) runResolve(ctx context.Context, input string, opts *resolveOpts) error {
	popts := opts.options(c.Config)
	if opts.outDir != "" {
		b, err := hierarchy.NewDirBuilder(opts.outDir)
		if err != nil {
			return err
		}
		popts.Builder = b
	}

	res, err := c.execute(ctx, input, popts)
	if err != nil {
		return err
	}

	if opts.jsonMode {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	out := opts.output
	if out == "" {
		out = defaultOutput(input, ".resolved.json")
	}
	if out == "-" {
		return design.WriteDocument(res.Document, stdout)
	}
	if err := design.WriteDocumentFile(res.Document, out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	printSuccess("Resolved %s", input)
	printStats(res.Stats.NodeCount, res.Stats.Units, res.Stats.References, res.CacheHit)
	printFile(out)
	if opts.outDir != "" {
		printDetail("%d artifacts in %s", len(res.Refs), opts.outDir)
	}
	printRunWarnings(res)
	printNewline()
	printNextStep("Draw the build plan", fmt.Sprintf("%s render --diagram plan %s", appName, input))
	return nil
}

// printRunWarnings surfaces degraded stages.
func printRunWarnings(res *pipeline.Result) {
	if n := res.Stats.Classify.Fallbacks; n > 0 {
		printWarning("%d classifications fell back to local rules", n)
	}
	if n := res.Stats.Layout.Approximations; n > 0 {
		printWarning("%d layout features were approximated", n)
	}
	if res.Plan != nil && len(res.Plan.Cycles) > 0 {
		for _, cyc := range res.Plan.Cycles {
			printWarning("reference cycle ignored: %s → %s", cyc[0], cyc[1])
		}
	}
}

// ensureParent creates the parent directory of a file path.
func ensureParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/designtree/pkg/design"
)

// classifyOpts holds the flags of the classify command.
type classifyOpts struct {
	pipelineFlags
	minConfidence string
	jsonMode      bool
}

// classifyRow is one line of classify output.
type classifyRow struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Depth      int               `json:"depth"`
	Role       design.Role       `json:"role"`
	Confidence design.Confidence `json:"confidence"`
	Source     string            `json:"source"`
}

// classifyCommand creates the classify command.
func (c *CLI) classifyCommand() *cobra.Command {
	var opts classifyOpts

	cmd := &cobra.Command{
		Use:               "classify [file]",
		Short:             "Print the semantic role of every visible node",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runClassify(cmd.Context(), args[0], &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&opts.minConfidence, "below", "", "only list nodes classified below this confidence")
	cmd.Flags().BoolVar(&opts.jsonMode, "json", false, "print rows as JSON")
	registerValueCompletions(cmd, map[string][]string{"below": thresholdValues})
	return cmd
}

func (c *CLI) runClassify(ctx context.Context, input string, opts *classifyOpts) error {
	below := design.ConfidenceNone
	if opts.minConfidence != "" {
		v, err := design.ParseConfidence(opts.minConfidence)
		if err != nil {
			return err
		}
		below = v
	}

	popts := opts.options(c.Config)
	popts.SkipClassify = false
	popts.SkipLayout = true
	popts.SkipHierarchy = true

	res, err := c.execute(ctx, input, popts)
	if err != nil {
		return err
	}

	rows := classifyRows(res.Document, below)
	if opts.jsonMode {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Fprintln(stdout, renderClassifyTable(rows))
	st := res.Stats.Classify
	printDetail("%d nodes · %d external calls · %d accepted · %d fallbacks",
		st.Nodes, st.ExternalCalls, st.ExternalAccepted, st.Fallbacks)
	for _, role := range slices.Sorted(maps.Keys(st.Roles)) {
		printKeyValue(string(role), fmt.Sprint(st.Roles[role]))
	}
	printRunWarnings(res)
	return nil
}

// classifyRows lists classified nodes in document order. When below is set,
// only nodes with a lower confidence are kept.
func classifyRows(d *design.Document, below design.Confidence) []classifyRow {
	var rows []classifyRow
	d.Walk(func(n *design.Node) bool {
		if !n.IsVisible() {
			return false
		}
		cl := n.Classification
		if cl == nil {
			return true
		}
		if below != design.ConfidenceNone && cl.Confidence >= below {
			return true
		}
		rows = append(rows, classifyRow{
			ID: n.ID, Name: n.Name, Depth: n.Depth(),
			Role: cl.Role, Confidence: cl.Confidence, Source: cl.Source,
		})
		return true
	})
	return rows
}

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

var confidenceColors = map[design.Confidence]lipgloss.Color{
	design.ConfidenceLow:      colorRed,
	design.ConfidenceMedium:   colorYellow,
	design.ConfidenceHigh:     colorGreen,
	design.ConfidenceVeryHigh: colorCyan,
}

func renderClassifyTable(rows []classifyRow) string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		indent := ""
		for range r.Depth {
			indent += "  "
		}
		data = append(data, []string{r.ID, indent + r.Name, string(r.Role), r.Confidence.String(), r.Source})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Role", "Confidence", "Source").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0, 4:
				return base.Foreground(colorDim)
			case 2:
				return base.Foreground(colorWhite).Bold(true)
			case 3:
				if row >= 0 && row < len(rows) {
					if c, ok := confidenceColors[rows[row].Confidence]; ok {
						return base.Foreground(c)
					}
				}
			}
			return base
		}).
		Render()
}

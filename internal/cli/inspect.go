package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/designtree/pkg/design"
)

// Tree styles
var (
	treeSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	treeNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	treeDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
)

// inspectCommand creates the inspect command, an interactive tree browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags pipelineFlags
	var loadOnly bool

	cmd := &cobra.Command{
		Use:               "inspect [file]",
		Short:             "Browse the annotated node tree interactively",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeDocuments,
		RunE: func(cmd *cobra.Command, args []string) error {
			var d *design.Document
			if loadOnly {
				doc, err := readDocument(args[0])
				if err != nil {
					return err
				}
				d = doc
			} else {
				res, err := c.execute(cmd.Context(), args[0], flags.options(c.Config))
				if err != nil {
					return err
				}
				d = res.Document
			}

			p := tea.NewProgram(newTreeModel(d), tea.WithContext(cmd.Context()), tea.WithAltScreen())
			_, err := p.Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&loadOnly, "annotated", false, "the file is already resolved; browse it without running the pipeline")
	return cmd
}

// =============================================================================
// TreeModel - Interactive node tree
// =============================================================================

// treeRow is one visible line of the tree.
type treeRow struct {
	node  *design.Node
	page  string
	depth int
}

// TreeModel is the bubbletea model for browsing a design document.
type TreeModel struct {
	doc      *design.Document
	expanded map[*design.Node]bool
	rows     []treeRow
	Cursor   int
	Offset   int
	Height   int
}

func newTreeModel(d *design.Document) TreeModel {
	m := TreeModel{doc: d, expanded: make(map[*design.Node]bool), Height: 15}
	for _, p := range d.Pages {
		for _, n := range p.Nodes {
			m.expanded[n] = true
		}
	}
	m.rebuild()
	return m
}

// rebuild flattens the expanded part of the tree into rows.
func (m *TreeModel) rebuild() {
	m.rows = nil
	var walk func(n *design.Node, page string, depth int)
	walk = func(n *design.Node, page string, depth int) {
		if !n.IsVisible() {
			return
		}
		m.rows = append(m.rows, treeRow{node: n, page: page, depth: depth})
		if !m.expanded[n] {
			return
		}
		for _, c := range n.Children {
			walk(c, page, depth+1)
		}
	}
	for _, p := range m.doc.Pages {
		for _, n := range p.Nodes {
			walk(n, p.Name, 0)
		}
	}
	if m.Cursor >= len(m.rows) {
		m.Cursor = max(len(m.rows)-1, 0)
	}
}

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
			}
		case "right", "l":
			if n := m.selected(); n != nil && len(n.Children) > 0 {
				m.expanded[n] = true
				m.rebuild()
			}
		case "left", "h":
			if n := m.selected(); n != nil {
				if m.expanded[n] && len(n.Children) > 0 {
					m.expanded[n] = false
					m.rebuild()
				} else if p := n.Parent(); p != nil {
					m.jumpTo(p)
				}
			}
		case "enter", " ":
			if n := m.selected(); n != nil && len(n.Children) > 0 {
				m.expanded[n] = !m.expanded[n]
				m.rebuild()
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	m.scroll()
	return m, nil
}

func (m *TreeModel) selected() *design.Node {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.Cursor].node
}

func (m *TreeModel) jumpTo(n *design.Node) {
	for i, r := range m.rows {
		if r.node == n {
			m.Cursor = i
			return
		}
	}
}

func (m *TreeModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title()))
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render("↑/↓ navigate  ←/→ collapse/expand  ⏎ toggle  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	page := ""
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		if r.page != page {
			page = r.page
			b.WriteString(treeDimStyle.Render("[" + page + "]"))
			b.WriteString("\n")
		}
		b.WriteString(m.renderRow(r, i == m.Cursor))
		b.WriteString("\n")
	}

	if n := m.selected(); n != nil {
		b.WriteString("\n")
		b.WriteString(detailBoxStyle.Render(nodeDetail(n)))
	}
	b.WriteString("\n")
	b.WriteString(treeDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))
	return b.String()
}

func (m TreeModel) title() string {
	if m.doc.Name != "" {
		return m.doc.Name
	}
	return "Design Document"
}

func (m TreeModel) renderRow(r treeRow, current bool) string {
	marker := "  "
	if len(r.node.Children) > 0 {
		marker = "▸ "
		if m.expanded[r.node] {
			marker = "▾ "
		}
	}
	name := r.node.Name
	if name == "" {
		name = r.node.ID
	}
	line := strings.Repeat("  ", r.depth) + marker + name
	if current {
		line = treeSelectedStyle.Render(line)
	} else {
		line = treeNormalStyle.Render(line)
	}
	if cl := r.node.Classification; cl != nil {
		line += " " + treeDimStyle.Render("<"+string(cl.Role)+">")
	}
	if r.node.Tier != design.TierUnset {
		line += " " + tierStyle(r.node.Tier).Render(r.node.Tier.String())
	}
	if r.node.IsReference() {
		line += " " + StyleHighlight.Render("→ "+r.node.Ref.Path)
	}
	return line
}

// nodeDetail summarizes the annotations of n.
func nodeDetail(n *design.Node) string {
	lines := []string{
		fmt.Sprintf("id        %s", n.ID),
		fmt.Sprintf("kind      %s", n.Kind),
		fmt.Sprintf("bounds    %.0f×%.0f at (%.0f, %.0f)", n.Bounds.Width, n.Bounds.Height, n.Bounds.X, n.Bounds.Y),
	}
	if cl := n.Classification; cl != nil {
		lines = append(lines, fmt.Sprintf("role      %s (%s, %s)", cl.Role, cl.Confidence, cl.Source))
	}
	if n.Tier != design.TierUnset {
		lines = append(lines, fmt.Sprintf("tier      %s", n.Tier))
	}
	if l := n.Layout; l != nil {
		lines = append(lines, fmt.Sprintf("sizing    %s %.0f / %s %.0f",
			l.Sizing.Horizontal.Kind, l.Sizing.Horizontal.Size, l.Sizing.Vertical.Kind, l.Sizing.Vertical.Size))
		if c := l.Container; c != nil {
			lines = append(lines, fmt.Sprintf("container %s primary=%s counter=%s spacing=%.0f", c.Mode, c.Primary, c.Counter, c.Spacing))
		}
		if p := l.Placement; p != nil {
			lines = append(lines, fmt.Sprintf("placement %s / %s", p.Horizontal.Kind, p.Vertical.Kind))
		}
		if s := l.SpacerCount(); s > 0 {
			lines = append(lines, fmt.Sprintf("spacers   %d", s))
		}
	}
	if n.Ref != nil {
		lines = append(lines, fmt.Sprintf("reference %s (component %s)", n.Ref.Path, n.Ref.ComponentID))
	}
	if len(n.Tags) > 0 {
		lines = append(lines, fmt.Sprintf("tags      %s", strings.Join(n.Tags, ", ")))
	}
	return strings.Join(lines, "\n")
}

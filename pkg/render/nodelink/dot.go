package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/designtree/pkg/design"
	"github.com/matzehuels/designtree/pkg/hierarchy"
	"github.com/matzehuels/designtree/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node ID, kind, confidence and artifact path to node
	// labels. When false, only the name and role are shown.
	Detailed bool

	// MaxDepth limits the drawn tree depth below page roots. Zero draws
	// everything.
	MaxDepth int
}

// tierColors fills nodes by hierarchy tier.
var tierColors = map[design.Tier]string{
	design.TierAtom:     "#dbeafe",
	design.TierMolecule: "#dcfce7",
	design.TierOrganism: "#fef9c3",
	design.TierTemplate: "#ffedd5",
	design.TierPage:     "#fce7f3",
}

func fillColor(t design.Tier) string {
	if c, ok := tierColors[t]; ok {
		return c
	}
	return "white"
}

func header(buf *bytes.Buffer) {
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
}

// ToDOT converts the visible node tree of d to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(d *design.Document, opts Options) string {
	var buf bytes.Buffer
	header(&buf)

	for i, p := range d.Pages {
		fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", p.Name)
		buf.WriteString("    style=\"rounded,dashed\";\n")
		var edges []string
		for _, root := range p.Nodes {
			writeTree(&buf, &edges, root, 0, opts)
		}
		for _, e := range edges {
			buf.WriteString(e)
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeTree(buf *bytes.Buffer, edges *[]string, n *design.Node, depth int, opts Options) {
	if !n.IsVisible() {
		return
	}
	fmt.Fprintf(buf, "    %q [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return
	}
	for _, c := range n.VisibleChildren() {
		*edges = append(*edges, fmt.Sprintf("    %q -> %q;\n", n.ID, c.ID))
		writeTree(buf, edges, c, depth+1, opts)
	}
}

func fmtLabel(n *design.Node, detailed bool) string {
	name := n.Name
	if name == "" {
		name = n.ID
	}
	lines := []string{name}
	if n.Classification != nil {
		lines = append(lines, "<"+string(n.Classification.Role)+">")
	}
	if !detailed {
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("id: %s", n.ID), fmt.Sprintf("kind: %s", n.Kind))
	if n.Tier != design.TierUnset {
		lines = append(lines, fmt.Sprintf("tier: %s", n.Tier))
	}
	if n.Classification != nil {
		lines = append(lines, fmt.Sprintf("confidence: %s (%s)", n.Classification.Confidence, n.Classification.Source))
	}
	if n.Ref != nil && n.Ref.Path != "" {
		lines = append(lines, fmt.Sprintf("ref: %s", n.Ref.Path))
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(n *design.Node, detailed bool) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", fmtLabel(n, detailed)),
		fmt.Sprintf("fillcolor=%q", fillColor(n.Tier)),
	}
	switch {
	case n.IsReference():
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	case n.Kind == design.KindSpacer:
		attrs = append(attrs, "shape=plaintext", "fontcolor=grey")
	}
	return attrs
}

// PlanDOT converts a hierarchy build plan to Graphviz DOT format. Stages
// are drawn bottom-up so that atoms sit at the bottom of the diagram.
func PlanDOT(p *hierarchy.Plan) string {
	var buf bytes.Buffer
	header(&buf)
	buf.WriteString("  rankdir=BT;\n\n")

	owner := make(map[string]string, len(p.Units))
	for _, u := range p.Units {
		if u.IsComponent() {
			if _, ok := owner[u.ComponentID]; !ok {
				owner[u.ComponentID] = u.NodeID
			}
		}
	}

	for i, st := range p.Stages {
		fmt.Fprintf(&buf, "  subgraph \"cluster_stage_%d\" {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", st.Tier.String())
		buf.WriteString("    style=\"rounded,dashed\";\n")
		for _, id := range st.NodeIDs {
			u, ok := p.Unit(id)
			if !ok {
				continue
			}
			attrs := []string{
				fmt.Sprintf("label=%q", u.Name+"\n"+u.NodeID),
				fmt.Sprintf("fillcolor=%q", fillColor(u.Tier)),
			}
			if u.Promoted {
				attrs = append(attrs, "penwidth=2")
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", u.NodeID, strings.Join(attrs, ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, u := range p.Units {
		for _, dep := range u.Deps {
			if to, ok := owner[dep]; ok && to != u.NodeID {
				fmt.Fprintf(&buf, "  %q -> %q;\n", u.NodeID, to)
			}
		}
	}
	for _, c := range p.Cycles {
		from, okFrom := owner[c[0]]
		to, okTo := owner[c[1]]
		if okFrom && okTo {
			fmt.Fprintf(&buf, "  %q -> %q [color=red, style=dashed];\n", from, to)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// Render renders dot in the given format: dot, svg, pdf or png.
func Render(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	switch format {
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG, render.FormatPDF, render.FormatPNG:
	default:
		return nil, fmt.Errorf("unsupported format %q (use dot, svg, pdf or png)", format)
	}
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch format {
	case render.FormatSVG:
		return svg, nil
	case render.FormatPDF:
		return render.ToPDF(ctx, svg)
	default:
		return render.ToPNG(ctx, svg, scale)
	}
}

// Package nodelink renders resolved design documents as node-link diagrams.
//
// # Overview
//
// Two diagrams are produced with Graphviz:
//
//   - [ToDOT] draws the visible node tree of every page, one cluster per
//     page, with nodes filled by hierarchy tier and labeled with their
//     classified role. Nodes replaced by references are dashed.
//   - [PlanDOT] draws the hierarchy build plan: one box per build unit,
//     grouped by stage, with an edge from each unit to the components it
//     references. Edges ignored because they close a cycle are drawn red.
//
// # Usage
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded box
// nodes, so parents sit above their children and higher tiers above the
// tiers they are built from.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion goes through the parent render package.
package nodelink

// Package render provides visualization output for resolved design documents.
//
// # Overview
//
// This package converts SVG produced by the renderers in its subpackages to
// other formats:
//
//   - [ToPDF] converts SVG to PDF
//   - [ToPNG] converts SVG to PNG at a scale factor
//
// Both shell out to rsvg-convert (from librsvg).
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the annotated node tree and the hierarchy
// build plan as Graphviz diagrams:
//
//	dot := nodelink.ToDOT(doc, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(svg)
//
// [nodelink]: github.com/matzehuels/designtree/pkg/render/nodelink
package render

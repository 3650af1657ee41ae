// Package layout translates the auto-layout model of a design document into
// directives a target widget system can consume natively.
//
// # Overview
//
// The source model describes containers with a direction, alignment, spacing
// and padding, and children that size themselves as fixed, hug-contents or
// fill-container. Target engines (flex-like layouts) express most of this
// directly; the pieces they cannot express are approximated and the node is
// tagged with the approximation so that nothing is changed silently.
//
// The package has four parts:
//
//   - [ResolveSizing] maps each axis to an exact size, a grow directive with a
//     weight, or a shrink-to-content directive.
//   - [ResolveAlignment] produces the container's native alignment, rewriting
//     space-between as start alignment plus flexible spacers built by
//     [BuildItems].
//   - [ResolvePlacement] computes anchors for absolutely positioned nodes
//     relative to the parent's padded content box, in a y-up target
//     convention.
//   - [Translator] walks the document parent-before-children, applying the
//     three resolvers and writing [design.Resolved] onto each visible node.
//
// # Approximations
//
// Tags written to [design.Node.Tags]:
//
//   - [TagSoftMaxCap]: a fill axis carries a max that the target can only
//     honour as a preferred size.
//   - [TagFillWithoutLayout]: fill inside a parent with no axis mode, treated
//     as fixed.
//   - [TagBaselineApproximated]: baseline alignment resolved to start.
//   - [TagCounterSpaceBetween]: space-between on the counter axis resolved to
//     start.
//   - [TagAbsoluteRootFallback]: an absolutely positioned page root placed in
//     flow at the origin.
//
// # Usage
//
//	t := layout.New(layout.WithLogger(logger))
//	stats, err := t.Translate(ctx, doc)
package layout

// Package hierarchy resolves the atomic component hierarchy of a design
// document: which tier every node belongs to, in which order the reusable
// units are built, and which subtrees are replaced by references to
// artifacts that were already built.
//
// # Tiers
//
// Tiers run from [design.TierAtom] (most primitive, reused most) to
// [design.TierPage]. A node's tier is taken from configuration when present
// ([Overrides], by node ID, component ID or name, in that order), then from
// the document's component metadata, then from the page's default tier for
// page roots. Otherwise [InferTier] derives it from the height of the
// node's subtree and the number of component usages below it.
//
// # Planning
//
// The build units of a document are its component definitions and its page
// roots. [Resolver.Plan] collects them, computes the components each unit
// references (instances and nested definitions in its subtree) and orders
// them into a [Plan]: a list of stages, lowest tier first, each an ordered
// list of node IDs. A unit never precedes a unit it references. When an
// explicit tier would break that rule, the unit is promoted to the tier of
// its highest dependency and tagged [TagPromoted].
//
// Reference cycles between components cannot be ordered. The edge that
// closes a cycle is ignored and logged, and both components are still built.
//
// # Building
//
// [Resolver.Build] walks the plan and emits every unit through a [Builder].
// Each unit is copied first, so the document itself is only annotated.
// While copying, a child that corresponds to an instance (or a nested
// definition) of an already built component is replaced by a lightweight
// reference node that keeps the instance's own geometry and points at the
// artifact, and the resolver does not descend into it. After a definition
// is emitted its component ID is registered, so later units reference it.
// A component ID is emitted at most once: repeated definitions resolve to
// the first artifact.
//
// Copied children are matched back to the logical children of their parent
// by name. This is a best-effort correlation: with two siblings of the same
// name, the second matches the first. [MatchProvenance] matches by position
// instead and has no such ambiguity.
//
// # Usage
//
//	r := hierarchy.New(hierarchy.WithOverrides(ov))
//	plan, err := r.Plan(ctx, doc)
//	if err != nil {
//	    return err
//	}
//	report, err := r.Build(ctx, doc, plan, hierarchy.NewMemoryBuilder())
package hierarchy

// Package design provides the in-memory node graph of a design-tool document.
//
// # Overview
//
// A [Document] owns an ordered list of [Page] values, and every page owns a
// forest of [Node] values. Nodes carry everything the resolvers downstream
// need: a structural [Kind], absolute geometry, a layout-container profile
// ([Container]) describing how the node arranges its own children, a
// self-sizing profile ([Sizing]) describing how it sizes inside its parent,
// edge [Constraints] for absolutely positioned nodes, opaque visual data,
// text content, component linkage and interaction linkage.
//
// The graph is produced by an external parser and is afterwards only
// annotated. The classify, layout and hierarchy packages write into the
// annotation slots of a node ([Node.Classification], [Node.Layout],
// [Node.Tier], [Node.Ref], [Node.Tags]) but never re-parent or delete nodes.
//
// # Ownership
//
// Children are owned by exactly one parent, in render order. Each node keeps
// a non-owning back-reference to its parent for upward queries; call
// [Document.Link] after building a graph by hand so that [Node.Parent] works.
// [ReadDocument] links automatically.
//
// # Validation
//
// [Validate] must run once before any traversal-heavy processing. It rejects
// ownership cycles and duplicate identifiers with a [*StructuralError] that
// names the offending nodes, so that later recursive walks cannot loop.
//
// # Serialization
//
// [ReadDocument] and [WriteDocument] convert between the graph and its JSON
// form. Annotations are serialized alongside the source attributes, so a
// resolved document can be written out and consumed by an instantiation
// step in another process.
package design

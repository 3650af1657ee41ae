package hierarchy

import (
	"context"
	"errors"

	"github.com/matzehuels/designtree/pkg/design"
	apperrors "github.com/matzehuels/designtree/pkg/errors"
)

// ErrAlreadyRegistered is returned by [Registry.Register] for a component
// that already has an artifact.
var ErrAlreadyRegistered = errors.New("component already registered")

// Registry maps component IDs to the artifact built for them. It is owned
// by a single build and filled strictly in build order, so it needs no
// locking.
type Registry struct {
	refs  map[string]design.ArtifactRef
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{refs: make(map[string]design.ArtifactRef)}
}

// Register records the artifact of a component.
func (r *Registry) Register(componentID string, ref design.ArtifactRef) error {
	if _, ok := r.refs[componentID]; ok {
		return ErrAlreadyRegistered
	}
	r.refs[componentID] = ref
	r.order = append(r.order, componentID)
	return nil
}

// Lookup returns the artifact of a component.
func (r *Registry) Lookup(componentID string) (design.ArtifactRef, bool) {
	ref, ok := r.refs[componentID]
	return ref, ok
}

// Len returns the number of registered components.
func (r *Registry) Len() int { return len(r.order) }

// Refs returns the registered artifacts in registration order.
func (r *Registry) Refs() []design.ArtifactRef {
	out := make([]design.ArtifactRef, len(r.order))
	for i, id := range r.order {
		out[i] = r.refs[id]
	}
	return out
}

// Report summarises a build.
type Report struct {
	// Artifacts lists every emitted artifact in build order.
	Artifacts []design.ArtifactRef `json:"artifacts"`
	// References counts subtrees replaced by a reference node.
	References int `json:"references"`
	// Duplicates counts definitions of an already built component.
	Duplicates int `json:"duplicates"`

	Registry *Registry `json:"-"`
}

// Build emits every unit of p through b, in plan order.
//
// Each unit is copied before it is emitted; registered components found in
// the copy are replaced by reference nodes. The logical document is only
// annotated: instances that were replaced receive a [design.ArtifactRef],
// repeated definitions point at the first artifact of their component, and
// component metadata records the artifact path. Emission failures abort the
// build with an [apperrors.ErrCodeBuild] error.
func (r *Resolver) Build(ctx context.Context, d *design.Document, p *Plan, b Builder) (*Report, error) {
	rep := &Report{Registry: NewRegistry()}

	for _, u := range p.Units {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if u.node == nil {
			return rep, apperrors.New(apperrors.ErrCodeInternal, "unit %s was not planned by this resolver", u.NodeID)
		}

		if u.IsComponent() {
			if ref, ok := rep.Registry.Lookup(u.ComponentID); ok {
				u.node.Ref = &ref
				rep.Duplicates++
				r.logger.Debug("component already built", "component", u.ComponentID, "node", u.NodeID, "artifact", ref.ArtifactID)
				continue
			}
		}

		live := u.node.Clone()
		if err := r.substitute(ctx, live, u.node, rep); err != nil {
			return rep, err
		}

		art := &Artifact{
			ID:          u.NodeID,
			ComponentID: u.ComponentID,
			Name:        u.Name,
			Page:        u.Page,
			Tier:        u.Tier,
			Root:        live,
		}
		path, err := b.Emit(ctx, art)
		if err != nil {
			return rep, apperrors.Wrap(apperrors.ErrCodeBuild, err, "emit %s", u.NodeID)
		}

		ref := design.ArtifactRef{ArtifactID: art.ID, ComponentID: u.ComponentID, Path: path}
		rep.Artifacts = append(rep.Artifacts, ref)
		if u.IsComponent() {
			if err := rep.Registry.Register(u.ComponentID, ref); err != nil {
				return rep, apperrors.Wrap(apperrors.ErrCodeInternal, err, "register %s", u.ComponentID)
			}
			meta := d.Component(u.ComponentID)
			meta.Artifact = path
			if meta.Artifact == "" {
				meta.Artifact = art.ID
			}
		}
		r.logger.Debug("built artifact", "node", u.NodeID, "tier", u.Tier, "path", path)
	}

	r.logger.Debug("built hierarchy",
		"artifacts", len(rep.Artifacts),
		"references", rep.References,
		"duplicates", rep.Duplicates)
	return rep, nil
}

// substitute rewrites the children of live, a copy of logical, replacing
// registered component usages with reference nodes.
func (r *Resolver) substitute(ctx context.Context, live, logical *design.Node, rep *Report) error {
	for i, lc := range live.Children {
		if err := ctx.Err(); err != nil {
			return err
		}
		src := r.correspond(logical, lc, i)
		if src == nil {
			continue
		}
		if isUsage(src) {
			if ref, ok := rep.Registry.Lookup(componentID(src)); ok {
				live.Children[i] = referenceNode(lc, ref)
				if !isDefinition(src) {
					src.Ref = &ref
				}
				rep.References++
				continue
			}
		}
		if err := r.substitute(ctx, lc, src, rep); err != nil {
			return err
		}
	}
	return nil
}

// correspond returns the logical child of parent that the copied child at
// index i originates from, or nil.
func (r *Resolver) correspond(parent, child *design.Node, i int) *design.Node {
	if r.match == MatchProvenance {
		if i < len(parent.Children) {
			return parent.Children[i]
		}
		return nil
	}
	for _, c := range parent.Children {
		if c.Name == child.Name {
			return c
		}
	}
	return nil
}

// referenceNode returns a childless node carrying only n's own geometry and
// a reference to the artifact.
func referenceNode(n *design.Node, ref design.ArtifactRef) *design.Node {
	out := &design.Node{
		ID:          n.ID,
		Name:        n.Name,
		SafeName:    n.SafeName,
		Kind:        n.Kind,
		Visible:     n.Visible,
		Bounds:      n.Bounds,
		Rotation:    n.Rotation,
		Sizing:      n.Sizing,
		Positioning: n.Positioning,
		Constraints: n.Constraints,
		Component:   design.ComponentLink{IsInstance: true, ComponentID: ref.ComponentID},
		Tier:        n.Tier,
		Ref:         &ref,
	}
	if n.Layout != nil {
		out.Layout = &design.Resolved{Sizing: n.Layout.Sizing, Placement: n.Layout.Placement}
	}
	if n.Classification != nil {
		cl := *n.Classification
		out.Classification = &cl
	}
	return out
}

package hierarchy

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/designtree/pkg/design"
)

// TagPromoted marks a unit whose tier was raised to the tier of a component
// it references.
const TagPromoted = "tier-promoted"

// MatchMode selects how copied children are correlated with the logical
// children of their parent during [Resolver.Build].
type MatchMode string

const (
	// MatchName correlates children by name. Duplicate sibling names match
	// the first sibling with that name.
	MatchName MatchMode = "name"
	// MatchProvenance correlates children by their position in the parent.
	MatchProvenance MatchMode = "provenance"
)

// ParseMatchMode parses a match mode. The empty string yields [MatchName].
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchName:
		return MatchName, nil
	case MatchProvenance:
		return MatchProvenance, nil
	}
	return "", fmt.Errorf("unknown match mode %q", s)
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithOverrides sets explicit tiers.
func WithOverrides(o Overrides) Option { return func(r *Resolver) { r.overrides = o } }

// WithMatchMode sets the child correlation used while building.
func WithMatchMode(m MatchMode) Option {
	return func(r *Resolver) {
		if m != "" {
			r.match = m
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver assigns tiers, plans the build order and builds artifacts.
type Resolver struct {
	overrides Overrides
	match     MatchMode
	logger    *log.Logger
}

// New creates a Resolver that matches children by name.
func New(opts ...Option) *Resolver {
	r := &Resolver{match: MatchName, logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Unit is one build unit: a component definition or a page root.
type Unit struct {
	NodeID      string      `json:"node_id"`
	Name        string      `json:"name"`
	ComponentID string      `json:"component_id,omitempty"`
	Page        string      `json:"page"`
	Tier        design.Tier `json:"tier"`
	Deps        []string    `json:"deps,omitempty"`
	Promoted    bool        `json:"promoted,omitempty"`

	node *design.Node
}

// IsComponent reports whether the unit builds a component definition.
func (u *Unit) IsComponent() bool { return u.ComponentID != "" }

// Stage is the list of node IDs built at one tier, in build order.
type Stage struct {
	Tier    design.Tier `json:"tier"`
	NodeIDs []string    `json:"node_ids"`
}

// Plan is the ordered build of a document.
type Plan struct {
	Stages []Stage `json:"stages"`
	Units  []*Unit `json:"units"`
	// Cycles lists reference edges (referencing component, referenced
	// component) that were ignored because they close a cycle.
	Cycles [][2]string `json:"cycles,omitempty"`
}

// Order returns every unit's node ID in build order.
func (p *Plan) Order() []string {
	out := make([]string, 0, len(p.Units))
	for _, u := range p.Units {
		out = append(out, u.NodeID)
	}
	return out
}

// Unit returns the unit built from the given node.
func (p *Plan) Unit(nodeID string) (*Unit, bool) {
	for _, u := range p.Units {
		if u.NodeID == nodeID {
			return u, true
		}
	}
	return nil, false
}

// Plan assigns a tier to every visible node of d and computes the build
// order. d must have passed [design.Validate].
//
// Component metadata in d is updated with the effective tier of every
// component that has a definition.
func (r *Resolver) Plan(ctx context.Context, d *design.Document) (*Plan, error) {
	m := make(map[*design.Node]metrics)
	for _, pg := range d.Pages {
		for _, root := range pg.Nodes {
			if root.IsVisible() {
				measure(root, m)
			}
		}
	}

	var units []*Unit
	for _, pg := range d.Pages {
		for _, root := range pg.Nodes {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !root.IsVisible() {
				continue
			}
			if err := r.assign(ctx, d, pg, root, m, &units); err != nil {
				return nil, err
			}
		}
	}

	plan := &Plan{}
	r.order(units, plan)

	seen := make(map[string]bool)
	for _, u := range plan.Units {
		if u.IsComponent() && !seen[u.ComponentID] {
			seen[u.ComponentID] = true
			d.Component(u.ComponentID).Tier = u.Tier
		}
	}
	for _, u := range plan.Units {
		if n := len(plan.Stages); n == 0 || plan.Stages[n-1].Tier != u.Tier {
			plan.Stages = append(plan.Stages, Stage{Tier: u.Tier})
		}
		st := &plan.Stages[len(plan.Stages)-1]
		st.NodeIDs = append(st.NodeIDs, u.NodeID)
	}

	r.logger.Debug("planned hierarchy", "units", len(plan.Units), "stages", len(plan.Stages), "cycles", len(plan.Cycles))
	return plan, nil
}

// assign walks a page root, writing node tiers and collecting units in
// document order.
func (r *Resolver) assign(ctx context.Context, d *design.Document, pg *design.Page, root *design.Node, m map[*design.Node]metrics, units *[]*Unit) error {
	var err error
	root.Walk(func(n *design.Node) bool {
		if err != nil {
			return false
		}
		if err = ctx.Err(); err != nil {
			return false
		}
		if !n.IsVisible() {
			return false
		}
		isRoot := n == root
		n.Tier = r.tierOf(d, pg, n, isRoot, m[n])
		if isRoot || isDefinition(n) {
			u := &Unit{
				NodeID: n.ID,
				Name:   n.Name,
				Page:   pg.ID,
				Tier:   n.Tier,
				Deps:   dependencies(n),
				node:   n,
			}
			if isDefinition(n) {
				u.ComponentID = componentID(n)
			}
			*units = append(*units, u)
		}
		return true
	})
	return err
}

// tierOf returns the explicit tier of n, or the inferred one.
func (r *Resolver) tierOf(d *design.Document, pg *design.Page, n *design.Node, isRoot bool, m metrics) design.Tier {
	if t, ok := r.overrides.lookup(n); ok {
		return t
	}
	if isDefinition(n) {
		if meta, ok := d.Components[componentID(n)]; ok && meta.Tier != design.TierUnset {
			return meta.Tier
		}
	}
	if isRoot && pg.DefaultTier != design.TierUnset {
		return pg.DefaultTier
	}
	return InferTier(m.height, m.components)
}

// dependencies lists the components referenced below n, in document order.
// Instances and nested definitions are not descended into.
func dependencies(n *design.Node) []string {
	var deps []string
	seen := make(map[string]bool)
	var visit func(*design.Node)
	visit = func(p *design.Node) {
		for _, c := range p.Children {
			if !c.IsVisible() {
				continue
			}
			if isUsage(c) {
				if id := componentID(c); id != "" && !seen[id] {
					seen[id] = true
					deps = append(deps, id)
				}
				continue
			}
			visit(c)
		}
	}
	visit(n)
	return deps
}

// order sorts units so that dependencies precede dependents, promoting
// units whose explicit tier is below a dependency's.
func (r *Resolver) order(units []*Unit, plan *Plan) {
	const (
		white = iota
		gray
		black
	)

	defs := make(map[string]*Unit)
	for _, u := range units {
		if u.IsComponent() {
			if _, ok := defs[u.ComponentID]; !ok {
				defs[u.ComponentID] = u
			}
		}
	}

	color := make(map[*Unit]int)
	var post []*Unit

	var dfs func(u *Unit)
	dfs = func(u *Unit) {
		color[u] = gray
		eff := u.Tier
		for _, dep := range u.Deps {
			du, ok := defs[dep]
			if !ok {
				continue
			}
			switch color[du] {
			case white:
				dfs(du)
			case gray:
				plan.Cycles = append(plan.Cycles, [2]string{unitKey(u), dep})
				r.logger.Warn("ignoring component reference cycle", "from", unitKey(u), "to", dep)
				continue
			}
			eff = max(eff, du.Tier)
		}
		if eff > u.Tier {
			u.Tier = eff
			u.Promoted = true
			u.node.Tier = eff
			u.node.Tag(TagPromoted)
		}
		color[u] = black
		post = append(post, u)
	}

	for _, u := range units {
		if color[u] == white {
			dfs(u)
		}
	}

	slices.SortStableFunc(post, func(a, b *Unit) int { return int(a.Tier) - int(b.Tier) })
	plan.Units = post
}

func unitKey(u *Unit) string {
	if u.IsComponent() {
		return u.ComponentID
	}
	return u.NodeID
}

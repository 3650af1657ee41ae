package hierarchy

import (
	"fmt"
	"strings"

	"github.com/matzehuels/designtree/pkg/design"
	apperrors "github.com/matzehuels/designtree/pkg/errors"
)

// Threshold is one row of the tier inference table. A node is assigned the
// first tier whose limits it satisfies.
type Threshold struct {
	Tier          design.Tier
	MaxHeight     int
	MaxComponents int
}

// Thresholds is the inference table, lowest tier first. Nodes exceeding
// every row are pages.
var Thresholds = []Threshold{
	{Tier: design.TierAtom, MaxHeight: 1, MaxComponents: 0},
	{Tier: design.TierMolecule, MaxHeight: 3, MaxComponents: 2},
	{Tier: design.TierOrganism, MaxHeight: 5, MaxComponents: 6},
	{Tier: design.TierTemplate, MaxHeight: 8, MaxComponents: 15},
}

// InferTier maps a subtree height (0 for a leaf) and the number of component
// usages below the node to a tier.
func InferTier(height, components int) design.Tier {
	for _, th := range Thresholds {
		if height <= th.MaxHeight && components <= th.MaxComponents {
			return th.Tier
		}
	}
	return design.TierPage
}

// Overrides assigns explicit tiers. Lookups are tried by node ID, then by
// component ID, then by node name.
type Overrides struct {
	ByNodeID      map[string]design.Tier
	ByComponentID map[string]design.Tier
	ByName        map[string]design.Tier
}

// ParseOverrides builds Overrides from "kind:key" → tier-name pairs, where
// kind is one of "node", "component" or "name". A key without a kind
// prefix is a node name.
func ParseOverrides(raw map[string]string) (Overrides, error) {
	var ov Overrides
	for key, value := range raw {
		t, err := design.ParseTier(value)
		if err != nil || t == design.TierUnset {
			return Overrides{}, fmt.Errorf("tier override %q: unknown tier %q", key, value)
		}
		kind, id, found := strings.Cut(key, ":")
		if !found {
			kind, id = "name", key
		}
		if err := apperrors.ValidateName(id); err != nil {
			return Overrides{}, fmt.Errorf("tier override %q: %w", key, err)
		}
		switch kind {
		case "node":
			ov.ByNodeID = setTier(ov.ByNodeID, id, t)
		case "component":
			ov.ByComponentID = setTier(ov.ByComponentID, id, t)
		case "name":
			ov.ByName = setTier(ov.ByName, id, t)
		default:
			return Overrides{}, fmt.Errorf("tier override %q: unknown selector %q", key, kind)
		}
	}
	return ov, nil
}

// Empty reports whether no override is configured.
func (o Overrides) Empty() bool {
	return len(o.ByNodeID) == 0 && len(o.ByComponentID) == 0 && len(o.ByName) == 0
}

func (o Overrides) lookup(n *design.Node) (design.Tier, bool) {
	if t, ok := o.ByNodeID[n.ID]; ok {
		return t, true
	}
	if id := componentID(n); id != "" {
		if t, ok := o.ByComponentID[id]; ok {
			return t, true
		}
	}
	if t, ok := o.ByName[n.Name]; ok {
		return t, true
	}
	return design.TierUnset, false
}

func setTier(m map[string]design.Tier, key string, t design.Tier) map[string]design.Tier {
	if m == nil {
		m = make(map[string]design.Tier)
	}
	m[key] = t
	return m
}

// metrics is the structural profile used for inference.
type metrics struct {
	height     int
	components int
}

// measure computes metrics for every visible node below and including n.
func measure(n *design.Node, out map[*design.Node]metrics) metrics {
	var m metrics
	for _, c := range n.Children {
		if !c.IsVisible() {
			continue
		}
		cm := measure(c, out)
		m.height = max(m.height, cm.height+1)
		m.components += cm.components
		if isUsage(c) {
			m.components++
		}
	}
	out[n] = m
	return m
}

// isUsage reports whether the node instantiates or defines a component.
func isUsage(n *design.Node) bool {
	return isDefinition(n) || isInstance(n)
}

func isDefinition(n *design.Node) bool {
	return n.Component.IsDefinition || n.Kind == design.KindComponent
}

func isInstance(n *design.Node) bool {
	return (n.Component.IsInstance || n.Kind == design.KindInstance) && n.Component.ComponentID != ""
}

// componentID returns the component a node defines or instantiates. A
// definition without an explicit component ID is identified by its node ID.
func componentID(n *design.Node) string {
	if n.Component.ComponentID != "" {
		return n.Component.ComponentID
	}
	if isDefinition(n) {
		return n.ID
	}
	return ""
}

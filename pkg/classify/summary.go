package classify

import "github.com/matzehuels/designtree/pkg/design"

// MaxChildKinds bounds the child-kind summary sent to external classifiers.
const MaxChildKinds = 5

// ChildKind counts the visible children of one kind.
type ChildKind struct {
	Kind  design.Kind `json:"kind"`
	Count int         `json:"count"`
}

// Summary is the structural description of a node sent to an external
// classifier. It carries no pixel data and no node identifiers.
type Summary struct {
	Name           string      `json:"name"`
	Kind           design.Kind `json:"kind"`
	Width          float64     `json:"width"`
	Height         float64     `json:"height"`
	ChildCount     int         `json:"child_count"`
	ChildKinds     []ChildKind `json:"child_kinds,omitempty"`
	HasTextChild   bool        `json:"has_text_child"`
	HasImageFill   bool        `json:"has_image_fill"`
	Scrolls        bool        `json:"scrolls"`
	HasInteraction bool        `json:"has_interaction"`
	HasBackground  bool        `json:"has_background"`
	HasStroke      bool        `json:"has_stroke"`
	CornerRadius   float64     `json:"corner_radius"`
}

// Summarize builds the external-classifier summary of n. Child kinds are
// listed in order of first appearance, at most [MaxChildKinds] entries.
func Summarize(n *design.Node) Summary {
	visible := n.VisibleChildren()
	s := Summary{
		Name:           n.Name,
		Kind:           n.Kind,
		Width:          n.Bounds.Width,
		Height:         n.Bounds.Height,
		ChildCount:     len(visible),
		HasTextChild:   hasTextChild(visible),
		HasImageFill:   n.Visual.HasFill("IMAGE"),
		Scrolls:        n.Visual.Overflow.Scrolls(),
		HasInteraction: n.Interaction.HasAction,
		HasBackground:  len(n.Visual.Fills) > 0 && anyVisible(n.Visual.Fills),
		HasStroke:      n.Visual.HasStroke(),
		CornerRadius:   n.Visual.CornerRadius,
	}

	pos := make(map[design.Kind]int)
	for _, c := range visible {
		if i, ok := pos[c.Kind]; ok {
			s.ChildKinds[i].Count++
			continue
		}
		if len(s.ChildKinds) == MaxChildKinds {
			continue
		}
		pos[c.Kind] = len(s.ChildKinds)
		s.ChildKinds = append(s.ChildKinds, ChildKind{Kind: c.Kind, Count: 1})
	}
	return s
}

func anyVisible(paints []design.Paint) bool {
	for _, p := range paints {
		if p.IsVisible() {
			return true
		}
	}
	return false
}

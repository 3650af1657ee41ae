package layout

import (
	"strconv"

	"github.com/matzehuels/designtree/pkg/design"
)

// ResolveAlignment produces the native alignment directive of a layout
// container. It returns nil for nodes without an axis mode.
//
// Primary space-between is rewritten to start alignment with SpaceBetween
// set; the caller inserts the spacers once the final child list is known.
// Baseline alignment is resolved to start.
func ResolveAlignment(n *design.Node) (*design.AlignDirective, []string) {
	c := n.Container
	if !c.Mode.HasLayout() {
		return nil, nil
	}

	var tags []string
	dir := &design.AlignDirective{
		Mode:    c.Mode,
		Wrap:    c.Wrap,
		Spacing: c.Spacing,
		Padding: c.Padding,
	}

	switch c.Primary {
	case design.AlignCenter, design.AlignEnd:
		dir.Primary = c.Primary
	case design.AlignSpaceBetween:
		dir.Primary = design.AlignStart
		dir.SpaceBetween = true
	case design.AlignBaseline:
		dir.Primary = design.AlignStart
		tags = appendTag(tags, TagBaselineApproximated)
	default:
		dir.Primary = design.AlignStart
	}

	switch c.Counter {
	case design.AlignCenter, design.AlignEnd:
		dir.Counter = c.Counter
	case design.AlignBaseline:
		dir.Counter = design.AlignStart
		tags = appendTag(tags, TagBaselineApproximated)
	case design.AlignSpaceBetween:
		dir.Counter = design.AlignStart
		tags = appendTag(tags, TagCounterSpaceBetween)
	default:
		dir.Counter = design.AlignStart
	}

	return dir, tags
}

// BuildItems returns the resolved child list of n: its visible children in
// order, with a flexible spacer between each adjacent pair of flow children
// when dir requests space-between. Absolutely positioned children keep their
// place in the list but do not take part in distribution. Children are never
// modified.
func BuildItems(n *design.Node, dir *design.AlignDirective) []design.Item {
	visible := n.VisibleChildren()
	if len(visible) == 0 {
		return nil
	}
	items := make([]design.Item, 0, 2*len(visible))
	spaced := dir != nil && dir.SpaceBetween
	seenFlow := false
	spacers := 0
	for _, c := range visible {
		if spaced && !c.IsAbsolute() {
			if seenFlow {
				items = append(items, design.Item{
					ID:     spacerID(n.ID, spacers),
					Spacer: NewSpacer(n.ID, spacers, dir.Mode),
				})
				spacers++
			}
			seenFlow = true
		}
		items = append(items, design.Item{ID: c.ID})
	}
	return items
}

// NewSpacer returns the i-th flexible spacer of a space-between container
// laid out along mode: grow with weight 1 and preferred size 0 on the
// primary axis, fixed to zero on the counter axis.
func NewSpacer(parentID string, i int, mode design.AxisMode) *design.Node {
	grow := design.AxisSize{Kind: design.SizeGrow, Size: 0, Weight: 1}
	zero := design.AxisSize{Kind: design.SizeExact, Size: 0}

	s := &design.Node{
		ID:   spacerID(parentID, i),
		Name: "spacer",
		Kind: design.KindSpacer,
	}
	s.SafeName = "spacer_" + strconv.Itoa(i)
	s.Layout = &design.Resolved{}
	if mode == design.AxisVertical {
		s.Sizing = design.Sizing{Horizontal: design.SizingFixed, Vertical: design.SizingFill, Grow: 1}
		s.Layout.Sizing = design.SizeDirective{Horizontal: zero, Vertical: grow}
	} else {
		s.Sizing = design.Sizing{Horizontal: design.SizingFill, Vertical: design.SizingFixed, Grow: 1}
		s.Layout.Sizing = design.SizeDirective{Horizontal: grow, Vertical: zero}
	}
	return s
}

func spacerID(parentID string, i int) string {
	return parentID + "#spacer-" + strconv.Itoa(i)
}

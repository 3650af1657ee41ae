package layout

import "github.com/matzehuels/designtree/pkg/design"

// ResolvePlacement computes the anchor geometry of an absolutely positioned
// node relative to the padded content box of parent. The vertical anchor is
// returned in the y-up target convention. It returns nil when parent is nil;
// see [OriginPlacement] for root-level absolute nodes.
func ResolvePlacement(n, parent *design.Node) *design.Placement {
	if parent == nil {
		return nil
	}
	pad := parent.Container.Padding
	boxX := parent.Bounds.X + pad.Left
	boxY := parent.Bounds.Y + pad.Top
	boxW := nonNegative(parent.Bounds.Width - pad.Left - pad.Right)
	boxH := nonNegative(parent.Bounds.Height - pad.Top - pad.Bottom)

	h := anchor(n.Constraints.Horizontal, n.Bounds.X-boxX, n.Bounds.Width, boxW)
	top := anchor(n.Constraints.Vertical, n.Bounds.Y-boxY, n.Bounds.Height, boxH)

	return &design.Placement{
		Horizontal:   h,
		Vertical:     top.Flip(),
		ParentWidth:  boxW,
		ParentHeight: boxH,
	}
}

// OriginPlacement pins n at offset 0 on both axes with its own size. It is
// the placement of an absolutely positioned node that has no parent and is
// therefore laid out in flow at the origin.
func OriginPlacement(n *design.Node) *design.Placement {
	return &design.Placement{
		Horizontal: design.AxisAnchor{Kind: design.AnchorNear, Size: n.Bounds.Width},
		Vertical:   design.AxisAnchor{Kind: design.AnchorNear, Size: n.Bounds.Height},
	}
}

// anchor builds the anchor of one axis in source orientation, where near is
// the left or top edge.
func anchor(c design.Constraint, near, size, parentSize float64) design.AxisAnchor {
	a := design.AxisAnchor{
		Near:   near,
		Far:    parentSize - near - size,
		Center: near + size/2 - parentSize/2,
		Size:   size,
	}
	switch c {
	case design.ConstraintMax:
		a.Kind = design.AnchorFar
	case design.ConstraintCenter:
		a.Kind = design.AnchorCenter
	case design.ConstraintStretch:
		a.Kind = design.AnchorStretch
	case design.ConstraintScale:
		a.Kind = design.AnchorScale
		if parentSize > 0 {
			a.NearFraction = near / parentSize
			a.SizeFraction = size / parentSize
		}
	default:
		a.Kind = design.AnchorNear
	}
	return a
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

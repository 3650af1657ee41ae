package design

// SizeKind is the kind of sizing directive resolved for one axis.
type SizeKind string

// Sizing directive kinds.
const (
	SizeExact  SizeKind = "exact"
	SizeGrow   SizeKind = "grow"
	SizeShrink SizeKind = "shrink"
)

// AxisSize is the resolved sizing directive of one axis.
//
// For SizeExact, Size is the final size. For SizeGrow, Size is the preferred
// size before distribution and Weight the grow factor; SoftMax, when set, is
// a cap the target engine should prefer but is not required to enforce. For
// SizeShrink, Size is the last known size and ContentDriven is set.
type AxisSize struct {
	Kind          SizeKind `json:"kind" bson:"kind"`
	Size          float64  `json:"size" bson:"size"`
	Weight        float64  `json:"weight,omitempty" bson:"weight,omitempty"`
	SoftMax       *float64 `json:"soft_max,omitempty" bson:"soft_max,omitempty"`
	ContentDriven bool     `json:"content_driven,omitempty" bson:"content_driven,omitempty"`
}

// SizeDirective is the resolved sizing of a node within its parent.
type SizeDirective struct {
	Horizontal AxisSize `json:"horizontal" bson:"horizontal"`
	Vertical   AxisSize `json:"vertical" bson:"vertical"`
}

// AlignDirective is the resolved container configuration for native
// consumption. Primary and Counter are always one of start, center or end.
type AlignDirective struct {
	Mode         AxisMode `json:"mode" bson:"mode"`
	Wrap         bool     `json:"wrap,omitempty" bson:"wrap,omitempty"`
	Primary      Align    `json:"primary" bson:"primary"`
	Counter      Align    `json:"counter" bson:"counter"`
	Spacing      float64  `json:"spacing,omitempty" bson:"spacing,omitempty"`
	Padding      Padding  `json:"padding" bson:"padding"`
	SpaceBetween bool     `json:"space_between,omitempty" bson:"space_between,omitempty"`
}

// AnchorKind is the constraint family resolved for one axis.
type AnchorKind string

// Anchor kinds.
const (
	AnchorNear    AnchorKind = "near"
	AnchorFar     AnchorKind = "far"
	AnchorCenter  AnchorKind = "center"
	AnchorStretch AnchorKind = "stretch"
	AnchorScale   AnchorKind = "scale"
)

// AxisAnchor is the anchor/offset geometry of one axis of an absolutely
// positioned node, relative to the parent's padded content box.
//
// Near and Far are distances from the near and far edges, Center is the
// signed distance of the node's center from the parent's center (positive
// toward the far edge). NearFraction and SizeFraction are the position and
// size as fractions of the parent content size; they are only meaningful for
// AnchorScale.
type AxisAnchor struct {
	Kind         AnchorKind `json:"kind" bson:"kind"`
	Near         float64    `json:"near" bson:"near"`
	Far          float64    `json:"far" bson:"far"`
	Center       float64    `json:"center" bson:"center"`
	Size         float64    `json:"size" bson:"size"`
	NearFraction float64    `json:"near_fraction,omitempty" bson:"near_fraction,omitempty"`
	SizeFraction float64    `json:"size_fraction,omitempty" bson:"size_fraction,omitempty"`
}

// Resolve computes the concrete near offset and size of the axis for a
// parent content size. Stretch keeps both edge distances, scale keeps both
// fractions, and the pinned kinds keep their size.
func (a AxisAnchor) Resolve(parentSize float64) (offset, size float64) {
	switch a.Kind {
	case AnchorFar:
		return parentSize - a.Far - a.Size, a.Size
	case AnchorCenter:
		return parentSize/2 + a.Center - a.Size/2, a.Size
	case AnchorStretch:
		return a.Near, parentSize - a.Near - a.Far
	case AnchorScale:
		return a.NearFraction * parentSize, a.SizeFraction * parentSize
	default:
		return a.Near, a.Size
	}
}

// Flip mirrors the anchor across the axis, swapping near and far edges.
func (a AxisAnchor) Flip() AxisAnchor {
	out := a
	out.Near, out.Far = a.Far, a.Near
	out.Center = -a.Center
	switch a.Kind {
	case AnchorNear:
		out.Kind = AnchorFar
	case AnchorFar:
		out.Kind = AnchorNear
	}
	if a.Kind == AnchorScale {
		out.NearFraction = 1 - a.NearFraction - a.SizeFraction
	}
	return out
}

// Placement is the resolved geometry of an absolutely positioned node.
//
// Vertical is expressed in the target convention where y increases upward:
// its near edge is the bottom of the parent content box. Use
// [Placement.SourceVertical] for the top-down view.
type Placement struct {
	Horizontal   AxisAnchor `json:"horizontal" bson:"horizontal"`
	Vertical     AxisAnchor `json:"vertical" bson:"vertical"`
	ParentWidth  float64    `json:"parent_width" bson:"parent_width"`
	ParentHeight float64    `json:"parent_height" bson:"parent_height"`
}

// SourceVertical returns the vertical anchor in the source convention
// (origin top left, y increasing downward).
func (p Placement) SourceVertical() AxisAnchor { return p.Vertical.Flip() }

// Item is one entry of a container's resolved child list: either a real
// child, referenced by ID, or a synthetic spacer.
type Item struct {
	ID     string `json:"id" bson:"id"`
	Spacer *Node  `json:"spacer,omitempty" bson:"spacer,omitempty"`
}

// IsSpacer reports whether the item is a synthetic flexible spacer.
func (it Item) IsSpacer() bool { return it.Spacer != nil }

// Resolved is the layout annotation of a node.
type Resolved struct {
	Sizing    SizeDirective   `json:"sizing" bson:"sizing"`
	Container *AlignDirective `json:"container,omitempty" bson:"container,omitempty"`
	Placement *Placement      `json:"placement,omitempty" bson:"placement,omitempty"`
	Items     []Item          `json:"items,omitempty" bson:"items,omitempty"`
}

// SpacerCount returns the number of synthetic spacers among the items.
func (r *Resolved) SpacerCount() int {
	n := 0
	for _, it := range r.Items {
		if it.IsSpacer() {
			n++
		}
	}
	return n
}

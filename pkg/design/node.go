package design

// Rect is an axis-aligned box in absolute document coordinates (origin top
// left, y increasing downward).
type Rect struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Padding is the inner spacing of a layout container.
type Padding struct {
	Top    float64 `json:"top,omitempty" bson:"top,omitempty"`
	Right  float64 `json:"right,omitempty" bson:"right,omitempty"`
	Bottom float64 `json:"bottom,omitempty" bson:"bottom,omitempty"`
	Left   float64 `json:"left,omitempty" bson:"left,omitempty"`
}

// Container is the layout-container profile: how a node arranges its own
// children.
type Container struct {
	Mode    AxisMode `json:"mode,omitempty" bson:"mode,omitempty"`
	Wrap    bool     `json:"wrap,omitempty" bson:"wrap,omitempty"`
	Primary Align    `json:"primary,omitempty" bson:"primary,omitempty"`
	Counter Align    `json:"counter,omitempty" bson:"counter,omitempty"`
	Spacing float64  `json:"spacing,omitempty" bson:"spacing,omitempty"`
	Padding Padding  `json:"padding" bson:"padding"`
}

// Sizing is the self-sizing profile: how a node sizes itself within its
// parent. Min and max bounds are optional.
type Sizing struct {
	Horizontal SizingMode `json:"horizontal,omitempty" bson:"horizontal,omitempty"`
	Vertical   SizingMode `json:"vertical,omitempty" bson:"vertical,omitempty"`
	MinWidth   *float64   `json:"min_width,omitempty" bson:"min_width,omitempty"`
	MaxWidth   *float64   `json:"max_width,omitempty" bson:"max_width,omitempty"`
	MinHeight  *float64   `json:"min_height,omitempty" bson:"min_height,omitempty"`
	MaxHeight  *float64   `json:"max_height,omitempty" bson:"max_height,omitempty"`
	Grow       float64    `json:"grow,omitempty" bson:"grow,omitempty"`
}

// Constraints pins an absolutely positioned node to its parent, per axis.
type Constraints struct {
	Horizontal Constraint `json:"horizontal,omitempty" bson:"horizontal,omitempty"`
	Vertical   Constraint `json:"vertical,omitempty" bson:"vertical,omitempty"`
}

// Paint is a fill or stroke. Gradients and images are carried as data only.
type Paint struct {
	Type     string  `json:"type" bson:"type"` // SOLID, IMAGE, GRADIENT_LINEAR, ...
	Visible  *bool   `json:"visible,omitempty" bson:"visible,omitempty"`
	Color    string  `json:"color,omitempty" bson:"color,omitempty"`
	Opacity  float64 `json:"opacity,omitempty" bson:"opacity,omitempty"`
	ImageRef string  `json:"image_ref,omitempty" bson:"image_ref,omitempty"`
}

// IsVisible reports whether the paint is drawn. Absent visibility means
// visible.
func (p Paint) IsVisible() bool { return p.Visible == nil || *p.Visible }

// Effect is a shadow or blur, passed through untouched.
type Effect struct {
	Type    string         `json:"type" bson:"type"`
	Visible bool           `json:"visible,omitempty" bson:"visible,omitempty"`
	Params  map[string]any `json:"params,omitempty" bson:"params,omitempty"`
}

// Visual holds opaque visual attributes.
type Visual struct {
	Fills        []Paint  `json:"fills,omitempty" bson:"fills,omitempty"`
	Strokes      []Paint  `json:"strokes,omitempty" bson:"strokes,omitempty"`
	StrokeWeight float64  `json:"stroke_weight,omitempty" bson:"stroke_weight,omitempty"`
	CornerRadius float64  `json:"corner_radius,omitempty" bson:"corner_radius,omitempty"`
	ClipsContent bool     `json:"clips_content,omitempty" bson:"clips_content,omitempty"`
	Opacity      *float64 `json:"opacity,omitempty" bson:"opacity,omitempty"`
	Effects      []Effect `json:"effects,omitempty" bson:"effects,omitempty"`
	Overflow     Overflow `json:"overflow,omitempty" bson:"overflow,omitempty"`
}

// HasFill reports whether a visible fill of the given type exists.
func (v Visual) HasFill(paintType string) bool {
	for _, f := range v.Fills {
		if f.Type == paintType && f.IsVisible() {
			return true
		}
	}
	return false
}

// HasStroke reports whether any visible stroke exists.
func (v Visual) HasStroke() bool {
	for _, s := range v.Strokes {
		if s.IsVisible() {
			return true
		}
	}
	return false
}

// TextStyle is the typography of a text node.
type TextStyle struct {
	FontFamily string  `json:"font_family,omitempty" bson:"font_family,omitempty"`
	FontSize   float64 `json:"font_size,omitempty" bson:"font_size,omitempty"`
	FontWeight int     `json:"font_weight,omitempty" bson:"font_weight,omitempty"`
	Case       string  `json:"case,omitempty" bson:"case,omitempty"`
	Decoration string  `json:"decoration,omitempty" bson:"decoration,omitempty"`
	Align      string  `json:"align,omitempty" bson:"align,omitempty"`
	StyleID    string  `json:"style_id,omitempty" bson:"style_id,omitempty"`
}

// ComponentLink ties a node to the component model.
type ComponentLink struct {
	IsDefinition bool   `json:"is_definition,omitempty" bson:"is_definition,omitempty"`
	IsInstance   bool   `json:"is_instance,omitempty" bson:"is_instance,omitempty"`
	ComponentID  string `json:"component_id,omitempty" bson:"component_id,omitempty"`
}

// Interaction links a node to a prototype action.
type Interaction struct {
	HasAction     bool   `json:"has_action,omitempty" bson:"has_action,omitempty"`
	DestinationID string `json:"destination_id,omitempty" bson:"destination_id,omitempty"`
}

// Node is one visual element of the document.
//
// Source attributes are filled by the parser. The annotation fields at the
// bottom of the struct are written by the resolvers in this module.
type Node struct {
	ID          string        `json:"id" bson:"id"`
	Name        string        `json:"name" bson:"name"`
	SafeName    string        `json:"safe_name,omitempty" bson:"safe_name,omitempty"`
	Kind        Kind          `json:"kind" bson:"kind"`
	Visible     *bool         `json:"visible,omitempty" bson:"visible,omitempty"`
	Bounds      Rect          `json:"bounds" bson:"bounds"`
	Rotation    float64       `json:"rotation,omitempty" bson:"rotation,omitempty"`
	Container   Container     `json:"container" bson:"container"`
	Sizing      Sizing        `json:"sizing" bson:"sizing"`
	Positioning Positioning   `json:"positioning,omitempty" bson:"positioning,omitempty"`
	Constraints Constraints   `json:"constraints" bson:"constraints"`
	Visual      Visual        `json:"visual" bson:"visual"`
	Text        string        `json:"text,omitempty" bson:"text,omitempty"`
	TextStyle   *TextStyle    `json:"text_style,omitempty" bson:"text_style,omitempty"`
	Component   ComponentLink `json:"component" bson:"component"`
	Interaction Interaction   `json:"interaction" bson:"interaction"`
	Children    []*Node       `json:"children,omitempty" bson:"children,omitempty"`

	Classification *Classification `json:"classification,omitempty" bson:"classification,omitempty"`
	Layout         *Resolved       `json:"layout,omitempty" bson:"layout,omitempty"`
	Tier           Tier            `json:"tier,omitempty" bson:"tier,omitempty"`
	Ref            *ArtifactRef    `json:"ref,omitempty" bson:"ref,omitempty"`
	Tags           []string        `json:"tags,omitempty" bson:"tags,omitempty"`

	parent *Node
}

// Parent returns the owning node, or nil for a page root. The reference is
// only valid after [Document.Link].
func (n *Node) Parent() *Node { return n.parent }

// IsVisible reports whether the node is rendered. Absent visibility means
// visible.
func (n *Node) IsVisible() bool { return n.Visible == nil || *n.Visible }

// IsAbsolute reports whether the node opts out of its parent's auto-layout.
func (n *Node) IsAbsolute() bool { return n.Positioning == PositionAbsolute }

// IsReference reports whether the hierarchy resolver replaced this node's
// subtree with a reference to an already built artifact.
func (n *Node) IsReference() bool { return n.Ref != nil }

// Depth returns the number of ancestors above the node.
func (n *Node) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Tag records an approximation or fallback applied to the node. Duplicate
// tags are ignored.
func (n *Node) Tag(tag string) {
	for _, t := range n.Tags {
		if t == tag {
			return
		}
	}
	n.Tags = append(n.Tags, tag)
}

// HasTag reports whether the node carries the tag.
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// VisibleChildren returns the children that are rendered, in document order.
func (n *Node) VisibleChildren() []*Node {
	out := make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.IsVisible() {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits the node and its descendants in pre-order. Returning false
// from fn skips the children of the current node.
func (n *Node) Walk(fn func(n *Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Clone returns a deep copy of the subtree rooted at n. The copy is linked
// internally and detached from n's parent. Classification and Ref are
// copied; the resolved layout is shared, since it is read-only once the
// translator has run.
func (n *Node) Clone() *Node {
	c := n.clone()
	c.link(nil)
	return c
}

func (n *Node) clone() *Node {
	c := *n
	c.parent = nil
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	if n.Classification != nil {
		cl := *n.Classification
		c.Classification = &cl
	}
	if n.Ref != nil {
		ref := *n.Ref
		c.Ref = &ref
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.clone()
		}
	}
	return &c
}

// link sets parent back-references for the subtree rooted at n.
func (n *Node) link(parent *Node) {
	if n == nil {
		return
	}
	n.parent = parent
	for _, c := range n.Children {
		c.link(n)
	}
}

package design

import (
	"fmt"
	"strings"
)

// Kind is the structural kind of a node as reported by the source document.
type Kind string

// Structural kinds.
const (
	KindText      Kind = "TEXT"
	KindVector    Kind = "VECTOR"
	KindRectangle Kind = "RECTANGLE"
	KindEllipse   Kind = "ELLIPSE"
	KindLine      Kind = "LINE"
	KindBoolean   Kind = "BOOLEAN_OPERATION"
	KindFrame     Kind = "FRAME"
	KindGroup     Kind = "GROUP"
	KindComponent Kind = "COMPONENT"
	KindInstance  Kind = "INSTANCE"

	// KindSpacer marks synthetic flexible spacers created by the layout
	// translator. The parser never produces it.
	KindSpacer Kind = "SPACER"
)

// IsVectorPrimitive reports whether the kind is drawn from path data.
func (k Kind) IsVectorPrimitive() bool {
	switch k {
	case KindVector, KindBoolean, KindLine, KindEllipse:
		return true
	}
	return false
}

// IsContainer reports whether nodes of this kind may own children.
func (k Kind) IsContainer() bool {
	switch k {
	case KindFrame, KindGroup, KindComponent, KindInstance, KindBoolean:
		return true
	}
	return false
}

// AxisMode is the auto-layout direction of a container.
type AxisMode string

// Axis modes. The zero value behaves like AxisNone.
const (
	AxisNone       AxisMode = "NONE"
	AxisHorizontal AxisMode = "HORIZONTAL"
	AxisVertical   AxisMode = "VERTICAL"
)

// HasLayout reports whether the mode arranges children along an axis.
func (m AxisMode) HasLayout() bool {
	return m == AxisHorizontal || m == AxisVertical
}

// Align is an alignment along the primary or counter axis of a container.
type Align string

// Alignments. The zero value behaves like AlignStart.
const (
	AlignStart        Align = "MIN"
	AlignCenter       Align = "CENTER"
	AlignEnd          Align = "MAX"
	AlignSpaceBetween Align = "SPACE_BETWEEN"
	AlignBaseline     Align = "BASELINE"
)

// SizingMode is how a node sizes itself along one axis inside its parent.
type SizingMode string

// Sizing modes. The zero value behaves like SizingFixed.
const (
	SizingFixed SizingMode = "FIXED"
	SizingHug   SizingMode = "HUG"
	SizingFill  SizingMode = "FILL"
)

// Positioning selects flow placement or constraint-based absolute placement.
type Positioning string

// Positioning modes. The zero value behaves like PositionFlow.
const (
	PositionFlow     Positioning = "AUTO"
	PositionAbsolute Positioning = "ABSOLUTE"
)

// Constraint pins one axis of an absolutely positioned node to its parent.
// Min is the left or top edge, Max is the right or bottom edge in source
// coordinates.
type Constraint string

// Edge constraints. The zero value behaves like ConstraintMin.
const (
	ConstraintMin     Constraint = "MIN"
	ConstraintMax     Constraint = "MAX"
	ConstraintCenter  Constraint = "CENTER"
	ConstraintStretch Constraint = "STRETCH"
	ConstraintScale   Constraint = "SCALE"
)

// Overflow is the scroll behavior of a container.
type Overflow string

// Overflow modes.
const (
	OverflowNone       Overflow = "NONE"
	OverflowHorizontal Overflow = "HORIZONTAL"
	OverflowVertical   Overflow = "VERTICAL"
	OverflowBoth       Overflow = "BOTH"
)

// Scrolls reports whether content may scroll on any axis.
func (o Overflow) Scrolls() bool {
	return o == OverflowHorizontal || o == OverflowVertical || o == OverflowBoth
}

// Tier is a node's position in the atomic hierarchy. Lower tiers are more
// primitive and are built first.
type Tier int

// Hierarchy tiers.
const (
	TierUnset Tier = iota
	TierAtom
	TierMolecule
	TierOrganism
	TierTemplate
	TierPage
)

// Tiers lists every assignable tier from lowest to highest.
var Tiers = []Tier{TierAtom, TierMolecule, TierOrganism, TierTemplate, TierPage}

var tierNames = map[Tier]string{
	TierUnset:    "",
	TierAtom:     "atom",
	TierMolecule: "molecule",
	TierOrganism: "organism",
	TierTemplate: "template",
	TierPage:     "page",
}

func (t Tier) String() string {
	if s, ok := tierNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Tier(%d)", int(t))
}

// ParseTier parses a tier name case-insensitively. The empty string yields
// TierUnset.
func ParseTier(s string) (Tier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}
	return TierUnset, fmt.Errorf("unknown tier %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

package classify

import (
	"fmt"

	"github.com/matzehuels/designtree/pkg/design"
)

// A Rule inspects a node and optionally proposes a classification.
type Rule struct {
	Name  string
	Apply func(n *design.Node) (design.Classification, bool)
}

// DefaultRules returns the rule tiers in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{design.SourceStructural, StructuralRule},
		{design.SourceInteraction, InteractionRule},
		{design.SourceName, NameRule},
		{design.SourceHeuristic, HeuristicRule},
	}
}

// IconMaxSize is the largest extent, on either axis, of a vector still
// considered an icon.
const IconMaxSize = 64.0

// DividerAspect is the aspect ratio beyond which a childless node is
// considered a divider.
const DividerAspect = 20.0

// StructuralRule classifies from the node kind alone.
func StructuralRule(n *design.Node) (design.Classification, bool) {
	switch n.Kind {
	case design.KindSpacer:
		return result(design.RoleSpacer, design.ConfidenceVeryHigh, design.SourceStructural, "synthetic spacer"), true
	case design.KindText:
		return result(design.RoleLabel, design.ConfidenceVeryHigh, design.SourceStructural, "text node"), true
	case design.KindLine:
		return result(design.RoleDivider, design.ConfidenceHigh, design.SourceStructural, "line primitive"), true
	case design.KindVector, design.KindBoolean:
		if maxExtent(n) <= IconMaxSize {
			return result(design.RoleIcon, design.ConfidenceHigh, design.SourceStructural,
				fmt.Sprintf("vector within %gpx", IconMaxSize)), true
		}
		return result(design.RoleImage, design.ConfidenceMedium, design.SourceStructural, "large vector"), true
	case design.KindEllipse:
		if n.Visual.HasFill("IMAGE") {
			return result(design.RoleAvatar, design.ConfidenceHigh, design.SourceStructural, "ellipse with image fill"), true
		}
	}
	return design.Classification{}, false
}

// InteractionRule classifies nodes carrying a prototype action as buttons.
func InteractionRule(n *design.Node) (design.Classification, bool) {
	if !n.Interaction.HasAction {
		return design.Classification{}, false
	}
	return result(design.RoleButton, design.ConfidenceHigh, design.SourceInteraction, "has interaction"), true
}

// NameRule matches the display name against the keyword families.
func NameRule(n *design.Node) (design.Classification, bool) {
	role, conf, kw, ok := MatchName(n.Name)
	if !ok {
		return design.Classification{}, false
	}
	return result(role, conf, design.SourceName, fmt.Sprintf("name token %q", kw)), true
}

// HeuristicRule derives a weak guess from structural signals.
func HeuristicRule(n *design.Node) (design.Classification, bool) {
	visible := n.VisibleChildren()

	if n.Visual.HasFill("IMAGE") && len(visible) == 0 {
		return result(design.RoleImage, design.ConfidenceLow, design.SourceHeuristic, "image fill without children"), true
	}
	if n.Visual.Overflow.Scrolls() {
		return result(design.RoleScroll, design.ConfidenceLow, design.SourceHeuristic, "scroll overflow"), true
	}
	if len(visible) >= 1 && len(visible) <= 3 && hasTextChild(visible) &&
		n.Visual.HasFill("SOLID") && n.Visual.CornerRadius > 0 {
		return result(design.RoleButton, design.ConfidenceLow, design.SourceHeuristic, "rounded filled box with text"), true
	}
	if len(visible) == 0 && thin(n.Bounds.Width, n.Bounds.Height) {
		return result(design.RoleDivider, design.ConfidenceLow, design.SourceHeuristic, "thin aspect ratio"), true
	}
	return design.Classification{}, false
}

// Default is the classification of a node no rule matches.
func Default() design.Classification {
	return result(design.RoleContainer, design.ConfidenceLow, design.SourceDefault, "no rule matched")
}

func result(role design.Role, conf design.Confidence, source, reason string) design.Classification {
	return design.Classification{Role: role, Confidence: conf, Source: source, Reason: reason}
}

func maxExtent(n *design.Node) float64 {
	return max(n.Bounds.Width, n.Bounds.Height)
}

func hasTextChild(children []*design.Node) bool {
	for _, c := range children {
		if c.Kind == design.KindText {
			return true
		}
	}
	return false
}

func thin(w, h float64) bool {
	if w <= 0 && h <= 0 {
		return false
	}
	if w <= 0 || h <= 0 {
		return true
	}
	return w/h > DividerAspect || h/w > DividerAspect
}

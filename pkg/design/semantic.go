package design

import (
	"fmt"
	"strings"
)

// Role is the semantic role assigned to a node by the type classifier.
type Role string

// Semantic roles. The order of [Roles] is the name-pattern priority order.
const (
	RoleButton     Role = "button"
	RoleInput      Role = "input"
	RoleToggle     Role = "toggle"
	RoleSlider     Role = "slider"
	RoleDropdown   Role = "dropdown"
	RoleImage      Role = "image"
	RoleIcon       Role = "icon"
	RoleScroll     Role = "scroll"
	RoleList       Role = "list"
	RoleCard       Role = "card"
	RoleNavigation Role = "navigation"
	RoleHeader     Role = "header"
	RoleFooter     Role = "footer"
	RoleModal      Role = "modal"
	RoleTooltip    Role = "tooltip"
	RoleProgress   Role = "progress"
	RoleTab        Role = "tab"
	RoleBadge      Role = "badge"
	RoleAvatar     Role = "avatar"
	RoleDivider    Role = "divider"
	RoleSpacer     Role = "spacer"
	RoleLabel      Role = "label"
	RoleContainer  Role = "container"
)

// Roles lists every role. The first 22 entries are in keyword priority order;
// RoleContainer is the default and has no keyword family.
var Roles = []Role{
	RoleButton, RoleInput, RoleToggle, RoleSlider, RoleDropdown, RoleImage,
	RoleIcon, RoleScroll, RoleList, RoleCard, RoleNavigation, RoleHeader,
	RoleFooter, RoleModal, RoleTooltip, RoleProgress, RoleTab, RoleBadge,
	RoleAvatar, RoleDivider, RoleSpacer, RoleLabel, RoleContainer,
}

// ParseRole parses a role label. Surrounding whitespace, quotes and a
// trailing period are tolerated; anything else must match exactly
// (case-insensitive).
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, "\"'`.")
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Confidence is an ordered trust level of a classification.
type Confidence int

// Confidence levels, lowest first.
const (
	ConfidenceNone Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
	ConfidenceVeryHigh
)

var confidenceNames = []string{"none", "low", "medium", "high", "very-high"}

func (c Confidence) String() string {
	if c >= 0 && int(c) < len(confidenceNames) {
		return confidenceNames[c]
	}
	return fmt.Sprintf("Confidence(%d)", int(c))
}

// ParseConfidence parses a confidence name. "very_high" and "veryhigh" are
// accepted as spellings of very-high.
func ParseConfidence(s string) (Confidence, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", "-", " ", "-").Replace(s)
	if s == "veryhigh" {
		s = "very-high"
	}
	for i, name := range confidenceNames {
		if name == s {
			return Confidence(i), nil
		}
	}
	return ConfidenceNone, fmt.Errorf("unknown confidence %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Confidence) UnmarshalText(b []byte) error {
	v, err := ParseConfidence(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Classification sources, one per rule tier plus the fallbacks.
const (
	SourceStructural  = "structural"
	SourceInteraction = "interaction"
	SourceName        = "name"
	SourceHeuristic   = "heuristic"
	SourceExternal    = "external"
	SourceDefault     = "default"
)

// Classification is the semantic role annotation of a node.
type Classification struct {
	Role       Role       `json:"role" bson:"role"`
	Confidence Confidence `json:"confidence" bson:"confidence"`
	Source     string     `json:"source" bson:"source"`
	Reason     string     `json:"reason,omitempty" bson:"reason,omitempty"`
}

// ArtifactRef marks a node whose subtree was replaced by a reference to an
// artifact built earlier from a component definition.
type ArtifactRef struct {
	ArtifactID  string `json:"artifact_id" bson:"artifact_id"`
	ComponentID string `json:"component_id" bson:"component_id"`
	Path        string `json:"path,omitempty" bson:"path,omitempty"`
}

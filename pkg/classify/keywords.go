package classify

import "github.com/matzehuels/designtree/pkg/design"

// Family is the keyword family of one role. A canonical keyword matches with
// high confidence, an alias with medium confidence.
type Family struct {
	Role      design.Role
	Canonical []string
	Aliases   []string
}

// Families lists the keyword families in match priority order. The first
// family with a matching token wins.
var Families = []Family{
	{design.RoleButton, []string{"button", "buttons"}, []string{"btn", "cta", "fab"}},
	{design.RoleInput, []string{"input", "textfield", "textinput"}, []string{"field", "textbox", "textarea", "search", "searchbar"}},
	{design.RoleToggle, []string{"toggle", "switch"}, []string{"checkbox", "radio", "check"}},
	{design.RoleSlider, []string{"slider"}, []string{"range", "seekbar", "knob"}},
	{design.RoleDropdown, []string{"dropdown", "select"}, []string{"picker", "combobox", "combo"}},
	{design.RoleImage, []string{"image", "images"}, []string{"img", "photo", "picture", "thumbnail", "illustration", "banner"}},
	{design.RoleIcon, []string{"icon", "icons"}, []string{"ico", "glyph", "symbol"}},
	{design.RoleScroll, []string{"scroll", "scrollview"}, []string{"scroller", "carousel", "scrollable"}},
	{design.RoleList, []string{"list", "listview"}, []string{"feed", "items", "grid", "table"}},
	{design.RoleCard, []string{"card", "cards"}, []string{"tile", "panel"}},
	{design.RoleNavigation, []string{"navigation", "nav", "navbar"}, []string{"menu", "sidebar", "breadcrumb", "breadcrumbs", "drawer"}},
	{design.RoleHeader, []string{"header"}, []string{"appbar", "topbar", "toolbar", "hero", "masthead"}},
	{design.RoleFooter, []string{"footer"}, []string{"bottombar"}},
	{design.RoleModal, []string{"modal", "dialog"}, []string{"popup", "sheet", "overlay", "alert"}},
	{design.RoleTooltip, []string{"tooltip"}, []string{"hint", "popover"}},
	{design.RoleProgress, []string{"progress", "progressbar"}, []string{"loader", "spinner", "loading"}},
	{design.RoleTab, []string{"tab", "tabs"}, []string{"segment", "segmented", "tabbar"}},
	{design.RoleBadge, []string{"badge"}, []string{"chip", "tag", "pill"}},
	{design.RoleAvatar, []string{"avatar"}, []string{"profile", "userpic"}},
	{design.RoleDivider, []string{"divider", "separator"}, []string{"rule", "hr"}},
	{design.RoleSpacer, []string{"spacer"}, []string{"gap"}},
	{design.RoleLabel, []string{"label", "text"}, []string{"title", "caption", "heading", "subtitle", "description"}},
}

var keywordIndex = buildKeywordIndex(Families)

type keywordHit struct {
	family    int
	canonical bool
}

func buildKeywordIndex(families []Family) map[string]keywordHit {
	idx := make(map[string]keywordHit)
	for i, f := range families {
		for _, k := range f.Canonical {
			if _, ok := idx[k]; !ok {
				idx[k] = keywordHit{family: i, canonical: true}
			}
		}
		for _, k := range f.Aliases {
			if _, ok := idx[k]; !ok {
				idx[k] = keywordHit{family: i}
			}
		}
	}
	return idx
}

// MatchName matches the tokens of name against the keyword families. It
// returns the role of the highest-priority family with a matching token, the
// matched keyword, and whether any token matched. Confidence is high when
// that family matched a canonical keyword, medium otherwise.
func MatchName(name string) (design.Role, design.Confidence, string, bool) {
	best := -1
	var keyword string
	canonical := false
	for _, tok := range Tokenize(name) {
		hit, ok := keywordIndex[tok]
		if !ok {
			continue
		}
		switch {
		case best == -1 || hit.family < best:
			best, keyword, canonical = hit.family, tok, hit.canonical
		case hit.family == best && hit.canonical && !canonical:
			keyword, canonical = tok, true
		}
	}
	if best == -1 {
		return "", design.ConfidenceNone, "", false
	}
	conf := design.ConfidenceMedium
	if canonical {
		conf = design.ConfidenceHigh
	}
	return Families[best].Role, conf, keyword, true
}

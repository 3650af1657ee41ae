package design

import (
	"strings"
	"unicode"
)

// SanitizeName converts a display name into an identifier-safe name:
// ASCII letters, digits and underscores, not starting with a digit, words
// joined in snake_case. Empty results become "node".
func SanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
	}
	out := b.String()
	if out == "" {
		return "node"
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "n_" + out
	}
	return out
}

// FillSafeNames sets SafeName on every node that does not have one.
func FillSafeNames(d *Document) {
	d.Walk(func(n *Node) bool {
		if n.SafeName == "" {
			n.SafeName = SanitizeName(n.Name)
		}
		return true
	})
}

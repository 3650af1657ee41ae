package classify

import (
	"strings"
	"unicode"
)

// Tokenize splits a display name into lowercase tokens. Tokens are separated
// by any non-alphanumeric rune, by lower-to-upper case transitions
// ("submitBtn"), by the end of an acronym ("HTMLButton") and by letter/digit
// transitions ("icon24").
func Tokenize(name string) []string {
	runes := []rune(name)
	var tokens []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(cur) > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(r):
				flush()
			case unicode.IsUpper(prev) && unicode.IsUpper(r) &&
				i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				flush()
			case unicode.IsDigit(prev) != unicode.IsDigit(r):
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return tokens
}

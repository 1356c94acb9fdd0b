package geocode

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacriticFolder strips combining marks after NFD decomposition, so "Vĩnh
// Tuy" and "Vinh Tuy" fold to the same token stream.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases s and removes diacritics, returning the plain ASCII-ish
// form used as the index's comparison key.
func fold(s string) string {
	out, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// tokenize splits a folded string on anything that is not a letter or digit.
func tokenize(s string) []string {
	folded := fold(s)
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

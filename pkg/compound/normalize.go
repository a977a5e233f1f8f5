package compound

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Normalize converts text into the fuzzy-matching key form: accents
// stripped (NFKD decomposition, combining marks and non-ASCII remainders
// dropped), lower-cased, apostrophes elided, every other run of
// non-alphanumeric characters (underscore included) collapsed to a single
// space, trimmed. Used only for index keys and ranking, never for display.
//
// The apostrophe rule keeps possessives searchable: "St. John's Wort"
// normalizes to "st johns wort", so the query "st johns" prefix-matches.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	folded, _, err := transform.String(stripAccents, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	space := false
	for _, r := range folded {
		switch {
		case r == '\'' || r == '’' || r == '‘':
			// elide
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r + ('a' - 'A'))
		default:
			// non-ASCII leftovers and punctuation both act as separators
			space = true
		}
	}
	return b.String()
}

package scoring

import (
	"strings"
	"unicode"
)

// NormalizeText folds non-breaking and variant space characters to a single
// ASCII space and collapses runs of whitespace. The provider correlates the
// decompose, build and score calls by exact text, so the same normalization
// must be applied before every operation.
func NormalizeText(text string) string {
	folded := strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\ufeff':
			// Zero-width spaces carry no pronunciation; drop them entirely.
			return -1
		}
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, text)

	return strings.Join(strings.Fields(folded), " ")
}

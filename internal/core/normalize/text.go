package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Text strips control characters (keeping newlines and tabs) and normalizes
// the result to NFKC. Applied to every recognized page before it enters the
// pipeline, so OCR artifacts like zero-width runes never reach the matchers.
func Text(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\t' || !unicode.In(r, unicode.C) {
			b.WriteRune(r)
		}
	}
	return norm.NFKC.String(b.String())
}

// Package resolve turns a noisy speech transcript into a best-effort match
// against the catalog's registered command and group names.
//
// The pipeline has three stages: [Normalize] canonicalises strings for
// comparison, [Filter] strips imperative filler words ("abrir", "open", …)
// from the raw transcript, and [Matcher] picks the first candidate name that
// is either a normalized substring of the transcript (or vice versa) or close
// enough under Jaro-Winkler similarity. [Resolver] composes the three and
// enforces the command-before-group priority.
package resolve

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining diacritical marks, and
// recomposes, so "Café" and "cafe" normalise to the same string.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalises s for name comparison: lower-case, diacritics
// stripped, all whitespace removed. It is a pure function with no failure
// mode and is idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

package resolve

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultSimilarityThreshold is the minimum Jaro-Winkler score for the
// similarity fallback when no substring relation holds between the
// normalized transcript and a candidate name.
const DefaultSimilarityThreshold = 0.6

// MatcherOption is a functional option for configuring a [Matcher].
type MatcherOption func(*Matcher)

// WithSimilarityThreshold sets the minimum similarity score for the fuzzy
// fallback. Values outside (0, 1] are ignored. Default: 0.6.
func WithSimilarityThreshold(threshold float64) MatcherOption {
	return func(m *Matcher) {
		if threshold > 0 && threshold <= 1 {
			m.threshold = threshold
		}
	}
}

// Matcher picks the first candidate name matching a transcript. A candidate
// matches exactly when its normalized form is a substring of the normalized
// transcript or vice versa; otherwise it matches approximately when the
// Jaro-Winkler similarity of the two normalized strings meets the threshold.
//
// The first candidate in input order that matches wins — there is no global
// best-score search. Substring containment is unambiguous and handles the
// common case of extra words around an exact name; the similarity fallback
// tolerates mistranscribed syllables at the cost of occasional false
// positives.
//
// A Matcher is read-only after construction and safe for concurrent use.
type Matcher struct {
	threshold float64
}

// NewMatcher returns a [Matcher] configured with the supplied options.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{threshold: DefaultSimilarityThreshold}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Match returns the first candidate matching transcript, in candidate input
// order. ok is false when no candidate matches or the normalized transcript
// is empty. The returned name is the candidate's original spelling, not its
// normalized form.
func (m *Matcher) Match(transcript string, candidates []string) (name string, ok bool) {
	nt := Normalize(transcript)
	if nt == "" {
		return "", false
	}

	for _, c := range candidates {
		nc := Normalize(c)
		if nc == "" {
			continue
		}
		if strings.Contains(nt, nc) || strings.Contains(nc, nt) {
			return c, true
		}
		if matchr.JaroWinkler(nt, nc, false) >= m.threshold {
			return c, true
		}
	}
	return "", false
}

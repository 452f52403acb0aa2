package resolve

import (
	"regexp"
	"sort"
	"strings"
)

// DefaultFillerWords is the imperative/filler vocabulary stripped from
// transcripts before matching. It carries the Spanish set of the original
// launcher plus English equivalents; override it per deployment via
// configuration.
var DefaultFillerWords = []string{
	"abrir", "abre", "abrirme", "ir a", "quiero", "pon", "ejecuta", "lanza",
	"open", "launch", "run", "go to", "i want", "start",
}

// Filter removes a fixed vocabulary of filler tokens from transcripts.
// Removal is case-insensitive and bound to whole words: "abrir" is stripped
// from "abrir spotify" but left intact inside "abrirmente". A Filter is
// immutable after construction and safe for concurrent use.
type Filter struct {
	re *regexp.Regexp
}

// NewFilter compiles a filter for the given filler vocabulary. An empty
// words slice yields a filter that only trims whitespace. Multi-word tokens
// ("ir a", "go to") are supported; longer tokens take precedence so that
// "abrirme" is not half-consumed by "abrir".
func NewFilter(words []string) *Filter {
	if len(words) == 0 {
		return &Filter{}
	}

	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(w)))
	}
	if len(quoted) == 0 {
		return &Filter{}
	}

	// Longest alternative first so the regexp engine prefers "abrirme"
	// over its prefix "abrir".
	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })

	return &Filter{
		re: regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Strip removes every whole-word filler occurrence from transcript, collapses
// the runs of whitespace left behind, and trims the result. Pure function.
func (f *Filter) Strip(transcript string) string {
	if f.re == nil {
		return strings.TrimSpace(transcript)
	}
	out := f.re.ReplaceAllString(transcript, " ")
	return strings.Join(strings.Fields(out), " ")
}

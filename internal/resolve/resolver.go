package resolve

// Kind says whether a resolution landed on a command or a group name.
type Kind int

const (
	// KindCommand means the matched name is a registered command.
	KindCommand Kind = iota

	// KindGroup means the matched name is a registered group.
	KindGroup
)

// String returns the human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Match is the outcome of a successful resolution.
type Match struct {
	// Kind distinguishes command and group matches.
	Kind Kind

	// Name is the matched catalog name in its original spelling.
	Name string
}

// Resolver composes the filler filter and the fuzzy matcher and enforces the
// resolution order: command names are tried strictly before group names, even
// when a group name would also match. Safe for concurrent use.
type Resolver struct {
	filter  *Filter
	matcher *Matcher
}

// NewResolver builds a Resolver from a filler vocabulary and matcher options.
func NewResolver(fillerWords []string, opts ...MatcherOption) *Resolver {
	return &Resolver{
		filter:  NewFilter(fillerWords),
		matcher: NewMatcher(opts...),
	}
}

// Resolve strips filler words from transcript and matches the remainder
// against commandNames first, then groupNames. ok is false when neither list
// yields a match.
func (r *Resolver) Resolve(transcript string, commandNames, groupNames []string) (Match, bool) {
	cleaned := r.filter.Strip(transcript)

	if name, ok := r.matcher.Match(cleaned, commandNames); ok {
		return Match{Kind: KindCommand, Name: name}, true
	}
	if name, ok := r.matcher.Match(cleaned, groupNames); ok {
		return Match{Kind: KindGroup, Name: name}, true
	}
	return Match{}, false
}

package embedding

import "strings"

// Kind tags a text with its retrieval role. E5 models are trained with
// "query: " and "passage: " prefixes and expect them at inference time.
type Kind string

const (
	KindQuery   Kind = "query"
	KindPassage Kind = "passage"
)

// DefaultKind is used when a request does not name a type.
const DefaultKind = KindPassage

var knownPrefixes = []string{
	string(KindQuery) + ":",
	string(KindPassage) + ":",
}

// ParseKind maps a request "type" value to a Kind. Unknown values are kept
// verbatim so callers can pass through prefixes of other E5 variants.
func ParseKind(s string) Kind {
	if s == "" {
		return DefaultKind
	}
	return Kind(s)
}

// HasPrefix reports whether text already carries an explicit role prefix.
func HasPrefix(text string) bool {
	for _, p := range knownPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	return false
}

// ApplyPrefix returns text prefixed with "{kind}: " unless it already starts
// with "query:" or "passage:", in which case it is returned unchanged.
func ApplyPrefix(text string, kind Kind) string {
	if HasPrefix(text) {
		return text
	}
	if kind == "" {
		kind = DefaultKind
	}
	return string(kind) + ": " + text
}

// ApplyPrefixes applies ApplyPrefix to every element, preserving order.
func ApplyPrefixes(texts []string, kind Kind) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = ApplyPrefix(text, kind)
	}
	return out
}

// ConflictsWith reports whether text carries an explicit prefix that differs
// from kind. The explicit prefix always wins; this is only used for logging.
func ConflictsWith(text string, kind Kind) bool {
	if !HasPrefix(text) {
		return false
	}
	return !strings.HasPrefix(text, string(kind)+":")
}

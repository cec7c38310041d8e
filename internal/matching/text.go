// Package matching implements the lexical relevance pipeline: text
// normalization, candidate scoring, primary selection, and consensus fusion.
package matching

import "strings"

// TokenSet is a set of normalized tokens.
type TokenSet map[string]struct{}

// Has reports whether tok is in the set.
func (s TokenSet) Has(tok string) bool {
	_, ok := s[tok]
	return ok
}

var stopWords = TokenSet{
	"a": {}, "an": {}, "and": {}, "are": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "how": {}, "in": {}, "is": {},
	"it": {}, "its": {}, "of": {}, "on": {}, "or": {}, "that": {}, "the": {},
	"their": {}, "to": {}, "was": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "will": {}, "with": {},
}

// Normalize lowercases text, replaces every character outside [a-z0-9] and
// whitespace with a space, collapses whitespace runs, and trims.
func Normalize(text string) string {
	lower := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lower))
	pendingSpace := false
	for _, r := range lower {
		keep := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !keep {
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Tokenize returns the set of meaningful tokens in text: normalized words
// longer than one character that are not stop words.
func Tokenize(text string) TokenSet {
	normalized := Normalize(text)
	tokens := TokenSet{}
	if normalized == "" {
		return tokens
	}
	for _, tok := range strings.Split(normalized, " ") {
		if len(tok) <= 1 || stopWords.Has(tok) {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

func overlapCount(a, b TokenSet) int {
	n := 0
	for tok := range a {
		if b.Has(tok) {
			n++
		}
	}
	return n
}

func jaccard(a, b TokenSet) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	overlap := overlapCount(a, b)
	union := len(a) + len(b) - overlap
	if union <= 0 {
		return 0
	}
	return float64(overlap) / float64(union)
}

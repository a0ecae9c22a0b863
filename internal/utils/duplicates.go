package utils

import (
	"strings"
)

// UniqueFilter drops repeated words, comparing them case-insensitively.
// It is not safe for concurrent use.
type UniqueFilter struct {
	seenWords map[string]bool
}

// NewUniqueFilter creates a new filter, words given here count as already seen
func NewUniqueFilter(seen ...string) *UniqueFilter {
	seenWords := make(map[string]bool, len(seen))
	for _, w := range seen {
		seenWords[strings.ToLower(w)] = true
	}
	return &UniqueFilter{seenWords: seenWords}
}

// ShouldInclude checks if a word should be included (not a duplicate).
// Returns true the first time a word is seen, false afterwards.
func (f *UniqueFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}

// Unique returns words without case-insensitive duplicates or empty strings, keeping the first spelling
func Unique(words []string) []string {
	f := NewUniqueFilter()
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" || !f.ShouldInclude(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

package bucket

import (
	"sort"
)

// DefaultStopwords are common function words that carry no signal about a bucket.
var DefaultStopwords = []string{
	"be", "i", "am", "are", "is", "was", "were",
	"a", "an", "this", "the",
	"and", "or", "so", "much",
	"not", "no", "nor", "do", "don't",
}

// StopwordSet is a fixed set of words excluded from learning and scoring.
// Apostrophes are word characters for the tokenizer, so contractions such as
// "don't" are stored and matched whole.
type StopwordSet struct {
	words map[string]struct{}
}

// NewStopwordSet builds a set from words, normalized the same way as tokens.
// Empty and joiner-only entries are ignored.
func NewStopwordSet(words ...string) *StopwordSet {
	set := &StopwordSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = Normalize(w)
		if w == "" {
			continue
		}
		set.words[w] = struct{}{}
	}
	return set
}

// Contains checks exact membership of an already normalized word
func (s *StopwordSet) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[word]
	return ok
}

// Len returns the number of stopwords
func (s *StopwordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// Words returns the stopwords sorted
func (s *StopwordSet) Words() []string {
	if s == nil {
		return []string{}
	}
	words := make([]string, 0, len(s.words))
	for w := range s.words {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

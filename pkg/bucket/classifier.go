package bucket

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// ErrInvalidEntry is returned when restored entries break the table invariants
var ErrInvalidEntry = errors.New("invalid table entry")

// DefaultCacheSize is the number of guesses kept when no size is given
const DefaultCacheSize = 256

// Stats holds counters about a classifier
type Stats struct {
	Entries     int
	Words       int
	Labels      int
	Total       int
	Stopwords   int
	CachedGuess int
	CacheHits   int
	CacheMisses int
}

type options struct {
	stopwords []string
	extra     []string
	stem      bool
	cacheSize int
}

// Option configures a Classifier
type Option func(*options)

// WithStopwords replaces the default stopword list
func WithStopwords(words ...string) Option {
	return func(o *options) {
		o.stopwords = words
	}
}

// WithExtraStopwords adds words on top of the stopword list
func WithExtraStopwords(words ...string) Option {
	return func(o *options) {
		o.extra = append(o.extra, words...)
	}
}

// WithStemming turns english stemming of tokens on or off
func WithStemming(enabled bool) Option {
	return func(o *options) {
		o.stem = enabled
	}
}

// WithCacheSize sets how many guesses are cached, 0 disables the cache
func WithCacheSize(size int) Option {
	return func(o *options) {
		o.cacheSize = size
	}
}

// Classifier owns a frequency table and the stopwords that keep words out of it.
// It is safe for concurrent use: learning takes the write lock, everything else reads.
type Classifier struct {
	mu        sync.RWMutex
	table     *Table
	stopwords *StopwordSet
	tokenizer *Tokenizer
	cache     *guessCache
}

// New creates a classifier with an empty table and the default stopwords
func New(opts ...Option) (*Classifier, error) {
	o := options{
		stopwords: DefaultStopwords,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.cacheSize < 0 {
		return nil, fmt.Errorf("cache size must not be negative, got %d", o.cacheSize)
	}

	cache, err := newGuessCache(o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create guess cache: %w", err)
	}

	words := make([]string, 0, len(o.stopwords)+len(o.extra))
	words = append(words, o.stopwords...)
	words = append(words, o.extra...)

	return &Classifier{
		table:     NewTable(),
		stopwords: NewStopwordSet(words...),
		tokenizer: NewTokenizer(o.stem),
		cache:     cache,
	}, nil
}

// Tokenize exposes the classifier's tokenizer
func (c *Classifier) Tokenize(text string) []string {
	return c.tokenizer.Tokenize(text)
}

// IsStopword checks if word is one of the classifier's stopwords
func (c *Classifier) IsStopword(word string) bool {
	return c.stopwords.Contains(word)
}

// term turns a token into the word stored in the table.
// Returns false for tokens that must stay out of it.
func (c *Classifier) term(token string) (string, bool) {
	if token == "" || c.stopwords.Contains(token) {
		return "", false
	}
	word := c.tokenizer.Stem(token)
	if c.stopwords.Contains(word) {
		return "", false
	}
	return word, true
}

// Learn manually categorizes a text under label.
// Empty text or label is a no-op. Calls add up, nothing is ever replaced.
func (c *Classifier) Learn(text, label string) {
	if text == "" || label == "" {
		return
	}
	label = Normalize(label)
	tokens := c.tokenizer.Tokenize(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, token := range tokens {
		c.addLocked(token, label)
	}
	c.cache.purge()
}

// AddWord counts a single word for label, skipping empty words and stopwords.
func (c *Classifier) AddWord(word, label string) {
	if word == "" || label == "" {
		return
	}
	word = Normalize(word)
	label = Normalize(label)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.addLocked(word, label) {
		c.cache.purge()
	}
}

func (c *Classifier) addLocked(token, label string) bool {
	word, ok := c.term(token)
	if !ok {
		return false
	}
	c.table.Increment(label, word)
	return true
}

// Scores returns every label word was learned with, highest count first.
// word is matched as stored, unknown words give an empty slice.
func (c *Classifier) Scores(word string) []Score {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Scores(word)
}

// GuessScores sums the scores of every token of text per label and returns
// the ranking, highest total first, ties ordered by label.
func (c *Classifier) GuessScores(text string) []Score {
	if text == "" {
		return []Score{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if ranking, ok := c.cache.get(text); ok {
		return cloneScores(ranking)
	}

	totals := make(map[string]int)
	for _, token := range c.tokenizer.Tokenize(text) {
		word, ok := c.term(token)
		if !ok {
			continue
		}
		c.table.each(word, func(label string, count int) {
			totals[label] += count
		})
	}

	ranking := make([]Score, 0, len(totals))
	for label, total := range totals {
		ranking = append(ranking, Score{Label: label, Count: total})
	}
	sortScores(ranking)

	c.cache.add(text, ranking)
	return cloneScores(ranking)
}

// Guess returns all labels sharing the highest total score for text.
// The result is sorted and empty when no token of text was ever learned.
func (c *Classifier) Guess(text string) []string {
	return Winners(c.GuessScores(text))
}

// Winners returns the labels of a ranking that tie for its top count
func Winners(ranking []Score) []string {
	if len(ranking) == 0 {
		return []string{}
	}
	high := ranking[0].Count
	labels := make([]string, 0, 1)
	for _, s := range ranking {
		if s.Count != high {
			break
		}
		labels = append(labels, s.Label)
	}
	return labels
}

// Dump returns every (word, label, count) triple ordered by word then label
func (c *Classifier) Dump() []Entry {
	return c.DumpPrefix("")
}

// DumpPrefix returns the triples whose word starts with prefix
func (c *Classifier) DumpPrefix(prefix string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Entries(prefix)
}

// Labels returns the known labels sorted
func (c *Classifier) Labels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Labels()
}

// Len returns the number of (label, word) entries in the table
func (c *Classifier) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.Len()
}

// Stopwords returns the stopword list sorted
func (c *Classifier) Stopwords() []string {
	return c.stopwords.Words()
}

// Stats returns current table and cache statistics
func (c *Classifier) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cached, hits, misses := c.cache.stats()
	return Stats{
		Entries:     c.table.Len(),
		Words:       c.table.Words(),
		Labels:      len(c.table.Labels()),
		Total:       c.table.Total(),
		Stopwords:   c.stopwords.Len(),
		CachedGuess: cached,
		CacheHits:   hits,
		CacheMisses: misses,
	}
}

// Restore replaces the table with entries.
// Entries must already be normalized: non-empty lowercase word and label,
// a word that is not a stopword, a count of at least 1 and no repeated key.
// On error the current table is left untouched.
func (c *Classifier) Restore(entries []Entry) error {
	table := NewTable()
	for i, e := range entries {
		if err := c.validateEntry(e); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		key := Key{Label: e.Label, Word: e.Word}
		if table.Has(key) {
			return fmt.Errorf("entry %d: %w: duplicate key %s/%s", i, ErrInvalidEntry, e.Word, e.Label)
		}
		table.put(key, e.Count)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.table = table
	c.cache.purge()
	log.Debugf("Restored table: %d entries, %d words", table.Len(), table.Words())
	return nil
}

func (c *Classifier) validateEntry(e Entry) error {
	switch {
	case e.Word == "":
		return fmt.Errorf("%w: empty word", ErrInvalidEntry)
	case e.Label == "":
		return fmt.Errorf("%w: empty label for word %q", ErrInvalidEntry, e.Word)
	case e.Count < 1:
		return fmt.Errorf("%w: count %d for %s/%s", ErrInvalidEntry, e.Count, e.Word, e.Label)
	case Normalize(e.Word) != e.Word:
		return fmt.Errorf("%w: word %q is not normalized", ErrInvalidEntry, e.Word)
	case Normalize(e.Label) != e.Label:
		return fmt.Errorf("%w: label %q is not normalized", ErrInvalidEntry, e.Label)
	case c.stopwords.Contains(e.Word):
		return fmt.Errorf("%w: stopword %q", ErrInvalidEntry, e.Word)
	}
	return nil
}

func cloneScores(scores []Score) []Score {
	out := make([]Score, len(scores))
	copy(out, scores)
	return out
}

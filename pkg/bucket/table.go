package bucket

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// Key identifies one (label, word) cell of the frequency table.
type Key struct {
	Label string
	Word  string
}

// Score is a label with the count it gathered.
type Score struct {
	Label string
	Count int
}

// Entry is one (word, label, count) triple of the table.
type Entry struct {
	Word  string
	Label string
	Count int
}

// labelSet holds the labels a word was seen with
type labelSet map[string]struct{}

// Table maps (label, word) keys to how many times the word was learned for the label.
// Counts start at 1 and only grow. A patricia trie indexes words to their labels,
// so per-word lookups and prefix walks never scan the whole map.
// Table is not safe for concurrent use, Classifier guards it.
type Table struct {
	counts map[Key]int
	words  *patricia.Trie
	nWords int
	total  int
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{
		counts: make(map[Key]int),
		words:  patricia.NewTrie(),
	}
}

// Increment adds one to (label, word), creating the cell at 1. Returns the new count.
func (t *Table) Increment(label, word string) int {
	key := Key{Label: label, Word: word}
	t.counts[key]++
	count := t.counts[key]
	if count == 1 {
		t.labelsFor(word, true)[label] = struct{}{}
	}
	t.total++
	return count
}

// put stores a count for a key that is not in the table yet
func (t *Table) put(key Key, count int) {
	t.counts[key] = count
	t.labelsFor(key.Word, true)[key.Label] = struct{}{}
	t.total += count
}

// labelsFor returns the label set of word, creating it when asked to
func (t *Table) labelsFor(word string, create bool) labelSet {
	if item := t.words.Get(patricia.Prefix(word)); item != nil {
		return item.(labelSet)
	}
	if !create {
		return nil
	}
	set := make(labelSet)
	t.words.Insert(patricia.Prefix(word), set)
	t.nWords++
	return set
}

// Count returns the count of (label, word), 0 when absent
func (t *Table) Count(label, word string) int {
	return t.counts[Key{Label: label, Word: word}]
}

// Has reports whether (label, word) is in the table
func (t *Table) Has(key Key) bool {
	_, ok := t.counts[key]
	return ok
}

// each calls fn for every label word was learned with
func (t *Table) each(word string, fn func(label string, count int)) {
	for label := range t.labelsFor(word, false) {
		fn(label, t.counts[Key{Label: label, Word: word}])
	}
}

// Scores returns the labels of word with their counts, highest first.
// Equal counts are ordered by label. Unknown words give an empty slice.
func (t *Table) Scores(word string) []Score {
	set := t.labelsFor(word, false)
	scores := make([]Score, 0, len(set))
	t.each(word, func(label string, count int) {
		scores = append(scores, Score{Label: label, Count: count})
	})
	sortScores(scores)
	return scores
}

// Entries returns every triple whose word starts with prefix, ordered by word then label.
// An empty prefix returns the whole table.
func (t *Table) Entries(prefix string) []Entry {
	var entries []Entry
	visit := func(p patricia.Prefix, item patricia.Item) error {
		word := string(p)
		for label := range item.(labelSet) {
			entries = append(entries, Entry{
				Word:  word,
				Label: label,
				Count: t.counts[Key{Label: label, Word: word}],
			})
		}
		return nil
	}

	var err error
	if prefix == "" {
		err = t.words.Visit(visit)
	} else {
		err = t.words.VisitSubtree(patricia.Prefix(prefix), visit)
	}
	if err != nil {
		log.Errorf("Error visiting word index: %v", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Word != entries[j].Word {
			return entries[i].Word < entries[j].Word
		}
		return entries[i].Label < entries[j].Label
	})
	if entries == nil {
		return []Entry{}
	}
	return entries
}

// Labels returns the distinct labels sorted
func (t *Table) Labels() []string {
	seen := make(map[string]struct{})
	for key := range t.counts {
		seen[key.Label] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Len returns the number of (label, word) cells
func (t *Table) Len() int {
	return len(t.counts)
}

// Words returns the number of distinct words
func (t *Table) Words() int {
	return t.nWords
}

// Total returns the sum of all counts
func (t *Table) Total() int {
	return t.total
}

// sortScores orders by count descending, then label ascending
func sortScores(scores []Score) {
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Count != scores[j].Count {
			return scores[i].Count > scores[j].Count
		}
		return scores[i].Label < scores[j].Label
	})
}

// Package bucket is the core: it learns which words show up under which labels
// and guesses the label of unseen text by a plain frequency vote.
//
// Every learned (label, word) pair holds a count. Guessing sums the counts of all
// tokens of a text per label and returns every label tied for the top total.
// There are no priors and no smoothing, the scores are raw counts.
package bucket

// IClassifier defines the interface the server and CLI drive
type IClassifier interface {
	// Learn adds the tokens of text to label
	Learn(text, label string)

	// Guess returns the top scoring labels for text, all of them on a tie
	Guess(text string) []string

	// GuessScores returns the full label ranking for text
	GuessScores(text string) []Score

	// Scores returns the labels a single word was learned with
	Scores(word string) []Score

	// DumpPrefix returns the table entries whose word starts with prefix
	DumpPrefix(prefix string) []Entry

	// Labels returns the known labels
	Labels() []string

	// Stats returns statistics about the learned table
	Stats() Stats
}

// Learner is anything that can be taught a labeled text
type Learner interface {
	Learn(text, label string)
}

var _ IClassifier = (*Classifier)(nil)

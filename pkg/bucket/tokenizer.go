package bucket

import (
	"regexp"

	"github.com/bastiangx/wordbucket/internal/utils"
	"github.com/kljensen/snowball"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// wordPattern matches runs of word characters (letters, letter numbers, marks,
// decimal digits, connector punctuation, ZWNJ and ZWJ) plus apostrophes and hyphens.
// Other numbers like "²" or "½" separate words.
var wordPattern = regexp.MustCompile(`[\p{L}\p{Nl}\p{M}\p{Nd}\p{Pc}\x{200C}\x{200D}'-]+`)

const stemLanguage = "english"

// Normalize folds text into the form tokens and stopwords are compared in:
// NFC composed, then lower-cased with unicode rules.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	// cases.Caser is stateful and must not be shared between goroutines
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// Tokenizer chops text into word like pieces.
type Tokenizer struct {
	stem bool
}

// NewTokenizer creates a tokenizer, optionally stemming words with the english snowball stemmer.
func NewTokenizer(stem bool) *Tokenizer {
	return &Tokenizer{stem: stem}
}

// Tokenize returns the normalized tokens of text in order of appearance.
// Duplicates are kept. Runs made only of apostrophes or hyphens are dropped,
// so the result never holds an empty string.
func (t *Tokenizer) Tokenize(text string) []string {
	if text == "" {
		return []string{}
	}
	matches := wordPattern.FindAllString(Normalize(text), -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if utils.IsJoinerOnly(m) {
			continue
		}
		tokens = append(tokens, m)
	}
	return tokens
}

// Stem reduces a token to its stem when stemming is on.
// The token comes back unchanged when stemming is off or the stemmer fails.
func (t *Tokenizer) Stem(token string) string {
	if !t.stem {
		return token
	}
	stemmed, err := snowball.Stem(token, stemLanguage, true)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}

// Stemming reports whether the tokenizer stems its tokens.
func (t *Tokenizer) Stemming() bool {
	return t.stem
}

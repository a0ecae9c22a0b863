package utils

import (
	"strings"
	"unicode"
)

// IsJoiner checks if a rune only joins word parts together
// (apostrophes, hyphens, zero width non-joiner and joiner)
func IsJoiner(r rune) bool {
	return r == '\'' || r == '-' || r == '\u200c' || r == '\u200d'
}

// IsJoinerOnly checks if a string is made of joiners and nothing else.
// "--", "'" and "-'-" are joiner-only, "don't" and "-ish" are not.
// Empty strings count as joiner-only so callers can drop both in one check.
func IsJoinerOnly(s string) bool {
	for _, r := range s {
		if !IsJoiner(r) {
			return false
		}
	}
	return true
}

// ContainsWhitespace checks if a string has any unicode space in it
func ContainsWhitespace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}

// IsValidLabel checks if a label can be used as a bucket name from user input.
// Returns false for empty labels, labels with whitespace and labels made only of joiners.
func IsValidLabel(s string) bool {
	if len(s) == 0 {
		return false
	}
	if ContainsWhitespace(s) {
		return false
	}
	return !IsJoinerOnly(s)
}

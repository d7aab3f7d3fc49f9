// Package trigger implements the rule engine that decides whether a news
// item is interesting: phrase matching, the predicate tree, the trigger
// file compiler and the filter pipeline.
package trigger

import (
	"strings"
	"unicode"
)

// Words normalizes text into its lower-case word sequence.
// Punctuation and symbols separate words, so "cat,dog" yields [cat dog].
func Words(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isSeparator)
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// ContainsPhrase reports whether phrase occurs as a contiguous run of
// whole words in text. The phrase must already be normalized with Words.
func ContainsPhrase(text string, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	words := Words(text)
	for i := 0; i+len(phrase) <= len(words); i++ {
		if equalWords(words[i:i+len(phrase)], phrase) {
			return true
		}
	}
	return false
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

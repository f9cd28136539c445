// Package tokenize splits lines of text into word tokens and applies the
// stop-word filter used when folding words into the index.
package tokenize

import (
	"regexp"
	"strings"
)

// separatorRegex matches runs of ASCII non-word characters, the same class as \W+.
var separatorRegex = regexp.MustCompile(`\W+`)

// StopWords are never indexed.
var StopWords = map[string]struct{}{
	"an":  {},
	"is":  {},
	"the": {},
	"a":   {},
	"and": {},
}

// Split breaks a line into raw tokens on runs of non-word characters.
//
// A line that starts with a separator yields a leading empty token, trailing
// empty tokens are dropped, and an empty line yields a single empty token.
// Callers must filter empty tokens themselves (see Accept).
func Split(line string) []string {
	if line == "" {
		return []string{""}
	}

	tokens := separatorRegex.Split(line, -1)

	// Drop trailing empties left behind by a trailing separator
	end := len(tokens)
	for end > 0 && tokens[end-1] == "" {
		end--
	}
	return tokens[:end]
}

// IsStopWord reports whether word is in the stop-word set.
// The check is case-sensitive: "The" is not a stop word, "the" is.
func IsStopWord(word string) bool {
	_, ok := StopWords[word]
	return ok
}

// Accept applies the indexing filter to a raw token. It returns the lower-cased
// word and true when the token is non-empty and not a stop word.
func Accept(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	lower := strings.ToLower(token)
	if IsStopWord(lower) {
		return "", false
	}
	return lower, true
}

// Words splits a line and returns the accepted lower-cased words along with
// the number of raw tokens the line produced (filtered ones included).
func Words(line string) (accepted []string, raw int) {
	tokens := Split(line)
	accepted = make([]string, 0, len(tokens))
	for _, t := range tokens {
		if w, ok := Accept(t); ok {
			accepted = append(accepted, w)
		}
	}
	return accepted, len(tokens)
}

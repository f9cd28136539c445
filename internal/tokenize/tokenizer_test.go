package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_SplitsOnWhitespace(t *testing.T) {
	// Given: text with whitespace
	line := "hello world"

	// When: splitting
	tokens := Split(line)

	// Then: splits into separate tokens
	require.Len(t, tokens, 2)
	assert.Equal(t, "hello", tokens[0])
	assert.Equal(t, "world", tokens[1])
}

func TestSplit_SeparatorRules(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{name: "punctuation runs", input: "foo.bar(baz, qux)", expect: []string{"foo", "bar", "baz", "qux"}},
		{name: "underscore is a word char", input: "snake_case word", expect: []string{"snake_case", "word"}},
		{name: "digits are word chars", input: "route 66", expect: []string{"route", "66"}},
		{name: "leading separator keeps empty token", input: "  indented", expect: []string{"", "indented"}},
		{name: "trailing separator dropped", input: "end.", expect: []string{"end"}},
		{name: "only separators", input: "...", expect: []string{}},
		{name: "empty line", input: "", expect: []string{""}},
		{name: "non-ascii letters separate", input: "naïve", expect: []string{"na", "ve"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Split(tt.input))
		})
	}
}

func TestIsStopWord_CaseSensitive(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("a"))
	assert.False(t, IsStopWord("The"))
	assert.False(t, IsStopWord("computer"))
}

func TestAccept(t *testing.T) {
	tests := []struct {
		token  string
		word   string
		accept bool
	}{
		{token: "Computer", word: "computer", accept: true},
		{token: "THE", accept: false},
		{token: "And", accept: false},
		{token: "", accept: false},
		{token: "Isle", word: "isle", accept: true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			word, ok := Accept(tt.token)
			assert.Equal(t, tt.accept, ok)
			assert.Equal(t, tt.word, word)
		})
	}
}

func TestWords_CountsRawTokens(t *testing.T) {
	// Given: a line with stop words and mixed case
	line := "The Quick fox and THE dog"

	// When: extracting words
	words, raw := Words(line)

	// Then: raw counts every token, accepted drops stop words and lower-cases
	assert.Equal(t, 6, raw)
	assert.Equal(t, []string{"quick", "fox", "dog"}, words)
}

func TestWords_EmptyLineCountsOneRawToken(t *testing.T) {
	words, raw := Words("")

	assert.Empty(t, words)
	assert.Equal(t, 1, raw)
}

// =============================================================================
// Benchmarks
// =============================================================================

func BenchmarkWords(b *testing.B) {
	line := "The computer is a machine, and Computer-Science is the study of it."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Words(line)
	}
}

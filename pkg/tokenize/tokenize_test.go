package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"lowercases", "The Quick BROWN fox", []string{"the", "quick", "brown", "fox"}},
		{"punctuation separates", "graph-theory, (intro)!", []string{"graph", "theory", "intro"}},
		{"apostrophe removed", "don't stop", []string{"dont", "stop"}},
		{"curly apostrophe removed", "it’s fine", []string{"its", "fine"}},
		{"digits kept", "BM25 in 2024", []string{"bm25", "in", "2024"}},
		{"unicode letters", "Über café", []string{"über", "café"}},
		{"only separators", "--- ... !!!", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Split(tt.in))
		})
	}
}

func TestTokenizer_Default(t *testing.T) {
	tok := New()
	assert.Equal(t, []string{"the", "dogs", "are", "running"}, tok.Tokens("The dogs are running"))
}

func TestTokenizer_Stopwords(t *testing.T) {
	tok := New(WithStopwords(true))
	assert.Equal(t, []string{"dogs", "running"}, tok.Tokens("The dogs are running"))
}

func TestTokenizer_Stemming(t *testing.T) {
	tok := New(WithStemming(true))
	assert.Equal(t, []string{"dog", "run"}, tok.Tokens("dogs running"))
}

func TestTokenizer_Term(t *testing.T) {
	tok := New()
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"  Graph! ", "graph", false},
		{"...", "", false},
		{"don't", "dont", false},
		{"graph theory", "", true},
		{"graph-theory", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := tok.Term(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMultipleTerms)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := New(WithStopwords(true)).Term("the graph")
	require.NoError(t, err)
	assert.Equal(t, "graph", got)
}

func TestFrequencies(t *testing.T) {
	tf := Frequencies([]string{"a", "b", "a"})
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, tf)
}

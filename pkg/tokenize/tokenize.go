// Package tokenize turns free text into the lowercase terms shared by the
// search index, the fuzzy matcher and the duplicate detector.
package tokenize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
)

// Tokenizer splits text into normalized terms.
type Tokenizer struct {
	stem      bool
	stopwords bool
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithStemming reduces every term to its English Snowball stem.
func WithStemming(enabled bool) Option {
	return func(t *Tokenizer) {
		t.stem = enabled
	}
}

// WithStopwords drops common English function words.
func WithStopwords(enabled bool) Option {
	return func(t *Tokenizer) {
		t.stopwords = enabled
	}
}

// New creates a tokenizer. With no options it performs plain lowercase
// splitting, which is what the ranker and the matcher expect by default.
func New(opts ...Option) *Tokenizer {
	t := &Tokenizer{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tokens returns the terms of text in order, duplicates included.
func (t *Tokenizer) Tokens(text string) []string {
	raw := Split(text)
	if !t.stem && !t.stopwords {
		return raw
	}
	out := raw[:0]
	for _, tok := range raw {
		if t.stopwords && english.IsStopWord(tok) {
			continue
		}
		if t.stem {
			tok = english.Stem(tok, false)
			if tok == "" {
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

// ErrMultipleTerms is returned by Term for input holding more than one word.
var ErrMultipleTerms = errors.New("more than one term")

// Term normalizes a single query term the same way document text is
// normalized. It returns "" when nothing survives.
func (t *Tokenizer) Term(s string) (string, error) {
	toks := t.Tokens(s)
	switch len(toks) {
	case 0:
		return "", nil
	case 1:
		return toks[0], nil
	}
	return "", fmt.Errorf("%w: %q splits into %s", ErrMultipleTerms, s, strings.Join(toks, ", "))
}

// Split lowercases text and breaks it on every rune that is not a letter
// or a digit. Apostrophes inside a word are dropped so that "don't"
// becomes "dont".
func Split(text string) []string {
	var (
		tokens []string
		b      strings.Builder
	)
	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case isApostrophe(r):
		default:
			flush()
		}
	}
	flush()
	return tokens
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

// Frequencies counts term occurrences.
func Frequencies(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	return tf
}

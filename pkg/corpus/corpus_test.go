package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/panbanda/folio/internal/testutil"
	"github.com/panbanda/folio/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mtime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestParse_FrontMatter(t *testing.T) {
	src := `---
title: Graph Theory
tags: [Graphs, basics, graphs]
date: 2023-02-03
prerequisites: [intro]
references:
  - ./siblings/a
  - ../top.md#section
cites: paper
weights:
  intro: 2.5
---
Body text here.
`
	doc, warnings, err := Parse("notes/graphs.md", "/abs/notes/graphs.md", []byte(src), mtime, ParseOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, "notes/graphs.md", doc.ID)
	assert.Equal(t, "Graph Theory", doc.Title)
	assert.Equal(t, []string{"basics", "graphs"}, doc.Tags)
	assert.Equal(t, time.Date(2023, 2, 3, 0, 0, 0, 0, time.UTC), doc.Timestamp)
	assert.Equal(t, []string{"intro.md", "notes/siblings/a.md", "top.md", "paper.md"}, doc.References)
	assert.Equal(t, map[string]float64{"intro.md": 2.5}, doc.Weights)
	assert.Equal(t, "Body text here.", doc.Body)
	assert.Equal(t, "Graph Theory\nBody text here.", doc.Text)
	assert.Len(t, doc.Hash, 64)
}

func TestParse_NoFrontMatter(t *testing.T) {
	src := "# Sorting Things\n\nSome text with `code` and\n\n```go\nfunc hidden() {}\n```\n"
	doc, _, err := Parse("sorting.md", "", []byte(src), mtime, ParseOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Sorting Things", doc.Title)
	assert.Equal(t, mtime, doc.Timestamp)
	assert.Contains(t, doc.Body, "Some text with code and")
	assert.NotContains(t, doc.Body, "hidden")
	assert.Empty(t, doc.References)
}

func TestParse_TitleFromFilename(t *testing.T) {
	doc, _, err := Parse("deep/graph-theory_notes.md", "", []byte("plain text"), mtime, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Graph Theory Notes", doc.Title)
}

func TestParse_BodyLinks(t *testing.T) {
	src := `See [a](a.md), [b](../b.md#frag), [web](https://example.com/x.md),
[anchor](#top), [image](pic.png), [noext](c) and [[wiki note]] or [[other|Other Label]].
`
	opts := ParseOptions{BodyLinks: true}
	doc, _, err := Parse("dir/doc.md", "", []byte(src), mtime, opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"dir/a.md", "b.md", "dir/c.md", "wiki note.md", "other.md"}, doc.References)
	assert.Contains(t, doc.Body, "Other Label")
	assert.NotContains(t, doc.Body, "[[")
}

func TestParse_BodyLinksDisabled(t *testing.T) {
	doc, _, err := Parse("doc.md", "", []byte("[a](a.md) [[b]]"), mtime, ParseOptions{})
	require.NoError(t, err)
	assert.Empty(t, doc.References)
}

func TestParse_EmptyReferenceKept(t *testing.T) {
	src := "---\nreferences: [\"\", a]\n---\nx\n"
	doc, _, err := Parse("doc.md", "", []byte(src), mtime, ParseOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "a.md"}, doc.References)
}

func TestParse_BadDateWarns(t *testing.T) {
	src := "---\ndate: someday\n---\nx\n"
	doc, warnings, err := Parse("doc.md", "", []byte(src), mtime, ParseOptions{})
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Equal(t, mtime, doc.Timestamp)
}

func TestParse_MalformedFrontMatter(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"invalid yaml", "---\ntitle: [unclosed\n---\nbody\n"},
		{"unterminated", "---\ntitle: x\nbody\n"},
		{"nested tags", "---\ntags:\n  - [a, b]\n---\nbody\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Parse("doc.md", "", []byte(tt.src), mtime, ParseOptions{})
			var fmErr *FrontMatterError
			require.ErrorAs(t, err, &fmErr)
			assert.Equal(t, "doc.md", fmErr.Path)
		})
	}
}

func TestContentHash_IgnoresWhitespaceAndCase(t *testing.T) {
	assert.Equal(t, contentHash("Hello   World\n"), contentHash("hello world"))
	assert.NotEqual(t, contentHash("hello world"), contentHash("hello there"))
}

func TestLoad_SampleCorpus(t *testing.T) {
	root := testutil.Corpus(t)

	c, err := NewLoader(nil).Load(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"graphs.md", "intro.md", "search.md", "toposort.md"}, c.IDs())
	assert.Equal(t, 4, c.Len())

	search, ok := c.Get("search.md")
	require.True(t, ok)
	assert.Equal(t, "Search", search.Title)
	assert.Equal(t, []string{"intro.md", "graphs.md"}, search.References)

	topo, _ := c.Get("toposort.md")
	assert.Equal(t, []string{"graphs.md", "intro.md", "missing.md"}, topo.References)
}

func TestLoad_ShortNames(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFileTree(t, root, map[string]string{
		"index.md":         "---\nreferences: [deep]\n---\nSee [[unique]].\n",
		"topics/deep.md":   "deep",
		"topics/unique.md": "unique",
		"a/dup.md":         "a",
		"b/dup.md":         "b",
		"refers-to-dup.md": "[[dup]]",
	})

	c, err := NewLoader(nil).Load(context.Background(), root)
	require.NoError(t, err)

	index, _ := c.Get("index.md")
	assert.Equal(t, []string{"topics/deep.md", "topics/unique.md"}, index.References)

	ambiguous, _ := c.Get("refers-to-dup.md")
	assert.Equal(t, []string{"dup.md"}, ambiguous.References)
}

func TestLoad_Progress(t *testing.T) {
	root := testutil.Corpus(t)

	var total int
	var ticks int32
	_, err := NewLoader(nil, WithProgress(func(n int) func() {
		total = n
		return func() { atomic.AddInt32(&ticks, 1) }
	})).Load(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 4, total)
	assert.Equal(t, int32(4), atomic.LoadInt32(&ticks))
}

func TestLoad_EmptyCorpus(t *testing.T) {
	c, err := NewLoader(nil).Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestLoad_MissingRoot(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_RootIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a.md")
	testutil.WriteFile(t, file, "x")

	_, err := NewLoader(nil).Load(context.Background(), file)
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
}

func TestLoad_MalformedFrontMatterFails(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFileTree(t, root, map[string]string{
		"good.md": "fine",
		"bad.md":  "---\ntitle: [oops\n---\n",
	})

	_, err := Load(context.Background(), root, config.DefaultConfig())
	var fmErr *FrontMatterError
	require.ErrorAs(t, err, &fmErr)
	assert.Equal(t, "bad.md", fmErr.Path)
}

func TestLoad_UnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read any file")
	}
	root := t.TempDir()
	path := filepath.Join(root, "locked.md")
	testutil.WriteFile(t, path, "secret")
	require.NoError(t, os.Chmod(path, 0))

	_, err := NewLoader(nil).Load(context.Background(), root)
	var readErr *ReadError
	require.ErrorAs(t, err, &readErr)
}

func TestNew_SortsDocuments(t *testing.T) {
	c := New("/r", []*Document{{ID: "b.md"}, {ID: "a.md"}})
	assert.Equal(t, []string{"a.md", "b.md"}, c.IDs())
	_, ok := c.Get("c.md")
	assert.False(t, ok)
}

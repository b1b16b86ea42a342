// Package testutil holds helpers shared by tests that need a corpus on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to a file in the real filesystem.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll(%s) error: %v", dir, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

// ReadFile reads content from a file.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CreateFileTree creates multiple files from a map of path -> content.
func CreateFileTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, name), content)
	}
}

// SampleCorpus is a small knowledge base with a prerequisite chain,
// a citation hub and a dangling reference.
//
//	toposort -> graphs -> intro
//	search -> graphs, search -> intro
//	toposort -> intro, toposort -> missing (dangling)
var SampleCorpus = map[string]string{
	"intro.md": `---
title: Introduction
tags: [basics]
---
Welcome to the knowledge base. The quick brown fox jumps over the lazy dog.
`,
	"graphs.md": `---
title: Graph Theory
tags: [graphs, basics]
prerequisites: [intro]
---
Graphs connect nodes with edges. A directed graph has directed edges.
`,
	"toposort.md": `---
title: Topological Sorting
tags: [graphs]
prerequisites: [graphs]
cites: [intro, missing]
---
Kahn's algorithm orders a directed acyclic graph.
`,
	"search.md": `---
title: Search
prerequisites:
  - intro
---
# Ranking

BM25 ranks documents for a query. The dog barked at the fox.
Links between documents form [a graph](graphs.md#edges).
`,
}

// Corpus writes SampleCorpus into a fresh temp directory and returns it.
func Corpus(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	CreateFileTree(t, root, SampleCorpus)
	return root
}

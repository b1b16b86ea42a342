package tools

import (
	"fmt"

	"github.com/panbanda/folio/internal/output"
	"github.com/panbanda/folio/pkg/analyzer/graph"
)

// Builtin returns a registry holding every analysis tool.
func Builtin() *Registry {
	r := NewRegistry()
	for _, t := range []*Tool{
		searchTool(),
		suggestTool(),
		orderTool(),
		cyclesTool(),
		criticalPathTool(),
		citationsTool(),
		duplicatesTool(),
		graphTool(),
		statsTool(),
	} {
		r.MustRegister(t)
	}
	return r
}

// addGraphIssues reports broken references and build warnings.
func addGraphIssues(res *output.Result, built *graph.BuildResult) {
	for _, br := range built.Broken {
		res.Warn(output.Issue{
			Kind:    output.KindBrokenReference,
			Message: fmt.Sprintf("%s references %s, which is not in the corpus", br.Source, br.Target),
			Source:  br.Source,
			Target:  br.Target,
		})
	}
	for _, w := range built.Warnings {
		res.Warn(output.Issue{Kind: output.KindGraph, Message: w})
	}
}

func cycleIssue(ce *graph.CycleError, what string) output.Issue {
	return output.Issue{
		Kind:    output.KindCycle,
		Message: fmt.Sprintf("%s: %d documents are on or behind a reference cycle", what, len(ce.Nodes)),
		Nodes:   ce.Nodes,
	}
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

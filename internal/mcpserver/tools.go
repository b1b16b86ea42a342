package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/panbanda/folio/internal/output"
)

// CorpusInput is embedded by every tool input.
type CorpusInput struct {
	Root   string `json:"root,omitempty" jsonschema:"Corpus root directory. Defaults to the directory the server was started for."`
	Format string `json:"format,omitempty" jsonschema:"Output format: toon (default), json, or markdown."`
}

type SearchInput struct {
	CorpusInput
	Query          string   `json:"query" jsonschema:"Free-text query."`
	Limit          int      `json:"limit,omitempty" jsonschema:"Maximum number of results. Default 10."`
	K1             *float64 `json:"k1,omitempty" jsonschema:"BM25 term-frequency saturation. Default 1.5."`
	B              *float64 `json:"b,omitempty" jsonschema:"BM25 length normalization between 0 and 1. Default 0.75."`
	Fuzzy          bool     `json:"fuzzy,omitempty" jsonschema:"Expand misspelled query terms to close corpus terms."`
	FuzzyThreshold *int     `json:"fuzzy_threshold,omitempty" jsonschema:"Maximum edit distance for long terms when fuzzy is set. Default 2."`
}

type SuggestInput struct {
	CorpusInput
	Term      string `json:"term" jsonschema:"Term to match against the corpus vocabulary."`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of suggestions. Default 10."`
	Threshold *int   `json:"threshold,omitempty" jsonschema:"Maximum edit distance. Defaults to a length-based policy."`
}

type OrderInput struct {
	CorpusInput
}

type CyclesInput struct {
	CorpusInput
}

type CriticalPathInput struct {
	CorpusInput
	Weight string `json:"weight,omitempty" jsonschema:"Edge weighting: uniform (default) or edge."`
}

type CitationsInput struct {
	CorpusInput
	Top             int  `json:"top,omitempty" jsonschema:"Number of documents to list. Default all."`
	ExcludeIsolated bool `json:"exclude_isolated,omitempty" jsonschema:"Leave unconnected documents out of the impact factor."`
	ExcludeSelf     bool `json:"exclude_self,omitempty" jsonschema:"Ignore self-citations."`
	Pairs           int  `json:"pairs,omitempty" jsonschema:"Number of co-citation and coupling pairs. Default 20."`
}

type DuplicatesInput struct {
	CorpusInput
	Threshold   float64 `json:"threshold,omitempty" jsonschema:"Minimum Jaccard similarity (0-1]. Default 0.8."`
	ShingleSize int     `json:"shingle_size,omitempty" jsonschema:"Words per shingle. Default 3."`
}

type GraphInput struct {
	CorpusInput
	Metrics *bool `json:"metrics,omitempty" jsonschema:"Report per-document metrics (default) instead of edges."`
}

type StatsInput struct {
	CorpusInput
	Top int `json:"top,omitempty" jsonschema:"Number of frequent terms. Default 10."`
}

func (s *Server) registerTools() {
	addTool[SearchInput](s, "search")
	addTool[SuggestInput](s, "suggest")
	addTool[OrderInput](s, "order")
	addTool[CyclesInput](s, "cycles")
	addTool[CriticalPathInput](s, "critical-path")
	addTool[CitationsInput](s, "citations")
	addTool[DuplicatesInput](s, "duplicates")
	addTool[GraphInput](s, "graph")
	addTool[StatsInput](s, "stats")
}

// addTool exposes a registry tool with a typed input. The MCP tool name
// uses underscores since some clients reject dashes.
func addTool[In any](s *Server, name string) {
	t, err := s.registry.Lookup(name)
	if err != nil {
		panic(err)
	}
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        mcpName(name),
		Description: t.Description,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		return s.call(ctx, name, in)
	})
}

func mcpName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// call runs a registry tool. Parameter and corpus problems are returned as
// tool errors so the model sees them.
func (s *Server) call(ctx context.Context, name string, in any) (*mcp.CallToolResult, any, error) {
	params, common, err := splitInput(in)
	if err != nil {
		return toolError(err.Error())
	}
	format, err := parseFormat(common.Format)
	if err != nil {
		return toolError(err.Error())
	}
	if _, err := s.registry.Validate(name, params); err != nil {
		return toolError(err.Error())
	}

	env, err := s.load(ctx, common.Root)
	if err != nil {
		return toolError(err.Error())
	}
	res, err := s.registry.Run(ctx, name, env, params)
	if err != nil {
		return toolError(err.Error())
	}
	s.logger.Debug("mcp tool call", "tool", name, "results", len(res.Rows), "warnings", len(res.Warnings))
	return toolResult(res, format)
}

// splitInput flattens a typed input into tool parameters. Unset optional
// fields are dropped so that tool defaults apply.
func splitInput(in any) (map[string]any, CorpusInput, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, CorpusInput{}, err
	}
	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, CorpusInput{}, err
	}
	var common CorpusInput
	if err := json.Unmarshal(raw, &common); err != nil {
		return nil, CorpusInput{}, err
	}
	delete(params, "root")
	delete(params, "format")
	return params, common, nil
}

func parseFormat(s string) (output.Format, error) {
	switch s {
	case "", "toon":
		return output.FormatTOON, nil
	case "json":
		return output.FormatJSON, nil
	case "markdown", "md":
		return output.FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported format %q: use toon, json or markdown", s)
}

func toolResult(res *output.Result, format output.Format) (*mcp.CallToolResult, any, error) {
	var buf bytes.Buffer
	if err := output.NewFormatter(format, &buf, false).Output(res); err != nil {
		return toolError(err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: buf.String()},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

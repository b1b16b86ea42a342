package mcpserver

import (
	"context"
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
)

//go:embed prompts/*.md
var promptFiles embed.FS

type promptMeta struct {
	Description string   `yaml:"description"`
	Arguments   []string `yaml:"arguments"`
}

type prompt struct {
	name string
	meta promptMeta
	body string
}

// loadPrompts reads the embedded prompt files ordered by name.
func loadPrompts() []prompt {
	entries, err := promptFiles.ReadDir("prompts")
	if err != nil {
		return nil
	}
	var out []prompt
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		data, err := promptFiles.ReadFile(path.Join("prompts", e.Name()))
		if err != nil {
			continue
		}
		meta, body := splitPrompt(string(data))
		out = append(out, prompt{name: strings.TrimSuffix(e.Name(), ".md"), meta: meta, body: body})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// splitPrompt separates the YAML header from the prompt text. A file
// without a valid header is all body.
func splitPrompt(content string) (promptMeta, string) {
	rest, ok := strings.CutPrefix(content, "---\n")
	if !ok {
		return promptMeta{}, content
	}
	header, body, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		return promptMeta{}, content
	}
	var meta promptMeta
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return promptMeta{}, content
	}
	return meta, strings.TrimLeft(body, "\n")
}

func (s *Server) registerPrompts() {
	for _, p := range loadPrompts() {
		args := make([]*mcp.PromptArgument, len(p.meta.Arguments))
		for i, a := range p.meta.Arguments {
			args[i] = &mcp.PromptArgument{Name: a, Required: true}
		}
		s.server.AddPrompt(&mcp.Prompt{
			Name:        p.name,
			Description: p.meta.Description,
			Arguments:   args,
		}, promptHandler(p))
	}
}

// promptHandler substitutes {{name}} placeholders with the caller's
// arguments.
func promptHandler(p prompt) mcp.PromptHandler {
	return func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text := p.body
		for k, v := range req.Params.Arguments {
			text = strings.ReplaceAll(text, "{{"+k+"}}", v)
		}
		return &mcp.GetPromptResult{
			Description: p.meta.Description,
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: text}},
			},
		}, nil
	}
}

// Package tools holds the registry of analysis tools that the CLI, watch
// mode and the MCP server all dispatch through.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panbanda/folio/internal/output"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Handler runs a tool against a loaded corpus.
type Handler func(ctx context.Context, env *Env, p Params) (*output.Result, error)

// Tool is a named analysis with declared parameters.
type Tool struct {
	Name string
	// Summary is a one-line description for listings.
	Summary string
	// Description is the long form used by MCP clients.
	Description string
	Params      []Param
	Handler     Handler

	schema *jsonschema.Schema
}

// Registry maps tool names to tools.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register compiles the tool's parameter schema and adds it.
func (r *Registry) Register(t *Tool) error {
	if t.Name == "" || t.Handler == nil {
		return errors.New("tool needs a name and a handler")
	}
	sch, err := compileSchema(t)
	if err != nil {
		return fmt.Errorf("compiling schema for %s: %w", t.Name, err)
	}
	t.schema = sch

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.tools[t.Name]; dup {
		return fmt.Errorf("tool %s already registered", t.Name)
	}
	r.tools[t.Name] = t
	return nil
}

// MustRegister is Register for static tool tables.
func (r *Registry) MustRegister(t *Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

func compileSchema(t *Tool) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(t.Schema())
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	url := "https://folio.dev/schema/tools/" + t.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (*Tool, error) {
	r.mu.RLock()
	t, ok := r.tools[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownToolError{Name: name, Known: r.Names()}
	}
	return t, nil
}

// Names returns registered tool names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Tools returns every registered tool ordered by name.
func (r *Registry) Tools() []*Tool {
	names := r.Names()
	out := make([]*Tool, 0, len(names))
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, n := range names {
		out = append(out, r.tools[n])
	}
	return out
}

// Validate checks params against the tool's schema and returns them with
// numbers converted to the declared types. Nothing is computed.
func (r *Registry) Validate(name string, params map[string]any) (Params, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = map[string]any{}
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return nil, &ParamError{Tool: name, Reason: err.Error()}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var inst map[string]any
	if err := dec.Decode(&inst); err != nil {
		return nil, &ParamError{Tool: name, Reason: err.Error()}
	}

	if err := t.schema.Validate(inst); err != nil {
		return nil, paramErrorFrom(name, err)
	}
	return t.normalize(inst)
}

// paramErrorFrom reduces a schema validation failure to the first offending
// parameter.
func paramErrorFrom(tool string, err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ParamError{Tool: tool, Reason: err.Error()}
	}
	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	pe := &ParamError{Tool: tool}
	if len(leaf.InstanceLocation) > 0 {
		pe.Param = leaf.InstanceLocation[0]
	}
	switch k := leaf.ErrorKind.(type) {
	case *kind.Required:
		if len(k.Missing) > 0 {
			pe.Param = k.Missing[0]
		}
		pe.Reason = "is required"
		return pe
	case *kind.AdditionalProperties:
		if len(k.Properties) > 0 {
			pe.Param = k.Properties[0]
		}
		pe.Reason = "is not a parameter of this tool"
		return pe
	}
	pe.Reason = leaf.ErrorKind.LocalizedString(message.NewPrinter(language.English))
	return pe
}

// Run validates params, runs the tool and stamps the result metadata.
// Corpus warnings are carried into the result.
func (r *Registry) Run(ctx context.Context, name string, env *Env, params map[string]any) (*output.Result, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	p, err := r.Validate(name, params)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := t.Handler(ctx, env, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	for _, w := range env.Corpus.Warnings {
		res.Warn(output.Issue{Kind: output.KindCorpus, Message: w})
	}
	res.Metadata = output.Metadata{
		Tool:        name,
		ToolVersion: env.Version,
		CorpusRoot:  env.Corpus.Root,
		CorpusSize:  env.Corpus.Len(),
		Timestamp:   env.now().UTC().Format(time.RFC3339),
		Parameters:  map[string]any(p),
	}
	env.logger().Debug("tool finished", "tool", name, "params", p, "duration", time.Since(start))
	return res, nil
}

package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParamType is a JSON Schema primitive type.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
)

// Param declares one tool parameter. The tool's JSON Schema is generated
// from its Params.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
	Enum        []string
	Minimum     *float64
	Maximum     *float64
	// ExclusiveMinimum makes Minimum a strict lower bound.
	ExclusiveMinimum bool
	MinLength        int
}

func bound(v float64) *float64 { return &v }

func (p Param) schema() map[string]any {
	s := map[string]any{"type": string(p.Type)}
	if p.Description != "" {
		s["description"] = p.Description
	}
	if p.Default != nil {
		s["default"] = p.Default
	}
	if len(p.Enum) > 0 {
		s["enum"] = p.Enum
	}
	if p.Minimum != nil {
		if p.ExclusiveMinimum {
			s["exclusiveMinimum"] = *p.Minimum
		} else {
			s["minimum"] = *p.Minimum
		}
	}
	if p.Maximum != nil {
		s["maximum"] = *p.Maximum
	}
	if p.MinLength > 0 {
		s["minLength"] = p.MinLength
	}
	return s
}

// Schema returns the JSON Schema document for the tool's parameters.
// Unknown parameters are rejected.
func (t *Tool) Schema() map[string]any {
	props := make(map[string]any, len(t.Params))
	required := []string{}
	for _, p := range t.Params {
		props[p.Name] = p.schema()
		if p.Required {
			required = append(required, p.Name)
		}
	}
	s := map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func (t *Tool) param(name string) (Param, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// ParseArgs converts key=value strings from the command line into typed
// values according to the tool's parameter types. Undeclared keys are kept
// as strings so that validation reports them.
func (t *Tool) ParseArgs(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, &ParamError{Tool: t.Name, Param: key, Reason: fmt.Sprintf("expected key=value, got %q", arg)}
		}
		v, err := t.convert(key, value)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

func (t *Tool) convert(key, value string) (any, error) {
	p, ok := t.param(key)
	if !ok {
		return value, nil
	}
	switch p.Type {
	case TypeInteger:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, &ParamError{Tool: t.Name, Param: key, Reason: fmt.Sprintf("%q is not an integer", value)}
		}
		return n, nil
	case TypeNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &ParamError{Tool: t.Name, Param: key, Reason: fmt.Sprintf("%q is not a number", value)}
		}
		return f, nil
	case TypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, &ParamError{Tool: t.Name, Param: key, Reason: fmt.Sprintf("%q is not a boolean", value)}
		}
		return b, nil
	default:
		return value, nil
	}
}

// normalize converts decoded JSON numbers to int64 or float64 according to
// the declared parameter type. Integers outside the int64 range are rejected.
func (t *Tool) normalize(values map[string]any) (Params, error) {
	out := make(Params, len(values))
	for k, v := range values {
		n, isNum := v.(json.Number)
		if !isNum {
			out[k] = v
			continue
		}
		p, _ := t.param(k)
		f, _ := strconv.ParseFloat(n.String(), 64)
		if p.Type != TypeInteger {
			out[k] = f
			continue
		}
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			// Exponent forms such as 1e3 are integers to the schema.
			if f < -maxExactInt || f > maxExactInt {
				return nil, &ParamError{Tool: t.Name, Param: k, Reason: fmt.Sprintf("%s is out of range", n)}
			}
			i = int64(f)
		}
		out[k] = i
	}
	return out, nil
}

// maxExactInt is the largest magnitude a float64 holds without losing
// integer precision.
const maxExactInt = 1 << 53

// Params are validated tool parameters. Getters fall back to def when a
// parameter was not supplied.
type Params map[string]any

// Has reports whether name was supplied.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

func (p Params) String(name, def string) string {
	if s, ok := p[name].(string); ok {
		return s
	}
	return def
}

func (p Params) Int(name string, def int) int {
	switch v := p[name].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

func (p Params) Float(name string, def float64) float64 {
	switch v := p[name].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return def
}

func (p Params) Bool(name string, def bool) bool {
	if b, ok := p[name].(bool); ok {
		return b
	}
	return def
}

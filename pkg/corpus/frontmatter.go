package corpus

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var errUnterminated = errors.New("front matter block is not closed")

// frontMatter is the YAML metadata block at the top of a document.
// Unknown keys are ignored.
type frontMatter struct {
	Title         string             `yaml:"title"`
	Tags          stringList         `yaml:"tags"`
	Date          string             `yaml:"date"`
	Updated       string             `yaml:"updated"`
	Prerequisites stringList         `yaml:"prerequisites"`
	References    stringList         `yaml:"references"`
	Cites         stringList         `yaml:"cites"`
	Weights       map[string]float64 `yaml:"weights"`
}

// stringList accepts either a single scalar or a sequence of scalars.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.ShortTag() == "!!null" {
			*l = nil
			return nil
		}
		*l = stringList{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make(stringList, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: expected a string, got a nested value", item.Line)
			}
			if item.ShortTag() == "!!null" {
				out = append(out, "")
				continue
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a string or a list of strings", value.Line)
	}
}

// splitFrontMatter separates a leading "---" delimited block from the body.
// ok is false when the document has no front matter.
func splitFrontMatter(data []byte) (meta, body []byte, ok bool, err error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	first, rest, found := cutLine(data)
	if !found || strings.TrimRight(string(first), " \t\r") != "---" {
		return nil, data, false, nil
	}

	offset := 0
	for {
		line, next, more := cutLine(rest[offset:])
		trimmed := strings.TrimRight(string(line), " \t\r")
		if trimmed == "---" || trimmed == "..." {
			end := offset + len(line)
			if more {
				end++
			}
			return rest[:offset], rest[end:], true, nil
		}
		if !more {
			return nil, nil, true, errUnterminated
		}
		offset = len(rest) - len(next)
	}
}

func cutLine(b []byte) (line, rest []byte, more bool) {
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		return b[:i], b[i+1:], true
	}
	return b, nil, false
}

func parseFrontMatter(meta []byte) (*frontMatter, error) {
	fm := &frontMatter{}
	if len(bytes.TrimSpace(meta)) == 0 {
		return fm, nil
	}
	if err := yaml.Unmarshal(meta, fm); err != nil {
		return nil, err
	}
	return fm, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

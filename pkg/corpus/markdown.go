package corpus

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// wikiLink matches [[target]] and [[target|label]].
var wikiLink = regexp.MustCompile(`\[\[([^\[\]|]+)(?:\|([^\[\]]+))?\]\]`)

// markdownContent is what the loader needs from a Markdown body.
type markdownContent struct {
	heading string   // first level-1 heading
	text    string   // plain text, code blocks dropped
	links   []string // destinations of inline links, in order
	wiki    []string // wiki link targets, in order
}

var md = goldmark.New()

func parseMarkdown(source []byte) markdownContent {
	var (
		out markdownContent
		b   strings.Builder
	)

	root := md.Parser().Parse(text.NewReader(source))
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			if entering && node.Level == 1 && out.heading == "" {
				out.heading = strings.TrimSpace(inlineText(node, source))
			}
			if !entering {
				b.WriteByte('\n')
			}
		case *ast.Paragraph, *ast.TextBlock, *ast.ListItem, *ast.Blockquote:
			if !entering {
				b.WriteByte('\n')
			}
		case *ast.Link:
			if entering {
				out.links = append(out.links, string(node.Destination))
			}
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		}
		return ast.WalkContinue, nil
	})

	plain := b.String()
	for _, m := range wikiLink.FindAllStringSubmatch(plain, -1) {
		out.wiki = append(out.wiki, strings.TrimSpace(m[1]))
	}
	out.text = strings.TrimSpace(wikiLink.ReplaceAllStringFunc(plain, func(s string) string {
		m := wikiLink.FindStringSubmatch(s)
		if m[2] != "" {
			return m[2]
		}
		return m[1]
	}))
	return out
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

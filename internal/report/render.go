// Package report renders a tool result as a standalone HTML page.
package report

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/panbanda/folio/internal/output"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed template.html
var templateFS embed.FS

// Renderer handles HTML report generation.
type Renderer struct {
	tmpl *template.Template
	now  func() time.Time
}

// NewRenderer creates a renderer with the embedded template.
func NewRenderer() (*Renderer, error) {
	funcMap := template.FuncMap{
		"title": func(s string) string {
			return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
		},
		"truncate": func(s string, n int) string {
			if len([]rune(s)) > n {
				return string([]rune(s)[:n]) + "..."
			}
			return s
		},
		"json": func(v any) template.JS {
			b, _ := json.Marshal(v)
			return template.JS(b)
		},
		"num": func(n any) string {
			p := message.NewPrinter(language.English)
			switch v := n.(type) {
			case int:
				return p.Sprintf("%d", v)
			case int64:
				return p.Sprintf("%d", v)
			case float64:
				if v == float64(int64(v)) && v < 1e15 && v > -1e15 {
					return p.Sprintf("%d", int64(v))
				}
				return output.FormatFloat(v)
			default:
				return output.FormatValue(v)
			}
		},
		"issueClass": func(kind string) string {
			switch kind {
			case output.KindCycle, output.KindInvalidWeight:
				return "danger"
			case output.KindBrokenReference:
				return "warning"
			default:
				return "info"
			}
		},
	}

	tmplContent, err := templateFS.ReadFile("template.html")
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New("report").Funcs(funcMap).Parse(string(tmplContent))
	if err != nil {
		return nil, err
	}

	return &Renderer{tmpl: tmpl, now: time.Now}, nil
}

// Render writes r as HTML.
func (rd *Renderer) Render(w io.Writer, r *output.Result) error {
	return rd.tmpl.Execute(w, NewPage(r, rd.now().UTC()))
}

// document pairs a result with the renderer so it satisfies
// output.HTMLRenderer.
type document struct {
	*output.Result
	renderer *Renderer
}

func (d document) RenderHTML(w io.Writer) error {
	return d.renderer.Render(w, d.Result)
}

// Wrap returns r in a form the output formatter can render as HTML.
func Wrap(r *output.Result) (output.Renderable, error) {
	rd, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	return document{Result: r, renderer: rd}, nil
}

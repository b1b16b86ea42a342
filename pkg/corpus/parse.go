package corpus

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// ParseOptions controls how a single document is read.
type ParseOptions struct {
	// BodyLinks adds relative Markdown links and wiki links to References.
	BodyLinks bool
	// IsDocument reports whether a link target with an extension is a
	// corpus document. Nil accepts only ".md".
	IsDocument func(name string) bool
}

// Parse builds a Document from raw file content. id is the corpus-relative
// identifier, modTime the fallback timestamp. Problems that do not prevent
// loading are returned as warnings.
func Parse(id, absPath string, data []byte, modTime time.Time, opts ParseOptions) (*Document, []string, error) {
	meta, body, hasMeta, err := splitFrontMatter(data)
	if err != nil {
		return nil, nil, &FrontMatterError{Path: id, Err: err}
	}

	fm := &frontMatter{}
	if hasMeta {
		fm, err = parseFrontMatter(meta)
		if err != nil {
			return nil, nil, &FrontMatterError{Path: id, Err: err}
		}
	}

	isDoc := opts.IsDocument
	if isDoc == nil {
		isDoc = func(name string) bool { return strings.EqualFold(path.Ext(name), defaultExt) }
	}

	content := parseMarkdown(body)
	doc := &Document{
		ID:        id,
		Path:      absPath,
		Body:      content.text,
		Tags:      normalizeTags(fm.Tags),
		Timestamp: modTime,
		Hash:      contentHash(content.text),
	}

	var warnings []string

	switch {
	case strings.TrimSpace(fm.Title) != "":
		doc.Title = strings.TrimSpace(fm.Title)
		doc.Text = doc.Title + "\n" + doc.Body
	case content.heading != "":
		doc.Title = content.heading
		doc.Text = doc.Body
	default:
		doc.Title = titleFromFilename(id)
		doc.Text = doc.Body
	}

	for _, raw := range []string{fm.Updated, fm.Date} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		ts, err := parseDate(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, using file modification time", id, err))
			continue
		}
		doc.Timestamp = ts
		break
	}

	for _, group := range [][]string{fm.Prerequisites, fm.References, fm.Cites} {
		for _, ref := range group {
			doc.References = append(doc.References, resolveMeta(id, ref))
		}
	}
	if opts.BodyLinks {
		for _, dest := range content.links {
			if ref, ok := resolveLink(id, dest, isDoc); ok {
				doc.References = append(doc.References, ref)
			}
		}
		for _, target := range content.wiki {
			doc.References = append(doc.References, resolveWiki(target))
		}
	}

	if len(fm.Weights) > 0 {
		doc.Weights = make(map[string]float64, len(fm.Weights))
		for ref, w := range fm.Weights {
			if key := resolveMeta(id, ref); key != "" {
				doc.Weights[key] = w
			}
		}
	}

	return doc, warnings, nil
}

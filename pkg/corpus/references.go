package corpus

import (
	"net/url"
	"path"
	"strings"
)

const defaultExt = ".md"

// resolveMeta normalizes a reference listed in front matter. References are
// corpus-relative unless they start with "./" or "../". Empty references
// are returned as "" so the graph builder can report them.
func resolveMeta(docID, ref string) string {
	ref = strings.TrimSpace(ref)
	ref = stripFragment(ref)
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") {
		ref = path.Join(path.Dir(docID), ref)
	}
	return normalizeID(ref)
}

// resolveLink normalizes a Markdown link destination found in the body.
// ok is false for external URLs, pure anchors and links to files that are
// not documents.
func resolveLink(docID, dest string, isDocument func(string) bool) (string, bool) {
	dest = strings.TrimSpace(dest)
	if dest == "" || strings.HasPrefix(dest, "#") {
		return "", false
	}
	if u, err := url.Parse(dest); err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	dest = stripFragment(dest)
	if unescaped, err := url.PathUnescape(dest); err == nil {
		dest = unescaped
	}
	if dest == "" {
		return "", false
	}

	if ext := path.Ext(dest); ext != "" && !isDocument(dest) {
		return "", false
	}
	if strings.HasPrefix(dest, "/") {
		return normalizeID(dest), true
	}
	return normalizeID(path.Join(path.Dir(docID), dest)), true
}

// resolveWiki normalizes a [[wiki link]] target. Targets are corpus-relative.
func resolveWiki(target string) string {
	target = stripFragment(strings.TrimSpace(target))
	if target == "" {
		return ""
	}
	return normalizeID(target)
}

func stripFragment(s string) string {
	if i := strings.IndexAny(s, "#?"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func normalizeID(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	s = path.Clean("/" + s)[1:]
	if s == "" {
		return ""
	}
	if path.Ext(s) == "" {
		s += defaultExt
	}
	return s
}

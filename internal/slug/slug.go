// Package slug derives the routing key of a document from its source path.
package slug

import (
	"path"
	"strconv"
	"strings"
)

// Extensions lists the file extensions treated as Markdown documents.
var Extensions = []string{".md", ".mdx"}

// IsMarkdown reports whether p has a Markdown extension.
func IsMarkdown(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Relative strips the documents root from p. Paths outside the root are
// returned unchanged.
func Relative(p, docsRoot string) string {
	p = strings.TrimPrefix(p, "/")
	root := strings.Trim(docsRoot, "/")
	if root == "" {
		return p
	}
	return strings.TrimPrefix(p, root+"/")
}

// Generate returns the slug of the document at p.
//
// With a position the slug is the directory segments joined by "-", then the
// position, then the file stem ("guide-1-intro"; "1-intro" at the root).
// Without a position it is the relative path with the extension removed and
// "/" replaced by "-" ("api-reference"). Collisions are not detected.
func Generate(p, docsRoot string, position *int) string {
	rel := Relative(p, docsRoot)
	stem := strings.TrimSuffix(rel, path.Ext(rel))

	if position == nil {
		return strings.ReplaceAll(stem, "/", "-")
	}

	dir, name := path.Split(stem)
	parts := make([]string, 0, 3)
	if dir = strings.Trim(dir, "/"); dir != "" {
		parts = append(parts, strings.ReplaceAll(dir, "/", "-"))
	}
	parts = append(parts, strconv.Itoa(*position), name)
	return strings.Join(parts, "-")
}

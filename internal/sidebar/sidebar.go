// Package sidebar builds the hierarchical navigation tree of a documentation corpus.
package sidebar

import (
	"cmp"
	"path"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// Humanize turns a file or directory name into a display label: underscores
// and hyphens become spaces and each word is capitalized.
func Humanize(name string) string {
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return titleCaser.String(strings.Join(strings.Fields(name), " "))
}

// DocLabel returns the sidebar label of a document: sidebar_label, else the
// title, else the humanized file name.
func DocLabel(doc docmodel.Document) string {
	if l := strings.TrimSpace(doc.Metadata.SidebarLabel); l != "" {
		return l
	}
	if t := strings.TrimSpace(doc.Metadata.Title); t != "" {
		return t
	}
	base := path.Base(doc.Path)
	return Humanize(strings.TrimSuffix(base, path.Ext(base)))
}

type node struct {
	item     docmodel.SidebarNode
	children []*node
}

// Build assembles the navigation tree. dirs and the document paths are
// source-relative paths under docsRoot. Every directory below the root
// becomes a category; a node whose parent directory is unknown is attached
// to the top level. Children are sorted recursively with Sort.
func Build(docsRoot string, dirs []string, docs []docmodel.Document) []docmodel.SidebarNode {
	root := strings.Trim(docsRoot, "/")
	top := &node{}
	index := make(map[string]*node, len(dirs))

	parentOf := func(p string) *node {
		if n, ok := index[path.Dir(p)]; ok {
			return n
		}
		return top
	}

	sorted := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = strings.Trim(d, "/")
		if d == "" || d == root || !underRoot(d, root) {
			continue
		}
		sorted = append(sorted, d)
	}
	sort.Strings(sorted)
	sorted = slices.Compact(sorted)

	// Parents sort before their children, so one pass resolves every parent.
	for _, d := range sorted {
		n := &node{item: docmodel.SidebarNode{
			Kind:  docmodel.KindCategory,
			Label: Humanize(path.Base(d)),
			Path:  d,
		}}
		index[d] = n
		parent := parentOf(d)
		parent.children = append(parent.children, n)
	}

	for _, doc := range docs {
		n := &node{item: docmodel.SidebarNode{
			Kind:     docmodel.KindDoc,
			Label:    DocLabel(doc),
			Slug:     doc.Slug,
			Path:     doc.Path,
			Position: doc.Metadata.SidebarPosition,
		}}
		parent := parentOf(doc.Path)
		parent.children = append(parent.children, n)
	}

	return materialize(top.children)
}

func materialize(nodes []*node) []docmodel.SidebarNode {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]docmodel.SidebarNode, 0, len(nodes))
	for _, n := range nodes {
		item := n.item
		item.Items = materialize(n.children)
		out = append(out, item)
	}
	Sort(out)
	return out
}

func underRoot(p, root string) bool {
	return root == "" || strings.HasPrefix(p, root+"/")
}

// Sort orders siblings in place and recursively: positioned nodes first in
// ascending position, then unpositioned nodes by case-insensitive label,
// case-sensitive label and finally path. The order is total and stable.
func Sort(nodes []docmodel.SidebarNode) {
	slices.SortStableFunc(nodes, Compare)
	for i := range nodes {
		if len(nodes[i].Items) > 0 {
			Sort(nodes[i].Items)
		}
	}
}

// Compare is the sibling ordering used by Sort.
func Compare(a, b docmodel.SidebarNode) int {
	switch {
	case a.Position != nil && b.Position == nil:
		return -1
	case a.Position == nil && b.Position != nil:
		return 1
	case a.Position != nil && b.Position != nil:
		if c := cmp.Compare(*a.Position, *b.Position); c != 0 {
			return c
		}
	}
	if c := cmp.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Label, b.Label); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}

// Package source defines where raw Markdown comes from.
//
// A Source lists document paths and directories below the documents root and
// returns raw file bytes. Paths are source-relative with forward slashes and
// include the documents root ("docs/guide/intro.md"). A Source that can also
// serve an already rendered corpus implements Precomputed; the indexer checks
// for that capability once, when it is constructed.
package source

import (
	"context"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

// ErrNotFound reports that a path or slug does not exist in the source.
var ErrNotFound = errors.NotFoundError("not found in source").Build()

// Source provides raw Markdown files.
type Source interface {
	// ListDocumentPaths returns every Markdown file below the documents root.
	ListDocumentPaths(ctx context.Context) ([]string, error)
	// ListDirectories returns every directory below the documents root.
	ListDirectories(ctx context.Context) ([]string, error)
	// GetRawContent returns the bytes of one file. Missing files yield ErrNotFound.
	GetRawContent(ctx context.Context, p string) ([]byte, error)
	// Name identifies the source kind in logs and pass records.
	Name() string
}

// Precomputed is implemented by sources that serve a rendered snapshot.
// Their data is authoritative: no Markdown is parsed.
type Precomputed interface {
	PrecomputedIndex(ctx context.Context) ([]docmodel.IndexEntry, error)
	PrecomputedSidebar(ctx context.Context) ([]docmodel.SidebarNode, error)
	// PrecomputedDocument returns ErrNotFound for an unknown slug.
	PrecomputedDocument(ctx context.Context, slug string) (docmodel.Document, error)
	PrecomputedMetadata(ctx context.Context) (docmodel.SnapshotInfo, error)
}

// Entry is one item of a repository listing.
type Entry struct {
	Path  string
	IsDir bool
}

// Filter keeps Markdown files and directories strictly below docsRoot and
// returns both lists sorted. An empty docsRoot keeps everything.
func Filter(entries []Entry, docsRoot string) (docs, dirs []string) {
	root := strings.Trim(docsRoot, "/")
	for _, e := range entries {
		p := strings.Trim(path.Clean("/"+e.Path), "/")
		if p == "" || p == root || !Under(p, root) {
			continue
		}
		switch {
		case e.IsDir:
			dirs = append(dirs, p)
		case slug.IsMarkdown(p):
			docs = append(docs, p)
		}
	}
	sort.Strings(docs)
	sort.Strings(dirs)
	return docs, dirs
}

// Under reports whether p lies below root.
func Under(p, root string) bool {
	root = strings.Trim(root, "/")
	return root == "" || strings.HasPrefix(p, root+"/")
}

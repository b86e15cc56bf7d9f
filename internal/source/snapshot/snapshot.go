// Package snapshot serves a pre-rendered corpus. It implements both
// source.Source and source.Precomputed; no Markdown is parsed.
package snapshot

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"time"

	"git.home.luguber.info/inful/docsite/internal/cache"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/snapshot"
	"git.home.luguber.info/inful/docsite/internal/source"
)

// Source reads snapshot files from a Store through a cache.
type Source struct {
	store    Store
	fetcher  *cache.Fetcher
	ttl      time.Duration
	docsRoot string
}

var (
	_ source.Source      = (*Source)(nil)
	_ source.Precomputed = (*Source)(nil)
)

// New returns a snapshot source. docsRoot scopes the directory listing.
func New(store Store, fetcher *cache.Fetcher, ttl time.Duration, docsRoot string) *Source {
	return &Source{store: store, fetcher: fetcher, ttl: ttl, docsRoot: docsRoot}
}

// Key is the cache key of a snapshot file in the given store location.
func Key(location, name string) string {
	return cache.PrefixSnapshot + location + "/" + name
}

func (s *Source) Name() string { return string(config.SourcePreRendered) }

func (s *Source) read(ctx context.Context, name string) ([]byte, error) {
	return s.fetcher.Fetch(ctx, Key(s.store.Location(), name), s.ttl, func(ctx context.Context) ([]byte, error) {
		return s.store.Read(ctx, name)
	})
}

func (s *Source) readJSON(ctx context.Context, name string, v any) error {
	data, err := s.read(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.SnapshotError("malformed snapshot file").WithCause(err).WithContext("file", name).Build()
	}
	return nil
}

func (s *Source) PrecomputedIndex(ctx context.Context) ([]docmodel.IndexEntry, error) {
	var entries []docmodel.IndexEntry
	if err := s.readJSON(ctx, snapshot.IndexFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Source) PrecomputedSidebar(ctx context.Context) ([]docmodel.SidebarNode, error) {
	var nodes []docmodel.SidebarNode
	if err := s.readJSON(ctx, snapshot.SidebarFile, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *Source) PrecomputedDocument(ctx context.Context, docSlug string) (docmodel.Document, error) {
	data, err := s.read(ctx, snapshot.DocFile(docSlug))
	if err != nil {
		return docmodel.Document{}, err
	}
	doc, err := snapshot.DecodeDocument(data)
	if err != nil {
		return docmodel.Document{}, errors.SnapshotError("malformed document payload").
			WithCause(err).WithContext("slug", docSlug).Build()
	}
	return doc, nil
}

func (s *Source) PrecomputedMetadata(ctx context.Context) (docmodel.SnapshotInfo, error) {
	var info docmodel.SnapshotInfo
	err := s.readJSON(ctx, snapshot.MetadataFile, &info)
	return info, err
}

func (s *Source) ListDocumentPaths(ctx context.Context) ([]string, error) {
	entries, err := s.PrecomputedIndex(ctx)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, e.Path)
	}
	sort.Strings(paths)
	return paths, nil
}

// ListDirectories derives directories from the indexed document paths.
func (s *Source) ListDirectories(ctx context.Context) ([]string, error) {
	paths, err := s.ListDocumentPaths(ctx)
	if err != nil {
		return nil, err
	}
	var entries []source.Entry
	seen := map[string]bool{}
	for _, p := range paths {
		for d := path.Dir(p); d != "." && d != "/" && !seen[d]; d = path.Dir(d) {
			seen[d] = true
			entries = append(entries, source.Entry{Path: d, IsDir: true})
		}
	}
	_, dirs := source.Filter(entries, s.docsRoot)
	return dirs, nil
}

// GetRawContent returns the front-matter-free Markdown stored with the
// document at p.
func (s *Source) GetRawContent(ctx context.Context, p string) ([]byte, error) {
	entries, err := s.PrecomputedIndex(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.Path == p {
			doc, err := s.PrecomputedDocument(ctx, e.Slug)
			if err != nil {
				return nil, err
			}
			return []byte(doc.RawMarkdown), nil
		}
	}
	return nil, source.ErrNotFound
}

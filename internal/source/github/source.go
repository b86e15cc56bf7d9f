// Package github serves documents from a GitHub repository through the REST
// API: one recursive tree listing per branch and one contents call per file.
// Responses are cached through a cache.Fetcher.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"git.home.luguber.info/inful/docsite/internal/cache"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/source"
)

// Options configures a Source.
type Options struct {
	Owner    string
	Repo     string
	Branch   string
	DocsPath string
	Fetcher  *cache.Fetcher
	TreeTTL  time.Duration
	RawTTL   time.Duration
}

// Source is the live GitHub API source.
type Source struct {
	client *Client
	opts   Options
}

var _ source.Source = (*Source)(nil)

// New returns a Source reading through client.
func New(client *Client, opts Options) *Source {
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	return &Source{client: client, opts: opts}
}

// TreeKey is the cache key of the tree listing for a repository branch.
func TreeKey(owner, repo, branch string) string {
	return fmt.Sprintf("%s%s/%s@%s", cache.PrefixTree, owner, repo, branch)
}

// RawKey is the cache key of a document's raw content.
func RawKey(p string) string {
	return cache.PrefixRaw + p
}

func (s *Source) Name() string { return string(config.SourceGitHubAPI) }

func (s *Source) tree(ctx context.Context) ([]source.Entry, error) {
	key := TreeKey(s.opts.Owner, s.opts.Repo, s.opts.Branch)
	data, err := s.opts.Fetcher.Fetch(ctx, key, s.opts.TreeTTL, func(ctx context.Context) ([]byte, error) {
		entries, err := s.client.GetTree(ctx, s.opts.Owner, s.opts.Repo, s.opts.Branch)
		if err != nil {
			return nil, err
		}
		return json.Marshal(entries)
	})
	if err != nil {
		return nil, err
	}
	var entries []source.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode cached tree: %w", err)
	}
	return entries, nil
}

func (s *Source) ListDocumentPaths(ctx context.Context) ([]string, error) {
	entries, err := s.tree(ctx)
	if err != nil {
		return nil, err
	}
	docs, _ := source.Filter(entries, s.opts.DocsPath)
	return docs, nil
}

func (s *Source) ListDirectories(ctx context.Context) ([]string, error) {
	entries, err := s.tree(ctx)
	if err != nil {
		return nil, err
	}
	_, dirs := source.Filter(entries, s.opts.DocsPath)
	return dirs, nil
}

func (s *Source) GetRawContent(ctx context.Context, p string) ([]byte, error) {
	return s.opts.Fetcher.Fetch(ctx, RawKey(p), s.opts.RawTTL, func(ctx context.Context) ([]byte, error) {
		return s.client.GetContents(ctx, s.opts.Owner, s.opts.Repo, p, s.opts.Branch)
	})
}

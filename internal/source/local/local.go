// Package local serves documents from a directory on disk.
package local

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/source"
)

// Source walks Dir on every listing. Paths are relative to Dir.
type Source struct {
	Dir      string
	DocsPath string
}

var _ source.Source = (*Source)(nil)

// New returns a source rooted at dir.
func New(dir, docsPath string) *Source {
	return &Source{Dir: dir, DocsPath: docsPath}
}

func (s *Source) Name() string { return string(config.SourceLocal) }

// DocsDir is the absolute-or-relative filesystem path of the documents root.
func (s *Source) DocsDir() string {
	return filepath.Join(s.Dir, filepath.FromSlash(strings.Trim(s.DocsPath, "/")))
}

func (s *Source) entries(ctx context.Context) ([]source.Entry, error) {
	var out []source.Entry
	err := filepath.WalkDir(s.DocsDir(), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if d.IsDir() && strings.HasPrefix(d.Name(), ".") && p != s.DocsDir() {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(s.Dir, p)
		if err != nil {
			return err
		}
		out = append(out, source.Entry{Path: filepath.ToSlash(rel), IsDir: d.IsDir()})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.SourceError("documents directory not found").
				WithCause(err).WithContext("path", s.DocsDir()).Build()
		}
		return nil, errors.FileSystemError("walk documents directory").WithCause(err).Build()
	}
	return out, nil
}

func (s *Source) ListDocumentPaths(ctx context.Context) ([]string, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	docs, _ := source.Filter(entries, s.DocsPath)
	return docs, nil
}

func (s *Source) ListDirectories(ctx context.Context) ([]string, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	_, dirs := source.Filter(entries, s.DocsPath)
	return dirs, nil
}

func (s *Source) GetRawContent(_ context.Context, p string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(p))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, source.ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.Dir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, source.ErrNotFound
		}
		return nil, errors.FileSystemError("read document").WithCause(err).WithContext("path", p).Build()
	}
	return data, nil
}

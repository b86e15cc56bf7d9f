package snapshot

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/source"
	"git.home.luguber.info/inful/docsite/internal/source/github"
)

// Store reads snapshot files by their namespace-relative name. Missing files
// yield source.ErrNotFound.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	// Location identifies the store in logs and cache keys.
	Location() string
}

// DirStore reads a snapshot written to the local filesystem.
type DirStore struct {
	Dir       string
	Namespace string
}

func (d DirStore) Read(_ context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, source.ErrNotFound
	}
	p := filepath.Join(d.Dir, filepath.FromSlash(d.Namespace), filepath.FromSlash(name))
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, source.ErrNotFound
		}
		return nil, errors.FileSystemError("read snapshot file").WithCause(err).WithContext("path", p).Build()
	}
	return data, nil
}

func (d DirStore) Location() string { return "dir:" + filepath.ToSlash(d.Dir) + "/" + d.Namespace }

// GitHubStore reads a snapshot committed to a branch of a GitHub repository.
type GitHubStore struct {
	Client    *github.Client
	Owner     string
	Repo      string
	Ref       string // <branchPrefix><version>
	Namespace string
}

func (g GitHubStore) Read(ctx context.Context, name string) ([]byte, error) {
	if !validName(name) {
		return nil, source.ErrNotFound
	}
	return g.Client.GetContents(ctx, g.Owner, g.Repo, path.Join(g.Namespace, name), g.Ref)
}

func (g GitHubStore) Location() string { return g.Owner + "/" + g.Repo + "@" + g.Ref }

// validName rejects names that would escape the namespace.
func validName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") {
		return false
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == ".." || seg == "" {
			return false
		}
	}
	return true
}

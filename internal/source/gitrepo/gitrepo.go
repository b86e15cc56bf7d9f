// Package gitrepo serves documents from a git remote cloned into memory.
//
// The clone is shallow and single-branch by default. Reads are served from the
// in-memory worktree until it is older than the configured TTL, after which
// the next call re-clones. When a re-clone fails the stale checkout keeps
// serving for another TTL and the failure is logged.
package gitrepo

import (
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/retry"
	"git.home.luguber.info/inful/docsite/internal/source"
)

// Options configures a Source.
type Options struct {
	URL      string
	Branch   string
	DocsPath string
	Token    string        // optional; sent as HTTP basic auth
	TTL      time.Duration // checkout age before re-cloning; 0 never re-clones
	Depth    int           // clone depth; 0 fetches full history
	Retry    retry.Policy
	Recorder metrics.Recorder
}

type cloneFunc func(ctx context.Context) (billy.Filesystem, error)

// Source is the in-memory git checkout source.
type Source struct {
	opts   Options
	clone  cloneFunc
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	fs       billy.Filesystem
	clonedAt time.Time
}

var _ source.Source = (*Source)(nil)

// New returns a Source for opts. Nothing is cloned until the first call.
func New(opts Options) *Source {
	if opts.Branch == "" {
		opts.Branch = "main"
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	s := &Source{
		opts:   opts,
		now:    time.Now,
		logger: slog.Default().With("component", "gitrepo", logfields.URL(opts.URL)),
	}
	s.clone = s.cloneRemote
	return s
}

func (s *Source) Name() string { return string(config.SourceGit) }

func (s *Source) auth() transport.AuthMethod {
	if s.opts.Token == "" {
		return nil
	}
	return &http.BasicAuth{Username: "token", Password: s.opts.Token}
}

func (s *Source) cloneRemote(ctx context.Context) (billy.Filesystem, error) {
	var wt billy.Filesystem
	err := s.opts.Retry.Do(ctx, errors.IsRetryable, func(ctx context.Context) error {
		wt = memfs.New()
		_, err := git.CloneContext(ctx, memory.NewStorage(), wt, &git.CloneOptions{
			URL:           s.opts.URL,
			ReferenceName: plumbing.NewBranchReferenceName(s.opts.Branch),
			SingleBranch:  true,
			Depth:         s.opts.Depth,
			Auth:          s.auth(),
		})
		return classifyCloneError(s.opts.URL, err)
	})
	return wt, err
}

func classifyCloneError(url string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case stderrors.Is(err, transport.ErrAuthenticationRequired), stderrors.Is(err, transport.ErrAuthorizationFailed):
		return errors.AuthError("git authentication failed").WithCause(err).WithContext("url", url).Build()
	case stderrors.Is(err, transport.ErrRepositoryNotFound), stderrors.Is(err, plumbing.ErrReferenceNotFound):
		return errors.SourceError("git repository or branch not found").WithCause(err).WithContext("url", url).Build()
	default:
		return errors.NetworkError("git clone failed").WithCause(err).WithContext("url", url).Build()
	}
}

// checkout returns the current worktree, cloning when absent or stale.
func (s *Source) checkout(ctx context.Context) (billy.Filesystem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := s.fs != nil && (s.opts.TTL <= 0 || s.now().Sub(s.clonedAt) < s.opts.TTL)
	if fresh {
		return s.fs, nil
	}

	start := time.Now()
	wt, err := s.clone(ctx)
	s.opts.Recorder.ObserveFetchDuration("clone", time.Since(start), err == nil)
	if err != nil {
		if s.fs != nil {
			s.logger.Warn("Re-clone failed; serving previous checkout", logfields.Error(err))
			s.clonedAt = s.now()
			return s.fs, nil
		}
		return nil, err
	}
	s.logger.Debug("Cloned repository", logfields.Ref(s.opts.Branch), logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	s.fs = wt
	s.clonedAt = s.now()
	return s.fs, nil
}

// Invalidate forces a re-clone on the next call.
func (s *Source) Invalidate() {
	s.mu.Lock()
	s.clonedAt = time.Time{}
	if s.opts.TTL <= 0 {
		s.fs = nil
	}
	s.mu.Unlock()
}

func (s *Source) entries(ctx context.Context) ([]source.Entry, error) {
	wt, err := s.checkout(ctx)
	if err != nil {
		return nil, err
	}
	start := strings.Trim(s.opts.DocsPath, "/")
	if start == "" {
		start = "/"
	}
	var out []source.Entry
	err = util.Walk(wt, start, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		p = strings.TrimPrefix(filepath.ToSlash(p), "/")
		if info.IsDir() && path.Base(p) == ".git" {
			return filepath.SkipDir
		}
		out = append(out, source.Entry{Path: p, IsDir: info.IsDir()})
		return nil
	})
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.FileSystemError("walk checkout").WithCause(err).Build()
	}
	return out, nil
}

func (s *Source) ListDocumentPaths(ctx context.Context) ([]string, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	docs, _ := source.Filter(entries, s.opts.DocsPath)
	return docs, nil
}

func (s *Source) ListDirectories(ctx context.Context) ([]string, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	_, dirs := source.Filter(entries, s.opts.DocsPath)
	return dirs, nil
}

func (s *Source) GetRawContent(ctx context.Context, p string) ([]byte, error) {
	wt, err := s.checkout(ctx)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(wt, p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, source.ErrNotFound
		}
		return nil, errors.FileSystemError("read checkout file").WithCause(err).WithContext("path", p).Build()
	}
	return data, nil
}

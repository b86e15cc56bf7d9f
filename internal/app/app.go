// Package app assembles docsite components from configuration: the cache
// backend, the content source, the converter, pass history and the indexer.
package app

import (
	"context"
	"errors"
	"log/slog"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/docsite/internal/cache"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/daemon"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/indexer"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/retry"
	"git.home.luguber.info/inful/docsite/internal/server/httpserver"
	"git.home.luguber.info/inful/docsite/internal/source"
	"git.home.luguber.info/inful/docsite/internal/source/github"
	"git.home.luguber.info/inful/docsite/internal/source/gitrepo"
	"git.home.luguber.info/inful/docsite/internal/source/local"
	"git.home.luguber.info/inful/docsite/internal/source/snapshot"
	"git.home.luguber.info/inful/docsite/internal/version"
)

// App holds the wired components of one docsite process.
type App struct {
	Config    *config.Config
	Registry  *prom.Registry
	Recorder  *metrics.PrometheusRecorder
	Cache     cache.Cache
	Fetcher   *cache.Fetcher
	Source    source.Source
	Converter *markdown.Converter
	History   eventstore.Store // nil when history is disabled
	Indexer   *indexer.Indexer
}

// Option customizes New.
type Option func(*buildOptions)

type buildOptions struct {
	cache  cache.Cache
	source source.Source
}

// WithCache injects a cache instead of building one from config.
func WithCache(c cache.Cache) Option { return func(o *buildOptions) { o.cache = c } }

// WithSource injects a source instead of building one from config.
func WithSource(s source.Source) Option { return func(o *buildOptions) { o.source = s } }

// New wires every component described by cfg. Close releases what New opened.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	a := &App{Config: cfg, Registry: metrics.NewRegistry()}
	a.Recorder = metrics.NewPrometheusRecorder(a.Registry)

	a.Cache = bo.cache
	if a.Cache == nil {
		c, err := newCache(ctx, cfg.Cache)
		if err != nil {
			return nil, err
		}
		a.Cache = c
	}
	a.Fetcher = cache.NewFetcher(a.Cache, a.Recorder)

	a.Source = bo.source
	if a.Source == nil {
		src, err := a.newSource(ctx)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.Source = src
	}

	a.Converter = markdown.NewConverter(markdown.Options{
		TrustHTML: cfg.Markdown.TrustHTML,
		Style:     cfg.Markdown.HighlightStyle,
	})

	if !cfg.History.Disabled {
		store, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			_ = a.Close()
			return nil, derrors.WrapError(err, derrors.CategoryEventStore, "failed to open pass history").
				WithContext("path", cfg.History.Path).Build()
		}
		a.History = store
	}

	ixOpts := []indexer.Option{
		indexer.WithDocsRoot(cfg.Source.DocsPath),
		indexer.WithConcurrency(cfg.Indexer.Concurrency),
		indexer.WithRecorder(a.Recorder),
		indexer.WithVersion(indexVersion(cfg)),
		indexer.WithBaseContext(ctx),
	}
	if a.History != nil {
		ixOpts = append(ixOpts, indexer.WithHistory(a.History))
	}
	a.Indexer = indexer.New(a.Source, a.Converter, ixOpts...)

	slog.Debug("Application wired",
		logfields.Source(a.Source.Name()),
		slog.String("cache", string(cfg.Cache.Backend)),
		slog.Bool("history", a.History != nil))
	return a, nil
}

func indexVersion(cfg *config.Config) string {
	if cfg.Source.Type == config.SourcePreRendered {
		return cfg.Snapshot.Version
	}
	if version.Released() {
		return version.Version
	}
	return "live"
}

func newCache(ctx context.Context, c config.CacheConfig) (cache.Cache, error) {
	switch c.Backend {
	case config.CacheRedis:
		r, err := cache.NewRedis(ctx, cache.RedisOptions{Addr: c.RedisAddr, Password: c.RedisPassword, DB: c.RedisDB})
		if err != nil {
			return nil, derrors.CacheError("failed to connect to Redis").
				WithCause(err).WithContext("addr", c.RedisAddr).Build()
		}
		return r, nil
	case config.CacheNATS:
		n, err := cache.NewNATS(ctx, cache.NATSOptions{URL: c.NATSURL, Bucket: c.NATSBucket})
		if err != nil {
			return nil, derrors.CacheError("failed to open NATS key-value bucket").
				WithCause(err).WithContext("url", c.NATSURL).Build()
		}
		return n, nil
	default:
		return cache.NewMemory(), nil
	}
}

func (a *App) newGitHubClient(ctx context.Context) (*github.Client, error) {
	return github.NewClient(ctx, github.ClientOptions{
		Token:    a.Config.GitHub.Token,
		BaseURL:  a.Config.GitHub.APIURL,
		Retry:    retry.FromConfig(a.Config.Retry),
		Limiter:  github.NewRateLimiter(github.DefaultRate, github.DefaultBurst),
		Recorder: a.Recorder,
	})
}

func (a *App) newSource(ctx context.Context) (source.Source, error) {
	cfg := a.Config
	switch cfg.Source.Type {
	case config.SourceLocal:
		return local.New(cfg.Source.LocalDir, cfg.Source.DocsPath), nil
	case config.SourceGit:
		return gitrepo.New(gitrepo.Options{
			URL:      cfg.Source.GitURL,
			Branch:   cfg.GitHub.Branch,
			DocsPath: cfg.Source.DocsPath,
			Token:    cfg.GitHub.Token,
			TTL:      cfg.Source.CloneTTL,
			Depth:    1,
			Retry:    retry.FromConfig(cfg.Retry),
			Recorder: a.Recorder,
		}), nil
	case config.SourcePreRendered:
		var store snapshot.Store
		if cfg.Snapshot.Store == config.SnapshotStoreDir {
			store = snapshot.DirStore{Dir: cfg.Snapshot.Dir, Namespace: cfg.Snapshot.Namespace}
		} else {
			client, err := a.newGitHubClient(ctx)
			if err != nil {
				return nil, err
			}
			store = snapshot.GitHubStore{
				Client:    client,
				Owner:     cfg.GitHub.Owner(),
				Repo:      cfg.GitHub.Name(),
				Ref:       cfg.Snapshot.Ref(),
				Namespace: cfg.Snapshot.Namespace,
			}
		}
		return snapshot.New(store, a.Fetcher, cfg.Cache.SnapshotTTL, cfg.Source.DocsPath), nil
	case config.SourceGitHubAPI:
		client, err := a.newGitHubClient(ctx)
		if err != nil {
			return nil, err
		}
		return github.New(client, github.Options{
			Owner:    cfg.GitHub.Owner(),
			Repo:     cfg.GitHub.Name(),
			Branch:   cfg.GitHub.Branch,
			DocsPath: cfg.Source.DocsPath,
			Fetcher:  a.Fetcher,
			TreeTTL:  cfg.Cache.TreeTTL,
			RawTTL:   cfg.Cache.RawTTL,
		}), nil
	default:
		return nil, derrors.ConfigError("unsupported source type").
			WithContext("type", string(cfg.Source.Type)).Build()
	}
}

// Purge drops cache entries under prefix. Purging everything also discards
// an in-memory git checkout so the next pass re-clones.
func (a *App) Purge(ctx context.Context, prefix string) (int, error) {
	n, err := a.Fetcher.Purge(ctx, prefix)
	if prefix == "" {
		if g, ok := a.Source.(*gitrepo.Source); ok {
			g.Invalidate()
		}
	}
	return n, err
}

// WatchDir returns the local documents directory to watch, or "" when
// watching does not apply.
func (a *App) WatchDir() string {
	l, ok := a.Source.(*local.Source)
	if !ok || !a.Config.Server.WatchEnabled() {
		return ""
	}
	return l.DocsDir()
}

// HTTPServer builds the HTTP surface over the indexer.
func (a *App) HTTPServer() *httpserver.Server {
	opts := httpserver.Options{
		Addr:             a.Config.Server.Addr,
		Source:           a.Source.Name(),
		Index:            a.Indexer,
		Purger:           a,
		Stylesheet:       a.Converter,
		History:          a.History,
		RevalidateSecret: a.Config.Server.RevalidateSecret,
		Registry:         a.Registry,
	}
	return httpserver.New(opts)
}

// Daemon builds the serve loop: HTTP server, periodic refresh and watcher.
func (a *App) Daemon() *daemon.Daemon {
	return daemon.New(daemon.Options{
		Server:          a.HTTPServer(),
		Indexer:         a.Indexer,
		RefreshInterval: a.Config.Server.RefreshInterval,
		WatchDir:        a.WatchDir(),
	})
}

// Close releases the cache connection and the history database.
func (a *App) Close() error {
	var errs []error
	if a.History != nil {
		errs = append(errs, a.History.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	return errors.Join(errs...)
}

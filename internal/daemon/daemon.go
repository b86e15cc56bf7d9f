// Package daemon runs the long-lived `docsite serve` process: the HTTP
// server, periodic refresh passes and the local file watcher.
package daemon

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/docsite/internal/indexer"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

const shutdownTimeout = 10 * time.Second

// HTTPServer is the lifecycle of the HTTP surface.
type HTTPServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Refresher runs an indexing pass.
type Refresher interface {
	Run(ctx context.Context) *indexer.Pass
}

// Options configures a Daemon.
type Options struct {
	Server          HTTPServer
	Indexer         Refresher
	RefreshInterval time.Duration // zero disables periodic refresh
	WatchDir        string        // empty disables file watching
	Debounce        time.Duration
}

// Daemon owns the serve-time components.
type Daemon struct {
	opts      Options
	scheduler *Scheduler
	watcher   *Watcher
}

// New creates a daemon.
func New(opts Options) *Daemon {
	return &Daemon{opts: opts}
}

func (d *Daemon) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	p := d.opts.Indexer.Run(ctx)
	slog.Info("Refresh complete",
		logfields.PassID(p.ID),
		logfields.Count(len(p.Documents)),
		slog.Int("failed", p.Failures()))
}

// Run starts every component, warms the index and blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.opts.Server.Start(ctx); err != nil {
		return err
	}
	d.refresh(ctx)

	if d.opts.RefreshInterval > 0 {
		s, err := NewScheduler()
		if err != nil {
			return errors.Join(err, d.shutdown())
		}
		if _, err := s.ScheduleRefresh(ctx, d.opts.RefreshInterval, d.refresh); err != nil {
			_ = s.Stop()
			return errors.Join(err, d.shutdown())
		}
		s.Start()
		d.scheduler = s
	}

	if d.opts.WatchDir != "" {
		w, err := NewWatcher(d.opts.WatchDir, d.opts.Debounce, func() { d.refresh(ctx) })
		if err != nil {
			return errors.Join(err, d.shutdown())
		}
		w.Start(ctx)
		d.watcher = w
	}

	<-ctx.Done()
	slog.Info("Shutting down")
	return d.shutdown()
}

func (d *Daemon) shutdown() error {
	var errs []error
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if d.scheduler != nil {
		if err := d.scheduler.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.opts.Server.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

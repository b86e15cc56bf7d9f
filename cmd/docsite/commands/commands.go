package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	Output string `short:"o" help:"Directory the snapshot namespace is written below" default:"./public" type:"path"`
}

func (c *RenderCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer closeApp(a)

	start := time.Now()
	p, err := a.Render(ctx, c.Output)
	if err != nil {
		return err
	}
	target := filepath.Join(c.Output, filepath.FromSlash(a.Config.Snapshot.Namespace))
	slog.Info("Render complete",
		logfields.PassID(p.ID),
		logfields.Path(target),
		logfields.Count(len(p.Documents)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	_, err = fmt.Fprintf(g.out(), "Rendered %d document(s) to %s (%d failed)\n", len(p.Documents), target, p.Failures())
	return err
}

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)"`
}

func (c *ServeCmd) Run(g *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if c.Addr != "" {
		a.Config.Server.Addr = c.Addr
	}
	slog.Info("Starting docsite server",
		logfields.Source(a.Source.Name()),
		slog.String("addr", a.Config.Server.Addr),
		slog.Duration("refresh_interval", a.Config.Server.RefreshInterval))
	return a.Daemon().Run(ctx)
}

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int `short:"n" help:"Number of passes to show" default:"10"`
}

func (c *HistoryCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer closeApp(a)

	if a.History == nil {
		return errors.ConfigError("pass history is disabled").WithContext("field", "history.disabled").Build()
	}
	passes, err := a.History.Recent(ctx, c.Limit)
	if err != nil {
		return err
	}
	if root.JSON {
		return printJSON(g.out(), passes)
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tSOURCE\tDOCUMENTS\tFAILED\tDURATION\tPASS")
	for _, p := range passes {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			p.StartedAt.Local().Format(time.DateTime), p.Source, p.Documents, p.Failures, p.Duration.Round(time.Millisecond), p.ID)
	}
	return tw.Flush()
}

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (c *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = config.DefaultPath
	}
	if err := config.Init(path, c.Force); err != nil {
		return err
	}
	_, err := fmt.Fprintf(g.out(), "Wrote configuration to %s\n", path)
	return err
}

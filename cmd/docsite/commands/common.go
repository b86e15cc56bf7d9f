package commands

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/app"
	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
	// Options are applied to every App the commands build.
	Options []app.Option
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default docsite.yaml when present)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	JSON    bool             `help:"Print machine readable JSON output"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Index   IndexCmd   `cmd:"" help:"List indexed documents"`
	Show    ShowCmd    `cmd:"" help:"Show one rendered document"`
	Sidebar SidebarCmd `cmd:"" help:"Print the navigation tree"`
	Search  SearchCmd  `cmd:"" help:"Search document metadata"`
	Render  RenderCmd  `cmd:"" help:"Render every document into a snapshot directory"`
	Serve   ServeCmd   `cmd:"" help:"Serve the JSON API with periodic refresh"`
	History HistoryCmd `cmd:"" help:"Show recent indexing passes"`
	Init    InitCmd    `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; set up a default logger once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// configureLogging replaces the default logger with the configured level and
// format. --verbose always wins.
func configureLogging(cfg config.LoggingConfig, verbose bool) *slog.Logger {
	level := cfg.Level.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// openApp loads configuration, configures logging and wires the application.
func openApp(ctx context.Context, g *Global, root *CLI) (*app.App, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = configureLogging(cfg.Logging, root.Verbose)
	return app.New(ctx, cfg, g.Options...)
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		slog.Warn("Failed to close application", logfields.Error(err))
	}
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

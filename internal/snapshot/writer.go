package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Writer writes a snapshot below Dir/Namespace.
type Writer struct {
	Dir       string
	Namespace string
}

// Contents is everything a snapshot holds.
type Contents struct {
	Documents []docmodel.Document
	Sidebar   []docmodel.SidebarNode
	Info      docmodel.SnapshotInfo
}

// Target returns the directory the snapshot is promoted to.
func (w Writer) Target() string {
	return filepath.Join(w.Dir, filepath.FromSlash(w.Namespace))
}

// rename is swapped in tests to fail promotion.
var rename = os.Rename

// Write stages the snapshot in a sibling directory and promotes it over the
// target once every file is written, so readers never see a partial snapshot.
func (w Writer) Write(ctx context.Context, c Contents) error {
	target := w.Target()
	stage := target + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return fsErr("clear staging directory", stage, err)
	}
	if err := os.MkdirAll(filepath.Join(stage, DocsDir), 0o750); err != nil {
		return fsErr("create staging directory", stage, err)
	}

	if err := w.writeAll(ctx, stage, c); err != nil {
		_ = os.RemoveAll(stage)
		return err
	}

	prev := target + ".prev"
	_ = os.RemoveAll(prev)
	backedUp := false
	if _, err := os.Stat(target); err == nil {
		if err := rename(target, prev); err != nil {
			_ = os.RemoveAll(stage)
			return fsErr("backup existing snapshot", target, err)
		}
		backedUp = true
	}
	if err := rename(stage, target); err != nil {
		if backedUp {
			if rerr := rename(prev, target); rerr != nil {
				slog.Error("Failed to restore previous snapshot", logfields.Path(prev), logfields.Error(rerr))
			}
		}
		_ = os.RemoveAll(stage)
		return fsErr("promote staging", target, err)
	}
	if err := os.RemoveAll(prev); err != nil {
		slog.Warn("Failed to remove previous snapshot", logfields.Path(prev), logfields.Error(err))
	}
	slog.Info("Snapshot written", logfields.Path(target), logfields.Count(len(c.Documents)))
	return nil
}

func (w Writer) writeAll(ctx context.Context, stage string, c Contents) error {
	entries := make([]docmodel.IndexEntry, 0, len(c.Documents))
	for _, d := range c.Documents {
		if err := ctx.Err(); err != nil {
			return err
		}
		entries = append(entries, d.Entry())
		data, err := EncodeDocument(d)
		if err != nil {
			return fmt.Errorf("encode %s: %w", d.Path, err)
		}
		if err := writeFile(filepath.Join(stage, filepath.FromSlash(DocFile(d.Slug))), data); err != nil {
			return err
		}
	}

	sidebar := c.Sidebar
	if sidebar == nil {
		sidebar = []docmodel.SidebarNode{}
	}
	for name, v := range map[string]any{IndexFile: entries, SidebarFile: sidebar, MetadataFile: c.Info} {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", name, err)
		}
		if err := writeFile(filepath.Join(stage, name), data); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(p string, data []byte) error {
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fsErr("write snapshot file", p, err)
	}
	return nil
}

func fsErr(msg, p string, err error) error {
	return errors.FileSystemError(msg).WithCause(err).WithContext("path", p).Build()
}

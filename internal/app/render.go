package app

import (
	"context"

	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/indexer"
	"git.home.luguber.info/inful/docsite/internal/snapshot"
)

// Render runs a live pass and writes it as a snapshot below dir, in the
// configured namespace. Documents that fail conversion are left out.
func (a *App) Render(ctx context.Context, dir string) (*indexer.Pass, error) {
	if a.Indexer.Precomputed() {
		return nil, derrors.ValidationError("cannot render from a pre-rendered source").
			WithContext("source", a.Source.Name()).Build()
	}
	p := a.Indexer.Run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w := snapshot.Writer{Dir: dir, Namespace: a.Config.Snapshot.Namespace}
	err := w.Write(ctx, snapshot.Contents{
		Documents: p.Documents,
		Sidebar:   p.Sidebar,
		Info:      snapshot.Summarize(p.Documents, a.Config.Snapshot.Version, p.StartedAt),
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

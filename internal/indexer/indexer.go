// Package indexer turns a content source into the document set, sidebar and
// search index of one indexing pass.
//
// Two strategies sit behind the same methods. A live source is listed, every
// file is fetched and converted concurrently, and the sidebar is built from
// the results. A source implementing source.Precomputed is read as is: the
// listing comes from its index, documents are hydrated on demand and the
// sidebar is taken verbatim. The strategy is fixed when the Indexer is built.
//
// No method returns an error. Per-document failures exclude that document;
// listing failures yield an empty pass; lookups of unknown slugs report false.
package indexer

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/sidebar"
	"git.home.luguber.info/inful/docsite/internal/slug"
	"git.home.luguber.info/inful/docsite/internal/snapshot"
	"git.home.luguber.info/inful/docsite/internal/source"
)

// DefaultConcurrency bounds concurrent fetch and convert work per pass.
const DefaultConcurrency = 8

// Pass is the immutable result of one indexing run.
type Pass struct {
	ID          string
	Source      string
	StartedAt   time.Time
	Duration    time.Duration
	Documents   []docmodel.Document // sorted by path
	Sidebar     []docmodel.SidebarNode
	Failed      []string // paths excluded from this pass
	Precomputed bool

	bySlug map[string]int
	search *search.Index
}

// Failures is the number of documents excluded from the pass.
func (p *Pass) Failures() int { return len(p.Failed) }

// Record projects the pass onto its history record.
func (p *Pass) Record() eventstore.Pass {
	return eventstore.Pass{
		ID:        p.ID,
		Source:    p.Source,
		StartedAt: p.StartedAt,
		Duration:  p.Duration,
		Documents: len(p.Documents),
		Failures:  len(p.Failed),
	}
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithDocsRoot sets the documents root used for slugs and the sidebar.
func WithDocsRoot(root string) Option {
	return func(ix *Indexer) { ix.docsRoot = strings.Trim(root, "/") }
}

// WithConcurrency bounds per-pass parallelism. Non-positive values select DefaultConcurrency.
func WithConcurrency(n int) Option {
	return func(ix *Indexer) {
		if n > 0 {
			ix.concurrency = n
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option { return func(ix *Indexer) { ix.recorder = r } }

// WithHistory records every completed pass in store.
func WithHistory(store eventstore.Store) Option { return func(ix *Indexer) { ix.history = store } }

// WithBaseContext sets the context whose cancellation interrupts passes,
// typically the process lifetime.
func WithBaseContext(ctx context.Context) Option {
	return func(ix *Indexer) {
		if ctx != nil {
			ix.base = ctx
		}
	}
}

// WithVersion labels the metadata summary of live passes.
func WithVersion(v string) Option { return func(ix *Indexer) { ix.version = v } }

// Indexer owns the current pass. It is safe for concurrent use.
type Indexer struct {
	src         source.Source
	pre         source.Precomputed
	conv        *markdown.Converter
	docsRoot    string
	concurrency int
	recorder    metrics.Recorder
	history     eventstore.Store
	version     string
	logger      *slog.Logger
	now         func() time.Time

	base    context.Context
	runs    singleflight.Group
	seq     atomic.Uint64
	mu      sync.RWMutex
	current *Pass
}

// New builds an Indexer over src. When src implements source.Precomputed the
// snapshot strategy is used and conv may be nil.
func New(src source.Source, conv *markdown.Converter, opts ...Option) *Indexer {
	ix := &Indexer{
		src:         src,
		conv:        conv,
		docsRoot:    "docs",
		concurrency: DefaultConcurrency,
		recorder:    metrics.NoopRecorder{},
		version:     "live",
		now:         time.Now,
		base:        context.Background(),
	}
	if pre, ok := src.(source.Precomputed); ok {
		ix.pre = pre
	}
	for _, opt := range opts {
		opt(ix)
	}
	if ix.conv == nil && ix.pre == nil {
		ix.conv = markdown.NewConverter(markdown.Options{})
	}
	ix.logger = slog.Default().With("component", "indexer", logfields.Source(src.Name()))
	return ix
}

// Precomputed reports whether the snapshot strategy is in use.
func (ix *Indexer) Precomputed() bool { return ix.pre != nil }

// Converter returns the Markdown converter, nil in snapshot mode.
func (ix *Indexer) Converter() *markdown.Converter { return ix.conv }

// Run performs a full pass that starts after the call and makes it current.
// Callers arriving while a pass is in flight wait for it and then share the
// next one, so content changed before the call is always picked up.
//
// The pass does not observe cancellation of ctx: a caller giving up must not
// abort the fetches other callers wait on. Only the base context set with
// WithBaseContext interrupts a pass, and an interrupted pass is never
// published.
func (ix *Indexer) Run(ctx context.Context) *Pass {
	after := ix.seq.Load()
	for {
		r := ix.do(ctx)
		if r.seq > after {
			return r.pass
		}
	}
}

type runResult struct {
	pass *Pass
	seq  uint64
}

// do runs a pass or joins the one in flight.
func (ix *Indexer) do(ctx context.Context) runResult {
	v, _, _ := ix.runs.Do("run", func() (any, error) {
		seq := ix.seq.Add(1)
		pctx, cancel := ix.passContext(ctx)
		defer cancel()

		var p *Pass
		if ix.pre != nil {
			p = ix.runSnapshot(pctx)
		} else {
			p = ix.runLive(pctx)
		}
		if pctx.Err() != nil {
			ix.logger.Warn("Indexing pass interrupted; keeping the previous pass",
				logfields.PassID(p.ID), logfields.Error(pctx.Err()))
			if cur := ix.Pass(); cur != nil {
				p = cur
			}
			return runResult{pass: p, seq: seq}, nil
		}
		ix.finish(pctx, p)
		return runResult{pass: p, seq: seq}, nil
	})
	return v.(runResult)
}

// passContext keeps the values of ctx but ties cancellation to the base context.
func (ix *Indexer) passContext(ctx context.Context) (context.Context, context.CancelFunc) {
	pctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	if ix.base.Err() != nil {
		cancel()
	}
	stop := context.AfterFunc(ix.base, cancel)
	return pctx, func() {
		stop()
		cancel()
	}
}

// Pass returns the current pass, or nil before the first run.
func (ix *Indexer) Pass() *Pass {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.current
}

// ensure returns the current pass, joining or starting the first one.
func (ix *Indexer) ensure(ctx context.Context) *Pass {
	if p := ix.Pass(); p != nil {
		return p
	}
	return ix.do(ctx).pass
}

func (ix *Indexer) begin() *Pass {
	return &Pass{ID: uuid.NewString(), Source: ix.src.Name(), StartedAt: ix.now(), Precomputed: ix.pre != nil}
}

type outcome struct {
	doc docmodel.Document
	ok  bool
}

func (ix *Indexer) runLive(ctx context.Context) *Pass {
	p := ix.begin()
	log := ix.logger.With(logfields.PassID(p.ID))

	paths, err := ix.src.ListDocumentPaths(ctx)
	if err != nil {
		log.Error("Listing documents failed; pass is empty", logfields.Error(err))
		return p
	}

	results := make([]outcome, len(paths))
	var g errgroup.Group
	g.SetLimit(ix.concurrency)
	for i, docPath := range paths {
		g.Go(func() error {
			doc, err := ix.process(ctx, docPath)
			if err != nil {
				log.Warn("Document excluded", logfields.Path(docPath), logfields.Error(err))
				ix.recorder.IncDocumentResult(metrics.DocumentFailed)
				return nil
			}
			ix.recorder.IncDocumentResult(metrics.DocumentIndexed)
			results[i] = outcome{doc: doc, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	for i, r := range results {
		if r.ok {
			p.Documents = append(p.Documents, r.doc)
		} else {
			p.Failed = append(p.Failed, paths[i])
		}
	}
	sort.Slice(p.Documents, func(a, b int) bool { return p.Documents[a].Path < p.Documents[b].Path })
	sort.Strings(p.Failed)

	dirs, err := ix.src.ListDirectories(ctx)
	if err != nil {
		log.Warn("Listing directories failed; sidebar has no empty categories", logfields.Error(err))
	}
	p.Sidebar = sidebar.Build(ix.docsRoot, dirs, p.Documents)
	return p
}

// process fetches and converts one document.
func (ix *Indexer) process(ctx context.Context, docPath string) (docmodel.Document, error) {
	raw, err := ix.src.GetRawContent(ctx, docPath)
	if err != nil {
		return docmodel.Document{}, err
	}
	res, err := ix.conv.Convert(raw)
	if err != nil {
		return docmodel.Document{}, err
	}
	meta := res.Metadata
	if meta.Title == "" {
		base := path.Base(docPath)
		meta.Title = sidebar.Humanize(strings.TrimSuffix(base, path.Ext(base)))
	}
	return docmodel.Document{
		Path:        docPath,
		Slug:        slug.Generate(docPath, ix.docsRoot, meta.SidebarPosition),
		Metadata:    meta,
		RawMarkdown: string(res.Body),
		HTML:        res.HTML,
		TOC:         res.TOC,
		ReadingTime: res.ReadingTime,
		Fingerprint: res.Fingerprint,
	}, nil
}

func (ix *Indexer) runSnapshot(ctx context.Context) *Pass {
	p := ix.begin()
	log := ix.logger.With(logfields.PassID(p.ID))

	entries, err := ix.pre.PrecomputedIndex(ctx)
	if err != nil {
		log.Error("Snapshot index unavailable; pass is empty", logfields.Error(err))
	}
	for _, e := range entries {
		p.Documents = append(p.Documents, e.Document())
	}
	sort.Slice(p.Documents, func(a, b int) bool { return p.Documents[a].Path < p.Documents[b].Path })

	p.Sidebar, err = ix.pre.PrecomputedSidebar(ctx)
	if err != nil {
		log.Error("Snapshot sidebar unavailable", logfields.Error(err))
		p.Sidebar = nil
	}
	return p
}

// finish indexes the pass, publishes it and records it.
func (ix *Indexer) finish(ctx context.Context, p *Pass) {
	p.Duration = ix.now().Sub(p.StartedAt)
	log := ix.logger.With(logfields.PassID(p.ID))

	p.bySlug = make(map[string]int, len(p.Documents))
	entries := make([]docmodel.IndexEntry, 0, len(p.Documents))
	for i, d := range p.Documents {
		if prev, dup := p.bySlug[d.Slug]; dup {
			// Collisions are reported, not repaired; the first path wins lookups.
			log.Warn("Duplicate slug", logfields.Slug(d.Slug),
				logfields.Path(d.Path), slog.String("conflicts_with", p.Documents[prev].Path))
			continue
		}
		p.bySlug[d.Slug] = i
		entries = append(entries, d.Entry())
	}
	p.search = search.New(entries)

	ix.mu.Lock()
	ix.current = p
	ix.mu.Unlock()

	ix.recorder.ObservePassDuration(p.Source, p.Duration)
	ix.recorder.SetLastPassDocuments(len(p.Documents))
	log.Info("Indexing pass complete",
		logfields.Count(len(p.Documents)),
		slog.Int("failures", p.Failures()),
		logfields.DurationMS(float64(p.Duration.Milliseconds())))

	if ix.history != nil {
		if err := ix.history.Append(ctx, p.Record()); err != nil {
			log.Warn("Recording pass history failed", logfields.Error(err))
		}
	}
}

// ListAll returns every document of the current pass, sorted by path. In
// snapshot mode the documents carry metadata only.
func (ix *Indexer) ListAll(ctx context.Context) []docmodel.Document {
	return ix.ensure(ctx).Documents
}

// Entries returns the index projection of every document.
func (ix *Indexer) Entries(ctx context.Context) []docmodel.IndexEntry {
	docs := ix.ensure(ctx).Documents
	out := make([]docmodel.IndexEntry, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Entry())
	}
	return out
}

// Sidebar returns the navigation tree of the current pass.
func (ix *Indexer) Sidebar(ctx context.Context) []docmodel.SidebarNode {
	return ix.ensure(ctx).Sidebar
}

// Search queries the current pass's search index.
func (ix *Indexer) Search(ctx context.Context, query string) search.Results {
	return ix.ensure(ctx).search.Search(query)
}

// GetBySlug returns the fully rendered document for slug. In snapshot mode
// the document is hydrated from the snapshot.
func (ix *Indexer) GetBySlug(ctx context.Context, docSlug string) (docmodel.Document, bool) {
	if ix.pre != nil {
		doc, err := ix.pre.PrecomputedDocument(ctx, docSlug)
		if err != nil {
			if !stderrors.Is(err, source.ErrNotFound) {
				ix.logger.Warn("Snapshot document unavailable", logfields.Slug(docSlug), logfields.Error(err))
			}
			return docmodel.Document{}, false
		}
		return doc, true
	}

	p := ix.ensure(ctx)
	i, ok := p.bySlug[docSlug]
	if !ok {
		return docmodel.Document{}, false
	}
	return p.Documents[i], true
}

// Metadata summarizes the corpus. Snapshots report their stored summary;
// live passes are summarized on the fly.
func (ix *Indexer) Metadata(ctx context.Context) docmodel.SnapshotInfo {
	if ix.pre != nil {
		info, err := ix.pre.PrecomputedMetadata(ctx)
		if err == nil {
			return info
		}
		ix.logger.Warn("Snapshot metadata unavailable", logfields.Error(err))
	}
	p := ix.ensure(ctx)
	return snapshot.Summarize(p.Documents, ix.version, p.StartedAt)
}

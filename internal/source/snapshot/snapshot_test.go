package snapshot

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/cache"
	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/snapshot"
	"git.home.luguber.info/inful/docsite/internal/source"
	"git.home.luguber.info/inful/docsite/internal/source/github"
)

func writeSnapshot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	docs := []docmodel.Document{
		{Path: "docs/guide/intro.md", Slug: "guide-intro", Metadata: docmodel.Metadata{Title: "Intro", Category: "Guide"},
			RawMarkdown: "# Intro\n", HTML: "<h1 id=\"intro\">Intro</h1>", TOC: []docmodel.TocEntry{{ID: "intro", Text: "Intro", Level: 1}}},
		{Path: "docs/faq.md", Slug: "faq", Metadata: docmodel.Metadata{Title: "FAQ"}},
	}
	w := snapshot.Writer{Dir: dir, Namespace: "rendered"}
	require.NoError(t, w.Write(context.Background(), snapshot.Contents{
		Documents: docs,
		Sidebar: []docmodel.SidebarNode{
			{Kind: docmodel.KindCategory, Label: "Guide", Items: []docmodel.SidebarNode{{Kind: docmodel.KindDoc, Label: "Intro", Slug: "guide-intro"}}},
			{Kind: docmodel.KindDoc, Label: "FAQ", Slug: "faq"},
		},
		Info: snapshot.Summarize(docs, "latest", time.Unix(0, 0)),
	}))
	return dir
}

func TestSource_DirStore(t *testing.T) {
	dir := writeSnapshot(t)
	src := New(DirStore{Dir: dir, Namespace: "rendered"}, cache.NewFetcher(cache.NewMemory(), nil), time.Hour, "docs")
	ctx := context.Background()

	index, err := src.PrecomputedIndex(ctx)
	require.NoError(t, err)
	require.Len(t, index, 2)
	assert.Equal(t, "guide-intro", index[0].Slug)

	sidebar, err := src.PrecomputedSidebar(ctx)
	require.NoError(t, err)
	require.Len(t, sidebar, 2)
	assert.Equal(t, "Guide", sidebar[0].Label)
	assert.Equal(t, "guide-intro", sidebar[0].Items[0].Slug)

	doc, err := src.PrecomputedDocument(ctx, "guide-intro")
	require.NoError(t, err)
	assert.Equal(t, "<h1 id=\"intro\">Intro</h1>", doc.HTML)
	assert.Equal(t, "intro", doc.TOC[0].ID)

	_, err = src.PrecomputedDocument(ctx, "nope")
	assert.ErrorIs(t, err, source.ErrNotFound)

	info, err := src.PrecomputedMetadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, info.TotalDocs)
	assert.Equal(t, []string{"Guide"}, info.Categories)

	paths, err := src.ListDocumentPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/faq.md", "docs/guide/intro.md"}, paths)

	dirs, err := src.ListDirectories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/guide"}, dirs)

	raw, err := src.GetRawContent(ctx, "docs/guide/intro.md")
	require.NoError(t, err)
	assert.Equal(t, "# Intro\n", string(raw))

	_, err = src.GetRawContent(ctx, "docs/unknown.md")
	assert.ErrorIs(t, err, source.ErrNotFound)
	assert.Equal(t, "pre-rendered", src.Name())
}

func TestSource_MissingSnapshot(t *testing.T) {
	src := New(DirStore{Dir: t.TempDir(), Namespace: "rendered"}, nil, time.Hour, "docs")
	_, err := src.PrecomputedIndex(context.Background())
	assert.ErrorIs(t, err, source.ErrNotFound)
}

func TestSource_MalformedFile(t *testing.T) {
	store := fakeStore{"docs-index.json": "{not json"}
	src := New(store, nil, time.Hour, "docs")
	_, err := src.PrecomputedIndex(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategorySnapshot))
}

type fakeStore map[string]string

func (f fakeStore) Read(_ context.Context, name string) ([]byte, error) {
	if v, ok := f[name]; ok {
		return []byte(v), nil
	}
	return nil, source.ErrNotFound
}

func (f fakeStore) Location() string { return "fake" }

func TestDirStore_RejectsEscapingNames(t *testing.T) {
	store := DirStore{Dir: t.TempDir(), Namespace: "rendered"}
	for _, name := range []string{"../secret.json", "/etc/passwd", "docs/../../x.json", ""} {
		_, err := store.Read(context.Background(), name)
		assert.ErrorIs(t, err, source.ErrNotFound, name)
	}
}

func TestGitHubStore_ReadsAtVersionRef(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/acme/handbook/contents/rendered/metadata.json", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "rendered/v3", r.URL.Query().Get("ref"))
		body := base64.StdEncoding.EncodeToString([]byte(`{"generatedAt":"2026-01-01T00:00:00Z","version":"v3","totalDocs":4,"categories":[],"tags":[]}`))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"type": "file", "encoding": "base64", "content": body})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := github.NewClient(context.Background(), github.ClientOptions{BaseURL: srv.URL, Limiter: github.NewRateLimiter(1000, 100)})
	require.NoError(t, err)

	store := GitHubStore{Client: client, Owner: "acme", Repo: "handbook", Ref: "rendered/v3", Namespace: "rendered"}
	src := New(store, cache.NewFetcher(cache.NewMemory(), nil), time.Hour, "docs")

	for i := 0; i < 2; i++ {
		info, err := src.PrecomputedMetadata(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "v3", info.Version)
		assert.Equal(t, 4, info.TotalDocs)
	}
	assert.Equal(t, int32(1), calls.Load(), "snapshot files are cached")
	assert.Equal(t, "snapshot:acme/handbook@rendered/v3/metadata.json", Key(store.Location(), "metadata.json"))
}

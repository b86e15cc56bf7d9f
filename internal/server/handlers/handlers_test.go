package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
	"git.home.luguber.info/inful/docsite/internal/indexer"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
)

type fakeIndex struct {
	docs map[string]docmodel.Document
}

func (f *fakeIndex) Entries(context.Context) []docmodel.IndexEntry {
	out := make([]docmodel.IndexEntry, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d.Entry())
	}
	return out
}

func (f *fakeIndex) GetBySlug(_ context.Context, slug string) (docmodel.Document, bool) {
	d, ok := f.docs[slug]
	return d, ok
}

func (f *fakeIndex) Sidebar(context.Context) []docmodel.SidebarNode { return nil }

func (f *fakeIndex) Search(_ context.Context, q string) search.Results {
	return search.Results{Query: q, State: search.StateNoQuery}
}

func (f *fakeIndex) Metadata(context.Context) docmodel.SnapshotInfo {
	return docmodel.SnapshotInfo{Version: "live", TotalDocs: len(f.docs)}
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]docmodel.Document{
		"intro": {Path: "docs/intro.md", Slug: "intro", Metadata: docmodel.Metadata{Title: "Intro"}, HTML: "<p>hi</p>", Fingerprint: "abc123"},
	}}
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/docs/{slug}", h)
	mux.HandleFunc("/", h)
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandleDocument(t *testing.T) {
	h := NewDocsHandlers(newFakeIndex())

	t.Run("found sets ETag", func(t *testing.T) {
		rec := serve(h.HandleDocument, httptest.NewRequest(http.MethodGet, "/api/docs/intro", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `"abc123"`, rec.Header().Get("ETag"))

		var doc docmodel.Document
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "Intro", doc.Metadata.Title)
		assert.Equal(t, "<p>hi</p>", doc.HTML)
	})

	t.Run("matching If-None-Match returns 304", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/docs/intro", nil)
		req.Header.Set("If-None-Match", `W/"other", "abc123"`)
		rec := serve(h.HandleDocument, req)
		assert.Equal(t, http.StatusNotModified, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("missing returns 404", func(t *testing.T) {
		rec := serve(h.HandleDocument, httptest.NewRequest(http.MethodGet, "/api/docs/nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "not_found")
	})
}

func TestHandleListAndSearch(t *testing.T) {
	h := NewDocsHandlers(newFakeIndex())

	rec := serve(h.HandleList, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	var list responses.DocListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	rec = serve(h.HandleSearch, httptest.NewRequest(http.MethodGet, "/api/search?q=", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var res responses.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, search.StateNoQuery, res.State)
	assert.NotNil(t, res.Hits)

	rec = serve(h.HandleSidebar, httptest.NewRequest(http.MethodGet, "/api/sidebar?pretty=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "\"sidebar\": []")
}

func TestEtagMatches(t *testing.T) {
	assert.False(t, etagMatches("", `"a"`))
	assert.True(t, etagMatches("*", `"a"`))
	assert.True(t, etagMatches(`"a"`, `"a"`))
	assert.True(t, etagMatches(`W/"a"`, `"a"`))
	assert.False(t, etagMatches(`"b"`, `"a"`))
}

type fakePurger struct {
	prefixes []string
	err      error
}

func (f *fakePurger) Purge(_ context.Context, prefix string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.prefixes = append(f.prefixes, prefix)
	return 2, nil
}

type fakeRefresher struct{ runs int }

func (f *fakeRefresher) Run(context.Context) *indexer.Pass {
	f.runs++
	return &indexer.Pass{ID: "pass-1", Documents: make([]docmodel.Document, 3)}
}

func revalidate(h *RevalidateHandlers, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/revalidate", strings.NewReader(body))
	return serve(h.HandleRevalidate, req)
}

func TestHandleRevalidate(t *testing.T) {
	t.Run("wrong secret is rejected", func(t *testing.T) {
		p, r := &fakePurger{}, &fakeRefresher{}
		rec := revalidate(NewRevalidateHandlers("s3cret", p, r), `{"secret":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, p.prefixes)
		assert.Zero(t, r.runs)
	})

	t.Run("empty configured secret rejects everything", func(t *testing.T) {
		rec := revalidate(NewRevalidateHandlers("", &fakePurger{}, nil), `{"secret":""}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := revalidate(NewRevalidateHandlers("s3cret", &fakePurger{}, nil), `{`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no selectors purges everything", func(t *testing.T) {
		p, r := &fakePurger{}, &fakeRefresher{}
		h := NewRevalidateHandlers("s3cret", p, r)
		h.now = func() time.Time { return time.Unix(100, 0) }
		rec := revalidate(h, `{"secret":"s3cret"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{""}, p.prefixes)
		assert.Equal(t, 1, r.runs)

		var resp responses.RevalidateResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Revalidated)
		assert.Equal(t, 2, resp.Purged)
		assert.Equal(t, "pass-1", resp.PassID)
		assert.Equal(t, 3, resp.Documents)
		assert.Equal(t, time.Unix(100, 0).UTC(), resp.Timestamp)
	})

	t.Run("paths and tags map to prefixes", func(t *testing.T) {
		p := &fakePurger{}
		rec := revalidate(NewRevalidateHandlers("s3cret", p, nil), `{"secret":"s3cret","paths":["docs/a.md"],"tags":["tree:"]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"raw:docs/a.md", "tree:"}, p.prefixes)
	})

	t.Run("purge failure surfaces as cache error", func(t *testing.T) {
		rec := revalidate(NewRevalidateHandlers("s3cret", &fakePurger{err: errors.New("down")}, nil), `{"secret":"s3cret"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

type fakePasses struct{ p *indexer.Pass }

func (f fakePasses) Pass() *indexer.Pass { return f.p }

type fakeHistory struct {
	passes []eventstore.Pass
	limit  int
}

func (f *fakeHistory) Append(context.Context, eventstore.Pass) error { return nil }

func (f *fakeHistory) Recent(_ context.Context, n int) ([]eventstore.Pass, error) {
	f.limit = n
	return f.passes, nil
}

func (f *fakeHistory) Close() error { return nil }

type cssWriter struct{}

func (cssWriter) WriteCSS(w io.Writer) error {
	_, err := io.WriteString(w, ".chroma { color: red }")
	return err
}

func TestMonitoringHandlers(t *testing.T) {
	t.Run("health reports starting then healthy", func(t *testing.T) {
		h := NewMonitoringHandlers("local", fakePasses{}, nil, nil)
		rec := serve(h.HandleHealthCheck, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		var health responses.HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		assert.Equal(t, "starting", health.Status)
		assert.Equal(t, "local", health.Source)

		h = NewMonitoringHandlers("local", fakePasses{p: &indexer.Pass{ID: "p1", Documents: make([]docmodel.Document, 2)}}, nil, nil)
		rec = serve(h.HandleHealthCheck, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
		assert.Equal(t, "healthy", health.Status)
		assert.Equal(t, "p1", health.PassID)
		assert.Equal(t, 2, health.Documents)
	})

	t.Run("passes honors limit", func(t *testing.T) {
		hist := &fakeHistory{passes: []eventstore.Pass{{ID: "a", Source: "local", Documents: 4}}}
		h := NewMonitoringHandlers("local", fakePasses{}, hist, nil)
		rec := serve(h.HandlePasses, httptest.NewRequest(http.MethodGet, "/api/passes?limit=5", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, hist.limit)
		assert.Contains(t, rec.Body.String(), `"passId":"a"`)

		rec = serve(h.HandlePasses, httptest.NewRequest(http.MethodGet, "/api/passes?limit=x", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("passes without history", func(t *testing.T) {
		h := NewMonitoringHandlers("local", fakePasses{}, nil, nil)
		rec := serve(h.HandlePasses, httptest.NewRequest(http.MethodGet, "/api/passes", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("stylesheet", func(t *testing.T) {
		h := NewMonitoringHandlers("local", fakePasses{}, nil, cssWriter{})
		rec := serve(h.HandleStylesheet, httptest.NewRequest(http.MethodGet, "/assets/highlight.css", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), ".chroma")
	})
}

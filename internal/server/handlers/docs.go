package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/search"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
)

// DocIndex is the query surface of the indexer used by the document handlers.
type DocIndex interface {
	Entries(ctx context.Context) []docmodel.IndexEntry
	GetBySlug(ctx context.Context, slug string) (docmodel.Document, bool)
	Sidebar(ctx context.Context) []docmodel.SidebarNode
	Search(ctx context.Context, query string) search.Results
	Metadata(ctx context.Context) docmodel.SnapshotInfo
}

// DocsHandlers serves the document query endpoints.
type DocsHandlers struct {
	index        DocIndex
	errorAdapter *errors.HTTPErrorAdapter
}

// NewDocsHandlers creates a new document handlers instance.
func NewDocsHandlers(index DocIndex) *DocsHandlers {
	return &DocsHandlers{
		index:        index,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleList handles GET /api/docs.
func (h *DocsHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	entries := h.index.Entries(r.Context())
	if entries == nil {
		entries = []docmodel.IndexEntry{}
	}
	respond(w, r, h.errorAdapter, &responses.DocListResponse{Documents: entries, Total: len(entries)}, "document list")
}

// HandleDocument handles GET /api/docs/{slug}. The document fingerprint is
// used as a strong ETag.
func (h *DocsHandlers) HandleDocument(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	doc, ok := h.index.GetBySlug(r.Context(), slug)
	if !ok {
		err := errors.NotFoundError("document not found").
			WithContext("slug", slug).
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	if doc.Fingerprint != "" {
		etag := `"` + doc.Fingerprint + `"`
		w.Header().Set("ETag", etag)
		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	respond(w, r, h.errorAdapter, doc, "document")
}

// etagMatches implements the If-None-Match comparison, including "*" and
// weak validators.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}

// HandleSidebar handles GET /api/sidebar.
func (h *DocsHandlers) HandleSidebar(w http.ResponseWriter, r *http.Request) {
	nodes := h.index.Sidebar(r.Context())
	if nodes == nil {
		nodes = []docmodel.SidebarNode{}
	}
	respond(w, r, h.errorAdapter, &responses.SidebarResponse{Sidebar: nodes}, "sidebar")
}

// HandleSearch handles GET /api/search?q=.
func (h *DocsHandlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	res := h.index.Search(r.Context(), r.URL.Query().Get("q"))
	hits := res.Hits
	if hits == nil {
		hits = []search.Hit{}
	}
	respond(w, r, h.errorAdapter, &responses.SearchResponse{
		Query: res.Query,
		State: res.State,
		Total: len(hits),
		Hits:  hits,
	}, "search")
}

// HandleMetadata handles GET /api/metadata.
func (h *DocsHandlers) HandleMetadata(w http.ResponseWriter, r *http.Request) {
	respond(w, r, h.errorAdapter, h.index.Metadata(r.Context()), "metadata")
}

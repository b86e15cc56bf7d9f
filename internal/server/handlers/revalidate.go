package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docsite/internal/cache"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/indexer"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
)

const maxRevalidateBody = 1 << 20

// Purger drops cache entries by key prefix.
type Purger interface {
	Purge(ctx context.Context, prefix string) (int, error)
}

// Refresher runs an indexing pass that starts after the call.
type Refresher interface {
	Run(ctx context.Context) *indexer.Pass
}

// RevalidateHandlers serves POST /api/revalidate.
type RevalidateHandlers struct {
	secret       string
	purger       Purger
	refresher    Refresher
	errorAdapter *errors.HTTPErrorAdapter
	now          func() time.Time
}

// NewRevalidateHandlers creates the revalidation handler. An empty secret
// rejects every request.
func NewRevalidateHandlers(secret string, purger Purger, refresher Refresher) *RevalidateHandlers {
	return &RevalidateHandlers{
		secret:       secret,
		purger:       purger,
		refresher:    refresher,
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
		now:          time.Now,
	}
}

// HandleRevalidate purges the selected cache entries and starts a fresh pass.
// Tags are cache key prefixes, paths are document source paths. A request
// with neither purges the whole cache.
func (h *RevalidateHandlers) HandleRevalidate(w http.ResponseWriter, r *http.Request) {
	var req responses.RevalidateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRevalidateBody))
	if err := dec.Decode(&req); err != nil {
		verr := errors.ValidationError("invalid revalidate request body").
			WithCause(err).
			Build()
		h.errorAdapter.WriteErrorResponse(w, r, verr)
		return
	}

	if h.secret == "" || subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.secret)) != 1 {
		h.errorAdapter.WriteErrorResponse(w, r, errors.AuthError("invalid secret").Build())
		return
	}

	prefixes := selectPrefixes(req)
	purged := 0
	for _, prefix := range prefixes {
		n, err := h.purger.Purge(r.Context(), prefix)
		if err != nil {
			cerr := errors.WrapError(err, errors.CategoryCache, "cache purge failed").
				WithContext("prefix", prefix).
				Build()
			h.errorAdapter.WriteErrorResponse(w, r, cerr)
			return
		}
		purged += n
	}
	slog.Info("Revalidated cache",
		logfields.Count(purged),
		slog.Any("paths", req.Paths),
		slog.Any("tags", req.Tags))

	resp := &responses.RevalidateResponse{Revalidated: true, Purged: purged, Timestamp: h.now().UTC()}
	if h.refresher != nil {
		if p := h.refresher.Run(r.Context()); p != nil {
			resp.PassID = p.ID
			resp.Documents = len(p.Documents)
		}
	}
	respond(w, r, h.errorAdapter, resp, "revalidate")
}

// selectPrefixes maps a request onto cache key prefixes. The empty prefix
// matches every key.
func selectPrefixes(req responses.RevalidateRequest) []string {
	if len(req.Paths) == 0 && len(req.Tags) == 0 {
		return []string{""}
	}
	out := make([]string, 0, len(req.Paths)+len(req.Tags))
	for _, p := range req.Paths {
		if p != "" {
			out = append(out, cache.PrefixRaw+p)
		}
	}
	for _, t := range req.Tags {
		if t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []string{""}
	}
	return out
}

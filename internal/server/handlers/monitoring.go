package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"git.home.luguber.info/inful/docsite/internal/eventstore"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/indexer"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/server/responses"
	"git.home.luguber.info/inful/docsite/internal/version"
)

const defaultPassLimit = 20

// PassSource exposes the current indexing pass.
type PassSource interface {
	Pass() *indexer.Pass
}

// StylesheetWriter writes the syntax highlighting stylesheet.
type StylesheetWriter interface {
	WriteCSS(w io.Writer) error
}

// MonitoringHandlers contains health, history and asset handlers.
type MonitoringHandlers struct {
	source       string
	passes       PassSource
	history      eventstore.Store
	css          StylesheetWriter
	startTime    time.Time
	errorAdapter *errors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates a new monitoring handlers instance. history
// and css may be nil.
func NewMonitoringHandlers(source string, passes PassSource, history eventstore.Store, css StylesheetWriter) *MonitoringHandlers {
	return &MonitoringHandlers{
		source:       source,
		passes:       passes,
		history:      history,
		css:          css,
		startTime:    time.Now(),
		errorAdapter: errors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck handles GET /healthz. The service reports "starting"
// until the first pass completes.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "starting",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(h.startTime).Seconds(),
		Source:    h.source,
	}
	if p := h.passes.Pass(); p != nil {
		health.Status = "healthy"
		health.PassID = p.ID
		health.Documents = len(p.Documents)
	}
	respond(w, r, h.errorAdapter, health, "health")
}

// HandlePasses handles GET /api/passes?limit=N.
func (h *MonitoringHandlers) HandlePasses(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("pass history is disabled").Build())
		return
	}
	limit := defaultPassLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			verr := errors.ValidationError("limit must be a positive integer").
				WithContext("limit", raw).
				Build()
			h.errorAdapter.WriteErrorResponse(w, r, verr)
			return
		}
		limit = n
	}
	passes, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if passes == nil {
		passes = []eventstore.Pass{}
	}
	respond(w, r, h.errorAdapter, &responses.PassesResponse{Passes: passes}, "passes")
}

// HandleStylesheet handles GET /assets/highlight.css.
func (h *MonitoringHandlers) HandleStylesheet(w http.ResponseWriter, r *http.Request) {
	if h.css == nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.NotFoundError("stylesheet unavailable").Build())
		return
	}
	var buf bytes.Buffer
	if err := h.css.WriteCSS(&buf); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, errors.WrapError(err, errors.CategoryInternal, "failed to render stylesheet").Build())
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed writing stylesheet", logfields.Error(err))
	}
}

// Package responses defines API response types used by docsite HTTP handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/eventstore"
	"git.home.luguber.info/inful/docsite/internal/search"
)

// DocListResponse is the document listing.
type DocListResponse struct {
	Documents []docmodel.IndexEntry `json:"documents"`
	Total     int                   `json:"total"`
}

// SidebarResponse wraps the navigation tree.
type SidebarResponse struct {
	Sidebar []docmodel.SidebarNode `json:"sidebar"`
}

// SearchResponse is the result of a search query.
type SearchResponse struct {
	Query string       `json:"query"`
	State search.State `json:"state"`
	Total int          `json:"total"`
	Hits  []search.Hit `json:"hits"`
}

// PassesResponse lists the most recent indexing passes.
type PassesResponse struct {
	Passes []eventstore.Pass `json:"passes"`
}

// RevalidateRequest is the body of POST /api/revalidate.
type RevalidateRequest struct {
	Secret string   `json:"secret"`
	Paths  []string `json:"paths,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

// RevalidateResponse reports what a revalidation purged and the pass it started.
type RevalidateResponse struct {
	Revalidated bool      `json:"revalidated"`
	Purged      int       `json:"purged"`
	PassID      string    `json:"passId,omitempty"`
	Documents   int       `json:"documents"`
	Timestamp   time.Time `json:"timestamp"`
}

// HealthResponse represents the health check API response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    float64   `json:"uptime"`
	Source    string    `json:"source"`
	PassID    string    `json:"pass_id,omitempty"`
	Documents int       `json:"documents"`
}

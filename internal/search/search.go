// Package search ranks index entries against a free-text query.
package search

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
)

// MaxResults caps the number of hits returned by Search.
const MaxResults = 20

// Score weights. Contributions are additive.
const (
	ScoreTitle       = 100
	ScoreTitleExact  = 50
	ScoreTitlePrefix = 30
	ScoreDescription = 50
	ScoreCategory    = 40
	ScoreTag         = 30
	ScorePath        = 10
)

// State distinguishes an absent query from a query without matches.
type State string

const (
	StateNoQuery   State = "no_query"
	StateNoMatches State = "no_matches"
	StateMatches   State = "matches"
)

// MatchType names the highest weighted field a hit matched.
type MatchType string

const (
	MatchTitle       MatchType = "title"
	MatchDescription MatchType = "description"
	MatchCategory    MatchType = "category"
	MatchTag         MatchType = "tag"
	MatchPath        MatchType = "path"
)

// Hit is one ranked search result.
type Hit struct {
	docmodel.IndexEntry
	Score     int       `json:"score"`
	MatchType MatchType `json:"matchType"`
}

// Results is the outcome of a search.
type Results struct {
	Query string `json:"query"`
	State State  `json:"state"`
	Hits  []Hit  `json:"hits"`
}

// Index is an immutable set of entries to search.
type Index struct {
	entries []docmodel.IndexEntry
}

// New builds an index over entries. The slice order is the tie-break order
// for equal scores.
func New(entries []docmodel.IndexEntry) *Index {
	return &Index{entries: slices.Clone(entries)}
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Search matches query case-insensitively as a substring of each entry's
// fields and returns at most MaxResults hits by descending score.
func (ix *Index) Search(query string) Results {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return Results{Query: query, State: StateNoQuery, Hits: []Hit{}}
	}

	hits := make([]Hit, 0)
	for _, e := range ix.entries {
		if hit, ok := score(e, term); ok {
			hits = append(hits, hit)
		}
	}
	slices.SortStableFunc(hits, func(a, b Hit) int { return b.Score - a.Score })
	if len(hits) > MaxResults {
		hits = hits[:MaxResults]
	}

	state := StateMatches
	if len(hits) == 0 {
		state = StateNoMatches
	}
	return Results{Query: query, State: state, Hits: hits}
}

func score(e docmodel.IndexEntry, term string) (Hit, bool) {
	var (
		total int
		match MatchType
	)
	mark := func(m MatchType) {
		if match == "" {
			match = m
		}
	}

	if title := strings.ToLower(e.Title); strings.Contains(title, term) {
		total += ScoreTitle
		if title == term {
			total += ScoreTitleExact
		}
		if strings.HasPrefix(title, term) {
			total += ScoreTitlePrefix
		}
		mark(MatchTitle)
	}
	if strings.Contains(strings.ToLower(e.Description), term) {
		total += ScoreDescription
		mark(MatchDescription)
	}
	if strings.Contains(strings.ToLower(e.Category), term) {
		total += ScoreCategory
		mark(MatchCategory)
	}
	if slices.ContainsFunc(e.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), term)
	}) {
		total += ScoreTag
		mark(MatchTag)
	}
	if strings.Contains(strings.ToLower(e.Path), term) {
		total += ScorePath
		mark(MatchPath)
	}

	if total == 0 {
		return Hit{}, false
	}
	return Hit{IndexEntry: e, Score: total, MatchType: match}, true
}

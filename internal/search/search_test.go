package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
)

func TestSearch_Scoring(t *testing.T) {
	ix := New([]docmodel.IndexEntry{
		{Slug: "tagged", Path: "docs/a.md", Title: "Setup", Tags: []string{"Guide"}},
		{Slug: "exact", Path: "docs/b.md", Title: "Guide"},
	})

	res := ix.Search("  GUIDE ")

	require.Equal(t, StateMatches, res.State)
	require.Len(t, res.Hits, 2)
	assert.Equal(t, "exact", res.Hits[0].Slug)
	assert.Equal(t, 180, res.Hits[0].Score)
	assert.Equal(t, MatchTitle, res.Hits[0].MatchType)
	assert.Equal(t, "tagged", res.Hits[1].Slug)
	assert.Equal(t, 30, res.Hits[1].Score)
	assert.Equal(t, MatchTag, res.Hits[1].MatchType)
}

func TestSearch_AdditiveFields(t *testing.T) {
	ix := New([]docmodel.IndexEntry{{
		Slug:        "all",
		Path:        "docs/deploy/deploy.md",
		Title:       "How to deploy",
		Description: "deploy steps",
		Category:    "deploy",
		Tags:        []string{"deployment"},
	}})

	res := ix.Search("deploy")
	require.Len(t, res.Hits, 1)
	assert.Equal(t, 100+50+40+30+10, res.Hits[0].Score)
}

func TestSearch_MatchTypeFollowsFieldWeight(t *testing.T) {
	ix := New([]docmodel.IndexEntry{
		{Slug: "d", Title: "x", Description: "about caching"},
		{Slug: "c", Title: "x", Category: "caching"},
		{Slug: "p", Title: "x", Path: "docs/caching.md"},
	})

	res := ix.Search("caching")
	require.Len(t, res.Hits, 3)
	assert.Equal(t, MatchDescription, res.Hits[0].MatchType)
	assert.Equal(t, MatchCategory, res.Hits[1].MatchType)
	assert.Equal(t, MatchPath, res.Hits[2].MatchType)
}

func TestSearch_TiesKeepOriginalOrder(t *testing.T) {
	ix := New([]docmodel.IndexEntry{
		{Slug: "first", Tags: []string{"ops"}},
		{Slug: "second", Tags: []string{"ops"}},
		{Slug: "third", Tags: []string{"ops"}},
	})

	res := ix.Search("ops")
	require.Len(t, res.Hits, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{res.Hits[0].Slug, res.Hits[1].Slug, res.Hits[2].Slug})
}

func TestSearch_CapsResults(t *testing.T) {
	entries := make([]docmodel.IndexEntry, 0, 30)
	for i := 0; i < 30; i++ {
		entries = append(entries, docmodel.IndexEntry{Slug: fmt.Sprintf("doc-%d", i), Title: "Topic"})
	}

	res := New(entries).Search("topic")
	assert.Len(t, res.Hits, MaxResults)
}

func TestSearch_States(t *testing.T) {
	ix := New([]docmodel.IndexEntry{{Slug: "a", Title: "Alpha"}})

	blank := ix.Search("   ")
	assert.Equal(t, StateNoQuery, blank.State)
	assert.Empty(t, blank.Hits)

	none := ix.Search("zzz")
	assert.Equal(t, StateNoMatches, none.State)
	assert.Empty(t, none.Hits)
}

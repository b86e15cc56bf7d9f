package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
)

func sampleDocs() []docmodel.Document {
	pos := 1
	return []docmodel.Document{
		{
			Path: "docs/guide/intro.md", Slug: "guide-1-intro",
			Metadata:    docmodel.Metadata{Title: "Intro", Category: "Guide", Tags: []string{"start", "basics"}, SidebarPosition: &pos},
			RawMarkdown: "# Intro\n", HTML: `<h1 id="intro">Intro</h1>`,
			TOC:         []docmodel.TocEntry{{ID: "intro", Text: "Intro", Level: 1}},
			ReadingTime: "1 min read", Fingerprint: "abc",
		},
		{
			Path: "docs/api/reference.md", Slug: "api-reference",
			Metadata: docmodel.Metadata{Title: "Reference", Category: "API", Tags: []string{"basics"}},
		},
	}
}

func TestEncodeDocument_Layout(t *testing.T) {
	data, err := EncodeDocument(sampleDocs()[0])
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "<h1 id=\"intro\">Intro</h1>", raw["content"])
	assert.Equal(t, "# Intro\n", raw["raw"])
	meta := raw["metadata"].(map[string]any)
	assert.Equal(t, "1 min read", meta["readingTime"])
	assert.Equal(t, "Intro", meta["title"])
	assert.InDelta(t, 1, meta["sidebar_position"], 0)

	doc, err := DecodeDocument(data)
	require.NoError(t, err)
	assert.Equal(t, sampleDocs()[0], doc)
}

func TestDecodeDocument_Invalid(t *testing.T) {
	_, err := DecodeDocument([]byte("{"))
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	info := Summarize(sampleDocs(), "v2", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	assert.Equal(t, docmodel.SnapshotInfo{
		GeneratedAt: "2026-01-02T03:04:05Z",
		Version:     "v2",
		TotalDocs:   2,
		Categories:  []string{"API", "Guide"},
		Tags:        []string{"basics", "start"},
	}, info)
}

func TestWriter_WritesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	w := Writer{Dir: dir, Namespace: "rendered"}
	docs := sampleDocs()

	require.NoError(t, w.Write(context.Background(), Contents{
		Documents: docs,
		Sidebar:   []docmodel.SidebarNode{{Kind: docmodel.KindDoc, Label: "Intro", Slug: "guide-1-intro"}},
		Info:      Summarize(docs, "latest", time.Now()),
	}))

	root := filepath.Join(dir, "rendered")
	for _, name := range []string{IndexFile, SidebarFile, MetadataFile, "docs/guide-1-intro.json", "docs/api-reference.json"} {
		assert.FileExists(t, filepath.Join(root, filepath.FromSlash(name)))
	}

	var index []docmodel.IndexEntry
	data, err := os.ReadFile(filepath.Join(root, IndexFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &index))
	assert.Equal(t, []docmodel.IndexEntry{docs[0].Entry(), docs[1].Entry()}, index)

	// A second write replaces the previous snapshot entirely.
	require.NoError(t, w.Write(context.Background(), Contents{Documents: docs[1:]}))
	assert.NoFileExists(t, filepath.Join(root, "docs", "guide-1-intro.json"))
	assert.NoDirExists(t, root+"_stage")
	assert.NoDirExists(t, root+".prev")
}

func TestWriter_FailedPromotionRestoresPrevious(t *testing.T) {
	dir := t.TempDir()
	w := Writer{Dir: dir, Namespace: "rendered"}
	docs := sampleDocs()
	require.NoError(t, w.Write(context.Background(), Contents{Documents: docs}))

	root := w.Target()
	stage := root + "_stage"
	orig := rename
	t.Cleanup(func() { rename = orig })
	rename = func(from, to string) error {
		if from == stage {
			return errors.New("disk full")
		}
		return orig(from, to)
	}

	err := w.Write(context.Background(), Contents{Documents: docs[1:]})
	require.Error(t, err)
	assert.FileExists(t, filepath.Join(root, "docs", "guide-1-intro.json"), "previous snapshot is back in place")
	assert.NoDirExists(t, stage)
	assert.NoDirExists(t, root+".prev")
}

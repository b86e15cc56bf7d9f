// Package snapshot defines the pre-rendered corpus layout and writes it.
//
// A snapshot lives under a namespace directory:
//
//	<namespace>/docs-index.json   []IndexEntry
//	<namespace>/sidebar.json      []SidebarNode
//	<namespace>/metadata.json     SnapshotInfo
//	<namespace>/docs/<slug>.json  one rendered document
package snapshot

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
)

// File names inside a snapshot namespace.
const (
	IndexFile    = "docs-index.json"
	SidebarFile  = "sidebar.json"
	MetadataFile = "metadata.json"
	DocsDir      = "docs"
)

// DocFile returns the snapshot-relative file name of a document payload.
func DocFile(slug string) string {
	return DocsDir + "/" + slug + ".json"
}

// payload is the on-disk shape of one document. Reading time sits inside
// metadata.
type payload struct {
	Path        string              `json:"path"`
	Slug        string              `json:"slug"`
	Metadata    payloadMetadata     `json:"metadata"`
	Content     string              `json:"content"`
	TOC         []docmodel.TocEntry `json:"toc"`
	Raw         string              `json:"raw"`
	Fingerprint string              `json:"fingerprint,omitempty"`
}

type payloadMetadata struct {
	docmodel.Metadata
	ReadingTime string `json:"readingTime,omitempty"`
}

// EncodeDocument serializes a document payload.
func EncodeDocument(doc docmodel.Document) ([]byte, error) {
	toc := doc.TOC
	if toc == nil {
		toc = []docmodel.TocEntry{}
	}
	return json.MarshalIndent(payload{
		Path:        doc.Path,
		Slug:        doc.Slug,
		Metadata:    payloadMetadata{Metadata: doc.Metadata, ReadingTime: doc.ReadingTime},
		Content:     doc.HTML,
		TOC:         toc,
		Raw:         doc.RawMarkdown,
		Fingerprint: doc.Fingerprint,
	}, "", "  ")
}

// DecodeDocument parses a document payload.
func DecodeDocument(data []byte) (docmodel.Document, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return docmodel.Document{}, fmt.Errorf("decode document payload: %w", err)
	}
	return docmodel.Document{
		Path:        p.Path,
		Slug:        p.Slug,
		Metadata:    p.Metadata.Metadata,
		RawMarkdown: p.Raw,
		HTML:        p.Content,
		TOC:         p.TOC,
		ReadingTime: p.Metadata.ReadingTime,
		Fingerprint: p.Fingerprint,
	}, nil
}

// Summarize builds the metadata summary: document count plus the distinct
// categories and tags, each sorted.
func Summarize(docs []docmodel.Document, version string, generatedAt time.Time) docmodel.SnapshotInfo {
	categories := []string{}
	tags := []string{}
	for _, d := range docs {
		if d.Metadata.Category != "" {
			categories = append(categories, d.Metadata.Category)
		}
		tags = append(tags, d.Metadata.Tags...)
	}
	slices.Sort(categories)
	slices.Sort(tags)
	return docmodel.SnapshotInfo{
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Version:     version,
		TotalDocs:   len(docs),
		Categories:  slices.Compact(categories),
		Tags:        slices.Compact(tags),
	}
}

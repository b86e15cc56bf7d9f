// Package docmodel holds the value types shared by the indexing pipeline:
// documents, their metadata, table of contents entries, sidebar nodes and the
// search/list projection.
package docmodel

// Metadata is the closed set of front-matter fields docsite understands.
// Unknown front-matter keys are ignored.
type Metadata struct {
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Date            string   `json:"date,omitempty"`
	Category        string   `json:"category,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Author          string   `json:"author,omitempty"`
	SidebarPosition *int     `json:"sidebar_position,omitempty"`
	SidebarLabel    string   `json:"sidebar_label,omitempty"`
}

// TocEntry is one heading of a document's table of contents.
type TocEntry struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Document is a fully processed Markdown file. Documents are created once per
// indexing pass and never mutated afterwards.
type Document struct {
	Path        string     `json:"path"`
	Slug        string     `json:"slug"`
	Metadata    Metadata   `json:"metadata"`
	RawMarkdown string     `json:"raw,omitempty"`
	HTML        string     `json:"content,omitempty"`
	TOC         []TocEntry `json:"toc,omitempty"`
	ReadingTime string     `json:"readingTime,omitempty"`
	Fingerprint string     `json:"fingerprint,omitempty"`
}

// Entry projects the document onto its index entry.
func (d Document) Entry() IndexEntry {
	return IndexEntry{
		Slug:        d.Slug,
		Path:        d.Path,
		Title:       d.Metadata.Title,
		Description: d.Metadata.Description,
		Date:        d.Metadata.Date,
		Category:    d.Metadata.Category,
		Tags:        d.Metadata.Tags,
	}
}

// IndexEntry is the metadata-only projection used by listings and search.
type IndexEntry struct {
	Slug        string   `json:"slug"`
	Path        string   `json:"path"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Date        string   `json:"date,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Document expands an index entry into a metadata-only document with no HTML or TOC.
func (e IndexEntry) Document() Document {
	return Document{
		Path: e.Path,
		Slug: e.Slug,
		Metadata: Metadata{
			Title:       e.Title,
			Description: e.Description,
			Date:        e.Date,
			Category:    e.Category,
			Tags:        e.Tags,
		},
	}
}

// SnapshotInfo summarizes a rendered snapshot (metadata.json).
type SnapshotInfo struct {
	GeneratedAt string   `json:"generatedAt"`
	Version     string   `json:"version"`
	TotalDocs   int      `json:"totalDocs"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
}

// Package markdown converts Markdown documents into sanitized, annotated HTML
// and extracts their table of contents.
package markdown

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
)

// DefaultStyle is the chroma style used for highlighting CSS.
const DefaultStyle = "github"

// Options controls conversion.
type Options struct {
	// TrustHTML skips sanitization so embedded HTML passes through.
	TrustHTML bool
	// Style names the chroma style exported by WriteCSS.
	Style string
}

// Result is the output of converting one Markdown file.
type Result struct {
	Metadata    docmodel.Metadata
	Body        []byte
	HTML        string
	TOC         []docmodel.TocEntry
	ReadingTime string
	Fingerprint string
}

// Converter renders Markdown to HTML. It is safe for concurrent use.
type Converter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	opts   Options

	cssOnce sync.Once
	css     []byte
	cssErr  error
}

// NewConverter builds a converter with GFM, class based syntax highlighting and
// deterministic heading ids.
func NewConverter(opts Options) *Converter {
	if opts.Style == "" {
		opts.Style = DefaultStyle
	}
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle(opts.Style),
				highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		// Raw HTML is kept here and filtered by the sanitizer afterwards.
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	c := &Converter{md: md, opts: opts}
	if !opts.TrustHTML {
		c.policy = newPolicy()
	}
	return c
}

// Convert separates front-matter from raw, renders the body and collects the
// derived document fields. The metadata title is left as written; an empty
// title is for the caller to fill.
func (c *Converter) Convert(raw []byte) (*Result, error) {
	doc, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, errors.MarkdownError("invalid front-matter").WithCause(err).Build()
	}

	out, err := c.Render(doc.Body)
	if err != nil {
		return nil, errors.MarkdownError("render failed").WithCause(err).Build()
	}

	return &Result{
		Metadata:    doc.Metadata,
		Body:        doc.Body,
		HTML:        out,
		TOC:         ExtractTOC(doc.Body),
		ReadingTime: ReadingTime(string(doc.Body)),
		Fingerprint: doc.Fingerprint(),
	}, nil
}

// Render converts a Markdown body (front-matter removed) into HTML.
func (c *Converter) Render(body []byte) (string, error) {
	var buf bytes.Buffer
	ctx := parser.NewContext(parser.WithIDs(headingIDs{}))
	if err := c.md.Convert(body, &buf, parser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	annotated, err := annotate(buf.Bytes())
	if err != nil {
		return "", fmt.Errorf("annotate html: %w", err)
	}
	if c.policy != nil {
		annotated = c.policy.SanitizeBytes(annotated)
	}
	return string(annotated), nil
}

// WriteCSS writes the stylesheet for the highlighter classes.
func (c *Converter) WriteCSS(w io.Writer) error {
	c.cssOnce.Do(func() {
		var buf bytes.Buffer
		formatter := chromahtml.New(chromahtml.WithClasses(true))
		c.cssErr = formatter.WriteCSS(&buf, styles.Get(c.opts.Style))
		c.css = buf.Bytes()
	})
	if c.cssErr != nil {
		return c.cssErr
	}
	_, err := w.Write(c.css)
	return err
}

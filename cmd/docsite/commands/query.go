package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/search"
)

// IndexCmd implements the 'index' command.
type IndexCmd struct{}

func (c *IndexCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer closeApp(a)

	entries := a.Indexer.Entries(ctx)
	if root.JSON {
		return printJSON(g.out(), entries)
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SLUG\tTITLE\tCATEGORY\tPATH")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Slug, e.Title, e.Category, e.Path)
	}
	if p := a.Indexer.Pass(); p != nil && p.Failures() > 0 {
		_, _ = fmt.Fprintf(tw, "\n%d document(s) failed to index\n", p.Failures())
	}
	return tw.Flush()
}

// ShowCmd implements the 'show' command.
type ShowCmd struct {
	Slug string `arg:"" help:"Document slug"`
	Raw  bool   `help:"Print the Markdown body instead of HTML"`
}

func (c *ShowCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer closeApp(a)

	doc, ok := a.Indexer.GetBySlug(ctx, c.Slug)
	if !ok {
		return errors.NotFoundError("document not found").WithContext("slug", c.Slug).Build()
	}
	if root.JSON {
		return printJSON(g.out(), doc)
	}
	w := g.out()
	_, _ = fmt.Fprintf(w, "# %s\n", doc.Metadata.Title)
	_, _ = fmt.Fprintf(w, "path: %s\n", doc.Path)
	if doc.ReadingTime != "" {
		_, _ = fmt.Fprintf(w, "reading time: %s\n", doc.ReadingTime)
	}
	if len(doc.TOC) > 0 {
		_, _ = fmt.Fprintln(w, "contents:")
		for _, e := range doc.TOC {
			_, _ = fmt.Fprintf(w, "%s- %s (#%s)\n", strings.Repeat("  ", max(e.Level-1, 0)), e.Text, e.ID)
		}
	}
	_, _ = fmt.Fprintln(w)
	if c.Raw {
		_, err = fmt.Fprintln(w, doc.RawMarkdown)
	} else {
		_, err = fmt.Fprintln(w, doc.HTML)
	}
	return err
}

// SidebarCmd implements the 'sidebar' command.
type SidebarCmd struct{}

func (c *SidebarCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer closeApp(a)

	nodes := a.Indexer.Sidebar(ctx)
	if root.JSON {
		return printJSON(g.out(), nodes)
	}
	printTree(g.out(), nodes, 0)
	return nil
}

func printTree(w io.Writer, nodes []docmodel.SidebarNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.Kind == docmodel.KindCategory {
			_, _ = fmt.Fprintf(w, "%s%s/\n", indent, n.Label)
			printTree(w, n.Items, depth+1)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s%s [%s]\n", indent, n.Label, n.Slug)
	}
}

// SearchCmd implements the 'search' command.
type SearchCmd struct {
	Query []string `arg:"" optional:"" help:"Search terms"`
}

func (c *SearchCmd) Run(g *Global, root *CLI) error {
	ctx := context.Background()
	a, err := openApp(ctx, g, root)
	if err != nil {
		return err
	}
	defer closeApp(a)

	res := a.Indexer.Search(ctx, strings.Join(c.Query, " "))
	if root.JSON {
		return printJSON(g.out(), res)
	}
	w := g.out()
	switch res.State {
	case search.StateNoQuery:
		_, _ = fmt.Fprintln(w, "Enter a search query.")
		return nil
	case search.StateNoMatches:
		_, _ = fmt.Fprintf(w, "No documents match %q.\n", res.Query)
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SCORE\tMATCH\tSLUG\tTITLE")
	for _, h := range res.Hits {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", h.Score, h.MatchType, h.Slug, h.Title)
	}
	return tw.Flush()
}

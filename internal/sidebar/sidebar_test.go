package sidebar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
)

func intPtr(v int) *int { return &v }

func labels(nodes []docmodel.SidebarNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Label)
	}
	return out
}

func TestSort_PositionedFirstThenLabel(t *testing.T) {
	nodes := []docmodel.SidebarNode{
		{Kind: docmodel.KindDoc, Label: "A", Position: intPtr(2)},
		{Kind: docmodel.KindDoc, Label: "B", Position: intPtr(1)},
		{Kind: docmodel.KindDoc, Label: "Zebra"},
		{Kind: docmodel.KindDoc, Label: "Apple"},
	}

	Sort(nodes)

	assert.Equal(t, []string{"B", "A", "Apple", "Zebra"}, labels(nodes))
}

func TestSort_TieBreakers(t *testing.T) {
	nodes := []docmodel.SidebarNode{
		{Label: "beta", Path: "docs/2.md"},
		{Label: "Beta", Path: "docs/3.md"},
		{Label: "alpha", Path: "docs/b.md"},
		{Label: "alpha", Path: "docs/a.md"},
		{Label: "same", Position: intPtr(1), Path: "docs/z.md"},
		{Label: "Same", Position: intPtr(1), Path: "docs/y.md"},
	}

	Sort(nodes)

	var paths []string
	for _, n := range nodes {
		paths = append(paths, n.Path)
	}
	assert.Equal(t, []string{"docs/y.md", "docs/z.md", "docs/a.md", "docs/b.md", "docs/3.md", "docs/2.md"}, paths)
}

func TestBuild(t *testing.T) {
	dirs := []string{"docs/guide/advanced", "docs/guide", "docs/api_reference", "docs"}
	docs := []docmodel.Document{
		{Path: "docs/intro.md", Slug: "1-intro", Metadata: docmodel.Metadata{Title: "Introduction", SidebarPosition: intPtr(1)}},
		{Path: "docs/guide/setup.md", Slug: "guide-2-setup", Metadata: docmodel.Metadata{Title: "Setup", SidebarPosition: intPtr(2)}},
		{Path: "docs/guide/install.md", Slug: "guide-1-install", Metadata: docmodel.Metadata{Title: "Install", SidebarLabel: "Installing", SidebarPosition: intPtr(1)}},
		{Path: "docs/guide/advanced/tuning-tips.md", Slug: "guide-advanced-tuning-tips"},
		{Path: "docs/api_reference/endpoints.md", Slug: "api_reference-endpoints", Metadata: docmodel.Metadata{Title: "Endpoints"}},
	}

	tree := Build("docs", dirs, docs)

	require.Equal(t, []string{"Introduction", "Api Reference", "Guide"}, labels(tree))
	assert.Equal(t, docmodel.KindDoc, tree[0].Kind)
	assert.Equal(t, "1-intro", tree[0].Slug)

	guide := tree[2]
	require.Equal(t, docmodel.KindCategory, guide.Kind)
	assert.Nil(t, guide.Position)
	require.Equal(t, []string{"Installing", "Setup", "Advanced"}, labels(guide.Items))

	advanced := guide.Items[2]
	require.Len(t, advanced.Items, 1)
	assert.Equal(t, "Tuning Tips", advanced.Items[0].Label)
}

func TestBuild_EmptyDirectoryStillListed(t *testing.T) {
	tree := Build("docs", []string{"docs/empty"}, nil)
	require.Len(t, tree, 1)
	assert.Equal(t, docmodel.KindCategory, tree[0].Kind)
	assert.Empty(t, tree[0].Items)
}

func TestBuild_UnknownParentAttachesToTop(t *testing.T) {
	docs := []docmodel.Document{{Path: "docs/orphan/page.md", Slug: "orphan-page", Metadata: docmodel.Metadata{Title: "Page"}}}
	tree := Build("docs", nil, docs)
	require.Len(t, tree, 1)
	assert.Equal(t, "Page", tree[0].Label)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Getting Started", Humanize("getting-started"))
	assert.Equal(t, "API Reference", Humanize("API_reference"))
	assert.Equal(t, "V1.2 Notes", Humanize("v1.2-notes"))
}

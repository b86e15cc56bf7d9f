package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/source"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for p, c := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(c), 0o600))
	}
}

func TestSource(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"README.md":            "# Repo",
		"docs/intro.md":        "# Intro",
		"docs/guide/setup.mdx": "# Setup",
		"docs/guide/notes.txt": "x",
		"docs/.drafts/wip.md":  "# WIP",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "empty"), 0o750))

	src := New(root, "docs")
	ctx := context.Background()

	docs, err := src.ListDocumentPaths(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/guide/setup.mdx", "docs/intro.md"}, docs)

	dirs, err := src.ListDirectories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/empty", "docs/guide"}, dirs)

	raw, err := src.GetRawContent(ctx, "docs/intro.md")
	require.NoError(t, err)
	assert.Equal(t, "# Intro", string(raw))

	_, err = src.GetRawContent(ctx, "docs/missing.md")
	assert.ErrorIs(t, err, source.ErrNotFound)
	_, err = src.GetRawContent(ctx, "../outside.md")
	assert.ErrorIs(t, err, source.ErrNotFound)
	assert.Equal(t, "local", src.Name())
}

func TestSource_MissingRoot(t *testing.T) {
	src := New(t.TempDir(), "docs")
	_, err := src.ListDocumentPaths(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategorySource))
}

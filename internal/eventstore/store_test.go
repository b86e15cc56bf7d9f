package eventstore

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"pass-1", "pass-2", "pass-3"} {
		require.NoError(t, store.Append(ctx, Pass{
			ID:        id,
			Source:    "github-api",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Duration:  1500 * time.Millisecond,
			Documents: 10 + i,
			Failures:  i,
		}))
	}

	passes, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, passes, 2)
	assert.Equal(t, "pass-3", passes[0].ID)
	assert.Equal(t, "pass-2", passes[1].ID)
	assert.Equal(t, 12, passes[0].Documents)
	assert.Equal(t, 2, passes[0].Failures)
	assert.Equal(t, 1500*time.Millisecond, passes[0].Duration)
	assert.True(t, passes[0].StartedAt.Equal(base.Add(2*time.Minute)))

	all, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAppendDuplicateID(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	p := Pass{ID: "dup", Source: "local", StartedAt: time.Now()}

	require.NoError(t, store.Append(ctx, p))
	err := store.Append(ctx, p)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryEventStore))
}

func TestRecentEmpty(t *testing.T) {
	passes, err := newMemoryStore(t).Recent(t.Context(), 5)
	require.NoError(t, err)
	assert.Empty(t, passes)
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), Pass{ID: "p", Source: "git", StartedAt: time.Now()}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	passes, err := reopened.Recent(t.Context(), 10)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, "git", passes[0].Source)
}

func TestPassJSON(t *testing.T) {
	p := Pass{ID: "p1", Source: "local", StartedAt: time.Unix(10, 0).UTC(), Duration: 1500 * time.Millisecond, Documents: 3, Failures: 1}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"durationMs":1500`)
	assert.Contains(t, string(data), `"passId":"p1"`)

	var back Pass
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, p, back)
}

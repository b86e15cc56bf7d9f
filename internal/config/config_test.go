package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docsite.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
source:
  type: github-api
github:
  repo: acme/handbook
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, SourceGitHubAPI, cfg.Source.Type)
	assert.Equal(t, "docs", cfg.Source.DocsPath)
	assert.Equal(t, "main", cfg.GitHub.Branch)
	assert.Equal(t, "acme", cfg.GitHub.Owner())
	assert.Equal(t, "handbook", cfg.GitHub.Name())
	assert.Equal(t, 8, cfg.Indexer.Concurrency)
	assert.Equal(t, CacheMemory, cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TreeTTL)
	assert.Equal(t, 60*time.Second, cfg.Cache.RawTTL)
	assert.Equal(t, time.Hour, cfg.Cache.SnapshotTTL)
	assert.Equal(t, "rendered/latest", cfg.Snapshot.Ref())
	assert.Equal(t, "https://github.com/acme/handbook.git", cfg.Source.GitURL)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.True(t, cfg.Server.WatchEnabled())
}

func TestLoad_ParsesDurations(t *testing.T) {
	path := writeConfig(t, `
source:
  type: local
  local_dir: ./site
cache:
  raw_ttl: 2m
retry:
  backoff: LINEAR
  initial: 1s
  max: 4s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, cfg.Cache.RawTTL)
	assert.Equal(t, RetryBackoffLinear, cfg.Retry.Backoff)
	assert.Equal(t, time.Second, cfg.Retry.Initial)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvSource, "pre-rendered")
	t.Setenv(EnvGitHubRepo, "acme/handbook")
	t.Setenv(EnvRenderedVersion, "v2")
	t.Setenv(EnvDocsPath, "/content/")
	t.Setenv(EnvLogLevel, "debug")

	path := writeConfig(t, "source:\n  type: local\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, SourcePreRendered, cfg.Source.Type)
	assert.Equal(t, "acme/handbook", cfg.GitHub.Repo)
	assert.Equal(t, "rendered/v2", cfg.Snapshot.Ref())
	assert.Equal(t, "content", cfg.Source.DocsPath)
	assert.Equal(t, LogLevelDebug, cfg.Logging.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{
			name:  "github source without repo",
			cfg:   Config{Source: SourceConfig{Type: SourceGitHubAPI}},
			field: "github.repo",
		},
		{
			name:  "malformed repo",
			cfg:   Config{Source: SourceConfig{Type: SourceGitHubAPI}, GitHub: GitHubConfig{Repo: "handbook"}},
			field: "github.repo",
		},
		{
			name:  "unknown source type",
			cfg:   Config{Source: SourceConfig{Type: "ftp"}},
			field: "source.type",
		},
		{
			name:  "snapshot dir store without dir",
			cfg:   Config{Source: SourceConfig{Type: SourcePreRendered}, Snapshot: SnapshotConfig{Store: SnapshotStoreDir}},
			field: "snapshot.dir",
		},
		{
			name:  "redis without address",
			cfg:   Config{Source: SourceConfig{Type: SourceLocal}, Cache: CacheConfig{Backend: CacheRedis}},
			field: "cache.redis_addr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			err := cfg.Validate()
			require.Error(t, err)

			classified, ok := derrors.AsClassified(err)
			require.True(t, ok)
			assert.True(t, classified.IsFatal())
			field, _ := classified.Context().GetString("field")
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "docsite.yaml")

	require.NoError(t, Init(path, false))
	require.Error(t, Init(path, false), "existing file must not be overwritten")
	require.NoError(t, Init(path, true))

	t.Setenv(EnvGitHubRepo, "acme/handbook")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "acme/handbook", cfg.GitHub.Repo)
	assert.Equal(t, 10*time.Minute, cfg.Server.RefreshInterval)
}

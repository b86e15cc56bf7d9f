package config

import (
	"strings"
	"time"
)

// Default values applied to omitted settings.
const (
	DefaultDocsPath       = "docs"
	DefaultBranch         = "main"
	DefaultConcurrency    = 8
	DefaultAddr           = ":8080"
	DefaultNamespace      = "rendered"
	DefaultBranchPrefix   = "rendered/"
	DefaultVersion        = "latest"
	DefaultNATSBucket     = "docsite"
	DefaultHighlightStyle = "github"
	DefaultHistoryPath    = ".docsite/history.db"

	DefaultTreeTTL     = 5 * time.Minute
	DefaultRawTTL      = 60 * time.Second
	DefaultSnapshotTTL = time.Hour
	DefaultCloneTTL    = 5 * time.Minute
)

// ApplyDefaults normalizes enumerations and fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Source.Type == "" {
		c.Source.Type = SourceGitHubAPI
	} else if st := NormalizeSourceType(string(c.Source.Type)); st != "" {
		c.Source.Type = st
	}
	c.Source.DocsPath = strings.Trim(strings.TrimSpace(c.Source.DocsPath), "/")
	if c.Source.DocsPath == "" {
		c.Source.DocsPath = DefaultDocsPath
	}
	if c.Source.LocalDir == "" {
		c.Source.LocalDir = "."
	}
	if c.Source.CloneTTL <= 0 {
		c.Source.CloneTTL = DefaultCloneTTL
	}
	if c.Source.GitURL == "" && c.GitHub.Repo != "" {
		c.Source.GitURL = "https://github.com/" + c.GitHub.Repo + ".git"
	}

	if c.GitHub.Branch == "" {
		c.GitHub.Branch = DefaultBranch
	}

	if c.Snapshot.Store == "" {
		c.Snapshot.Store = SnapshotStoreGitHub
		if c.Snapshot.Dir != "" {
			c.Snapshot.Store = SnapshotStoreDir
		}
	} else if s := NormalizeSnapshotStore(string(c.Snapshot.Store)); s != "" {
		c.Snapshot.Store = s
	}
	if c.Snapshot.Namespace == "" {
		c.Snapshot.Namespace = DefaultNamespace
	}
	if c.Snapshot.BranchPrefix == "" {
		c.Snapshot.BranchPrefix = DefaultBranchPrefix
	}
	if c.Snapshot.Version == "" {
		c.Snapshot.Version = DefaultVersion
	}

	if c.Markdown.HighlightStyle == "" {
		c.Markdown.HighlightStyle = DefaultHighlightStyle
	}

	if c.Indexer.Concurrency <= 0 {
		c.Indexer.Concurrency = DefaultConcurrency
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheMemory
	} else if b := NormalizeCacheBackend(string(c.Cache.Backend)); b != "" {
		c.Cache.Backend = b
	}
	if c.Cache.NATSBucket == "" {
		c.Cache.NATSBucket = DefaultNATSBucket
	}
	if c.Cache.TreeTTL <= 0 {
		c.Cache.TreeTTL = DefaultTreeTTL
	}
	if c.Cache.RawTTL <= 0 {
		c.Cache.RawTTL = DefaultRawTTL
	}
	if c.Cache.SnapshotTTL <= 0 {
		c.Cache.SnapshotTTL = DefaultSnapshotTTL
	}

	if c.Retry.Backoff == "" {
		c.Retry.Backoff = RetryBackoffExponential
	} else if m := NormalizeRetryBackoff(string(c.Retry.Backoff)); m != "" {
		c.Retry.Backoff = m
	}
	if c.Retry.Initial <= 0 {
		c.Retry.Initial = 500 * time.Millisecond
	}
	if c.Retry.Max <= 0 {
		c.Retry.Max = 10 * time.Second
	}
	// Negative disables retries.
	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = 3
	}

	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}

	if c.History.Path == "" {
		c.History.Path = DefaultHistoryPath
	}

	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "docsite.yaml"

// Config is the complete docsite configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	GitHub   GitHubConfig   `yaml:"github"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Markdown MarkdownConfig `yaml:"markdown"`
	Indexer  IndexerConfig  `yaml:"indexer"`
	Cache    CacheConfig    `yaml:"cache"`
	Retry    RetryConfig    `yaml:"retry"`
	Server   ServerConfig   `yaml:"server"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SourceConfig selects and parameterizes the content source.
type SourceConfig struct {
	Type     SourceType    `yaml:"type"`
	DocsPath string        `yaml:"docs_path"`         // documents root inside the repository
	LocalDir string        `yaml:"local_dir"`         // repository root for the local source
	GitURL   string        `yaml:"git_url,omitempty"` // clone URL for the git source, derived from github.repo when empty
	CloneTTL time.Duration `yaml:"clone_ttl"`         // in-memory checkout age before re-cloning
}

// GitHubConfig identifies the remote repository.
type GitHubConfig struct {
	Repo   string `yaml:"repo"` // owner/name
	Branch string `yaml:"branch"`
	Token  string `yaml:"token,omitempty"`
	APIURL string `yaml:"api_url,omitempty"`
}

// Owner returns the repository owner part of Repo.
func (g GitHubConfig) Owner() string {
	owner, _, _ := strings.Cut(g.Repo, "/")
	return owner
}

// Name returns the repository name part of Repo.
func (g GitHubConfig) Name() string {
	_, name, _ := strings.Cut(g.Repo, "/")
	return name
}

// SnapshotConfig locates pre-rendered snapshots.
type SnapshotConfig struct {
	Store        SnapshotStore `yaml:"store"`
	Dir          string        `yaml:"dir,omitempty"`
	Namespace    string        `yaml:"namespace"`
	BranchPrefix string        `yaml:"branch_prefix"`
	Version      string        `yaml:"version"`
}

// Ref returns the repository reference holding the configured snapshot version.
func (s SnapshotConfig) Ref() string {
	return s.BranchPrefix + s.Version
}

// MarkdownConfig controls conversion.
type MarkdownConfig struct {
	TrustHTML      bool   `yaml:"trust_html"`
	HighlightStyle string `yaml:"highlight_style"`
}

// IndexerConfig controls the indexing pass.
type IndexerConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// CacheConfig selects the response cache backend and entry lifetimes.
type CacheConfig struct {
	Backend       CacheBackend  `yaml:"backend"`
	RedisAddr     string        `yaml:"redis_addr,omitempty"`
	RedisPassword string        `yaml:"redis_password,omitempty"`
	RedisDB       int           `yaml:"redis_db,omitempty"`
	NATSURL       string        `yaml:"nats_url,omitempty"`
	NATSBucket    string        `yaml:"nats_bucket,omitempty"`
	TreeTTL       time.Duration `yaml:"tree_ttl"`
	RawTTL        time.Duration `yaml:"raw_ttl"`
	SnapshotTTL   time.Duration `yaml:"snapshot_ttl"`
}

// RetryConfig controls retries of transient remote failures.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff"`
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries int              `yaml:"max_retries"`
}

// ServerConfig controls the HTTP surface of `docsite serve`.
type ServerConfig struct {
	Addr             string        `yaml:"addr"`
	RevalidateSecret string        `yaml:"revalidate_secret,omitempty"`
	RefreshInterval  time.Duration `yaml:"refresh_interval"`
	WatchLocal       *bool         `yaml:"watch_local,omitempty"`
}

// WatchEnabled reports whether local source changes trigger a refresh.
func (s ServerConfig) WatchEnabled() bool {
	return s.WatchLocal == nil || *s.WatchLocal
}

// HistoryConfig controls the pass history store.
type HistoryConfig struct {
	Disabled bool   `yaml:"disabled"`
	Path     string `yaml:"path"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads configuration from path, applies .env and environment overrides,
// fills defaults and validates the result. A missing file is only an error when
// path was explicitly requested.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	var cfg Config
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// Expand environment variables in the YAML content
		if uerr := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); uerr != nil {
			return nil, derrors.WrapError(uerr, derrors.CategoryConfig, "failed to parse configuration").
				Fatal().UserAction().WithContext("path", path).Build()
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case errors.Is(err, fs.ErrNotExist):
		return nil, derrors.ConfigError(fmt.Sprintf("configuration file not found: %s", path)).
			WithContext("path", path).Build()
	default:
		return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "failed to read configuration").
			WithContext("path", path).Build()
	}

	applyEnvOverrides(&cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile loads .env then .env.local; existing process variables win.
func loadEnvFile() error {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return derrors.WrapError(err, derrors.CategoryConfig, "failed to load env file").
				Fatal().UserAction().WithContext("path", name).Build()
		}
	}
	return nil
}

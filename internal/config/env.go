package config

import "os"

// Environment variables overriding file configuration.
const (
	EnvSource           = "DOCSITE_SOURCE"
	EnvGitHubRepo       = "GITHUB_REPO"
	EnvGitHubToken      = "GITHUB_TOKEN"
	EnvGitHubBranch     = "GITHUB_BRANCH"
	EnvDocsPath         = "DOCS_PATH"
	EnvRenderedVersion  = "RENDERED_VERSION"
	EnvRevalidateSecret = "REVALIDATE_SECRET"
	EnvRedisAddr        = "REDIS_ADDR"
	EnvNATSURL          = "NATS_URL"
	EnvLogLevel         = "DOCSITE_LOG_LEVEL"
)

func applyEnvOverrides(cfg *Config) {
	set := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	if v := os.Getenv(EnvSource); v != "" {
		cfg.Source.Type = SourceType(v)
	}
	set(EnvGitHubRepo, &cfg.GitHub.Repo)
	set(EnvGitHubToken, &cfg.GitHub.Token)
	set(EnvGitHubBranch, &cfg.GitHub.Branch)
	set(EnvDocsPath, &cfg.Source.DocsPath)
	set(EnvRenderedVersion, &cfg.Snapshot.Version)
	set(EnvRevalidateSecret, &cfg.Server.RevalidateSecret)
	set(EnvRedisAddr, &cfg.Cache.RedisAddr)
	set(EnvNATSURL, &cfg.Cache.NATSURL)
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
}

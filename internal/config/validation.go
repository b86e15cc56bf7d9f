package config

import (
	"fmt"
	"strings"

	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// Validate checks the configuration after defaults were applied. Failures are
// fatal configuration errors.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateSource,
		c.validateSnapshot,
		c.validateCache,
		c.validateRetry,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateSource() error {
	switch c.Source.Type {
	case SourceGitHubAPI:
		return c.requireRepo("source.type github-api")
	case SourceGit:
		if c.Source.GitURL == "" {
			return invalid("source.git_url", "git source requires source.git_url or github.repo")
		}
	case SourceLocal:
		if c.Source.LocalDir == "" {
			return invalid("source.local_dir", "local source requires source.local_dir")
		}
	case SourcePreRendered:
	default:
		return invalid("source.type", fmt.Sprintf("unsupported source type %q (expected github-api, git, local or pre-rendered)", c.Source.Type))
	}
	return nil
}

func (c *Config) validateSnapshot() error {
	if c.Source.Type != SourcePreRendered {
		return nil
	}
	switch c.Snapshot.Store {
	case SnapshotStoreGitHub:
		return c.requireRepo("snapshot.store github")
	case SnapshotStoreDir:
		if c.Snapshot.Dir == "" {
			return invalid("snapshot.dir", "snapshot store dir requires snapshot.dir")
		}
	default:
		return invalid("snapshot.store", fmt.Sprintf("unsupported snapshot store %q (expected github or dir)", c.Snapshot.Store))
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return invalid("cache.redis_addr", "redis cache requires cache.redis_addr")
		}
	case CacheNATS:
		if c.Cache.NATSURL == "" {
			return invalid("cache.nats_url", "nats cache requires cache.nats_url")
		}
	default:
		return invalid("cache.backend", fmt.Sprintf("unsupported cache backend %q (expected memory, redis or nats)", c.Cache.Backend))
	}
	return nil
}

func (c *Config) validateRetry() error {
	if NormalizeRetryBackoff(string(c.Retry.Backoff)) == "" {
		return invalid("retry.backoff", fmt.Sprintf("unsupported retry backoff %q", c.Retry.Backoff))
	}
	if c.Retry.Initial > c.Retry.Max {
		return invalid("retry.initial", "retry.initial must not exceed retry.max")
	}
	return nil
}

func (c *Config) requireRepo(context string) error {
	owner, name, ok := strings.Cut(c.GitHub.Repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return invalid("github.repo", fmt.Sprintf("%s requires github.repo in owner/name form, got %q", context, c.GitHub.Repo))
	}
	return nil
}

func invalid(field, message string) error {
	return derrors.ConfigError(message).WithContext("field", field).Build()
}

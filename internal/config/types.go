package config

import (
	"log/slog"
	"strings"
)

// SourceType selects the content source variant used by the indexer.
type SourceType string

const (
	SourceGitHubAPI   SourceType = "github-api"
	SourceGit         SourceType = "git"
	SourceLocal       SourceType = "local"
	SourcePreRendered SourceType = "pre-rendered"
)

// NormalizeSourceType converts user input into a typed source, returning empty string for unknown.
func NormalizeSourceType(raw string) SourceType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(SourceGitHubAPI), "github":
		return SourceGitHubAPI
	case string(SourceGit):
		return SourceGit
	case string(SourceLocal):
		return SourceLocal
	case string(SourcePreRendered), "prerendered", "snapshot":
		return SourcePreRendered
	default:
		return ""
	}
}

// SnapshotStore selects where pre-rendered snapshot files are read from.
type SnapshotStore string

const (
	SnapshotStoreGitHub SnapshotStore = "github"
	SnapshotStoreDir    SnapshotStore = "dir"
)

// NormalizeSnapshotStore returns empty string for unknown values.
func NormalizeSnapshotStore(raw string) SnapshotStore {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(SnapshotStoreGitHub):
		return SnapshotStoreGitHub
	case string(SnapshotStoreDir), "directory":
		return SnapshotStoreDir
	default:
		return ""
	}
}

// CacheBackend enumerates the supported response cache implementations.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheRedis  CacheBackend = "redis"
	CacheNATS   CacheBackend = "nats"
)

// NormalizeCacheBackend returns empty string for unknown values.
func NormalizeCacheBackend(raw string) CacheBackend {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(CacheMemory):
		return CacheMemory
	case string(CacheRedis):
		return CacheRedis
	case string(CacheNATS):
		return CacheNATS
	default:
		return ""
	}
}

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// NormalizeLogLevel falls back to info for unknown input.
func NormalizeLogLevel(raw string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// SlogLevel maps the configured level onto slog.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// NormalizeLogFormat falls back to text for unknown input.
func NormalizeLogFormat(raw string) LogFormat {
	if strings.ToLower(strings.TrimSpace(raw)) == string(LogFormatJSON) {
		return LogFormatJSON
	}
	return LogFormatText
}

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	derrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

const sampleConfig = `# docsite configuration
source:
  type: github-api        # github-api | git | local | pre-rendered
  docs_path: docs
  # local_dir: .
  # clone_ttl: 5m

github:
  repo: ${GITHUB_REPO}    # owner/name
  branch: main
  # token is read from GITHUB_TOKEN

snapshot:
  store: github           # github | dir
  # dir: ./rendered
  namespace: rendered
  branch_prefix: rendered/
  version: latest

markdown:
  trust_html: false
  highlight_style: github

indexer:
  concurrency: 8

cache:
  backend: memory         # memory | redis | nats
  # redis_addr: localhost:6379
  # nats_url: nats://localhost:4222
  tree_ttl: 5m
  raw_ttl: 60s
  snapshot_ttl: 1h

retry:
  backoff: exponential
  initial: 500ms
  max: 10s
  max_retries: 3

server:
  addr: ":8080"
  refresh_interval: 10m
  # revalidate_secret is read from REVALIDATE_SECRET

history:
  path: .docsite/history.db

logging:
  level: info
  format: text
`

// Init writes a sample configuration to path. An existing file is only replaced when force is set.
func Init(path string, force bool) error {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil && !force {
		return derrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).Build()
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to stat configuration file").
			WithContext("path", path).Build()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to create configuration directory").
				WithContext("path", dir).Build()
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o600); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "failed to write configuration").
			WithContext("path", path).Build()
	}
	return nil
}

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func setBuild(t *testing.T, v, commit, built string) {
	t.Helper()
	ov, oc, ob := Version, GitCommit, BuildTime
	t.Cleanup(func() { Version, GitCommit, BuildTime = ov, oc, ob })
	Version, GitCommit, BuildTime = v, commit, built
}

func TestStringDefaults(t *testing.T) {
	setBuild(t, unset, unset, unset)
	assert.Equal(t, "unknown", String())
	assert.False(t, Released())
}

func TestStringWithBuildInfo(t *testing.T) {
	setBuild(t, "v0.3.0", "0123456789abcdef", "2026-01-02")
	assert.Equal(t, "v0.3.0 (0123456789ab, built 2026-01-02)", String())
	assert.True(t, Released())

	setBuild(t, "v0.3.0", "abc", unset)
	assert.Equal(t, "v0.3.0 (abc)", String())
}

// Package version holds build metadata injected at link time, e.g.
//
//	go build -ldflags "-X git.home.luguber.info/inful/docsite/internal/version.Version=v0.3.0"
package version

const unset = "unknown"

var (
	Version   = unset
	GitCommit = unset
	BuildTime = unset
)

// Released reports whether Version was set at build time.
func Released() bool {
	return Version != "" && Version != unset
}

// String renders the version with the commit and build time when known.
func String() string {
	s := Version
	if GitCommit != "" && GitCommit != unset {
		s += " (" + shortCommit(GitCommit)
		if BuildTime != "" && BuildTime != unset {
			s += ", built " + BuildTime
		}
		s += ")"
	}
	return s
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}

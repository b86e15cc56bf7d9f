package markdown

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var headingIDPattern = regexp.MustCompile(`^[\p{L}\p{N}_-]+$`)

// newPolicy returns the allowlist applied to untrusted rendered HTML. It keeps
// the user generated content baseline plus the presentation classes, heading
// anchors, highlighter markup and task list checkboxes produced by the converter.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("id").Matching(headingIDPattern).OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowElements("span")
	p.AllowAttrs("tabindex").Matching(bluemonday.Integer).OnElements("pre")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	return p
}

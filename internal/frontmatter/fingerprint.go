package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
)

// Fingerprint returns the mdfp content fingerprint of a document given its raw
// front-matter block (without delimiters) and body.
func Fingerprint(frontmatter, body []byte) string {
	fm := strings.TrimSuffix(strings.ReplaceAll(string(frontmatter), "\r\n", "\n"), "\n")
	return mdfp.CalculateFingerprintFromParts(fm, string(body))
}

package markdown

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
)

var (
	imageSyntax = regexp.MustCompile(`!\[([^\]]*)\](?:\([^)]*\)|\[[^\]]*\])`)
	linkSyntax  = regexp.MustCompile(`\[([^\]]*)\](?:\([^)]*\)|\[[^\]]*\])`)

	inlineMarkers = strings.NewReplacer("*", "", "_", "", "~", "", "`", "")
)

// CleanHeadingText reduces raw heading Markdown to display text. Inline and
// reference-style images and links become their text; emphasis and code
// markers are removed.
func CleanHeadingText(raw string) string {
	s := imageSyntax.ReplaceAllString(raw, "$1")
	s = linkSyntax.ReplaceAllString(s, "$1")
	s = inlineMarkers.Replace(s)
	return strings.TrimSpace(s)
}

// HeadingID derives the anchor id of a heading from its raw text. It is a pure
// function of its input; identical text always yields the identical id and no
// de-duplication happens. The result may be empty.
func HeadingID(raw string) string {
	cleaned := strings.ToLower(CleanHeadingText(raw))

	var b strings.Builder
	b.Grow(len(cleaned))
	sep := false
	for _, r := range cleaned {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.Is(unicode.Han, r):
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-':
			sep = true
		}
	}
	return b.String()
}

// headingIDs plugs HeadingID into goldmark's auto heading id support.
type headingIDs struct{}

func (headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	if kind != ast.KindHeading {
		return nil
	}
	return []byte(HeadingID(string(value)))
}

func (headingIDs) Put([]byte) {}

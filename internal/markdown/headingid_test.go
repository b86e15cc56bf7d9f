package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadingID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain words", in: "Getting Started", want: "getting-started"},
		{name: "link syntax", in: "See [the guide](./guide.md) now", want: "see-the-guide-now"},
		{name: "reference link", in: "Foo [bar][ref]", want: "foo-bar"},
		{name: "collapsed reference", in: "[Setup][] notes", want: "setup-notes"},
		{name: "image syntax", in: "![logo](logo.png) Brand", want: "logo-brand"},
		{name: "emphasis and code", in: "Use **bold** and `code_span`", want: "use-bold-and-codespan"},
		{name: "punctuation dropped", in: "What's new? (v2.0)", want: "whats-new-v20"},
		{name: "hyphen runs collapse", in: "a -- b  -  c", want: "a-b-c"},
		{name: "trim hyphens", in: "- leading and trailing -", want: "leading-and-trailing"},
		{name: "cjk kept", in: "快速 开始", want: "快速-开始"},
		{name: "accented letters kept", in: "Café Überblick", want: "café-überblick"},
		{name: "empty result", in: "!!! ???", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeadingID(tt.in))
		})
	}
}

func TestHeadingID_Pure(t *testing.T) {
	for _, in := range []string{"Same Title", "Intro [x](y)", "快速开始"} {
		assert.Equal(t, HeadingID(in), HeadingID(in))
	}
}

func TestCleanHeadingText(t *testing.T) {
	assert.Equal(t, "Install the CLI", CleanHeadingText("Install the [CLI](/cli) "))
	assert.Equal(t, "strike", CleanHeadingText("~~strike~~"))
	assert.Equal(t, "Foo bar", CleanHeadingText("Foo [bar][ref]"))
	assert.Equal(t, "Logo here", CleanHeadingText("![Logo][img] here"))
}

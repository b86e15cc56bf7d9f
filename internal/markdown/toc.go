package markdown

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
)

var (
	atxHeading    = regexp.MustCompile(`^(#{1,6})[ \t]+(.+)$`)
	closingHashes = regexp.MustCompile(`[ \t]+#+[ \t]*$`)
)

// ExtractTOC scans the Markdown body line by line and returns the headings in
// document order. Lines inside fenced code blocks and raw HTML blocks are
// skipped. Ids follow HeadingID so they match the ids in the rendered HTML.
func ExtractTOC(body []byte) []docmodel.TocEntry {
	var (
		toc       []docmodel.TocEntry
		fence     fenceState
		html      htmlBlockState
		paragraph bool
	)
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if fence.consume(line) {
			paragraph = false
			continue
		}
		if html.consume(line, paragraph) {
			paragraph = false
			continue
		}
		m := atxHeading.FindStringSubmatch(line)
		if m == nil {
			paragraph = strings.TrimSpace(line) != ""
			continue
		}
		paragraph = false
		raw := strings.TrimSpace(closingHashes.ReplaceAllString(m[2], ""))
		text := CleanHeadingText(raw)
		if text == "" {
			continue
		}
		toc = append(toc, docmodel.TocEntry{
			ID:    HeadingID(raw),
			Text:  text,
			Level: len(m[1]),
		})
	}
	return toc
}

// fenceState tracks whether the scanner is inside a ``` or ~~~ fenced block.
type fenceState struct {
	char byte
	size int
}

// consume reports whether line belongs to a fenced block (delimiters included).
func (f *fenceState) consume(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return f.size > 0
	}
	char, size := fenceRun(trimmed)

	if f.size == 0 {
		if size >= 3 && !(char == '`' && strings.ContainsRune(trimmed[size:], '`')) {
			f.char, f.size = char, size
			return true
		}
		return false
	}

	if char == f.char && size >= f.size && strings.TrimSpace(trimmed[size:]) == "" {
		f.char, f.size = 0, 0
	}
	return true
}

func fenceRun(s string) (byte, int) {
	if s == "" || (s[0] != '`' && s[0] != '~') {
		return 0, 0
	}
	n := 0
	for n < len(s) && s[n] == s[0] {
		n++
	}
	return s[0], n
}

// Block-level tag names that open an HTML block ending at a blank line.
var htmlBlockTags = map[string]bool{}

func init() {
	for _, t := range strings.Fields(`address article aside base basefont blockquote body
		caption center col colgroup dd details dialog dir div dl dt fieldset figcaption
		figure footer form frame frameset h1 h2 h3 h4 h5 h6 head header hr html iframe
		legend li link main menu menuitem nav noframes ol optgroup option p param search
		section summary table tbody td tfoot th thead title tr track ul`) {
		htmlBlockTags[t] = true
	}
}

var (
	htmlBlockTagName = regexp.MustCompile(`^</?([A-Za-z][A-Za-z0-9-]*)(?:[ \t>]|/>|$)`)
	htmlCompleteTag  = regexp.MustCompile(`^(?:<[A-Za-z][A-Za-z0-9-]*(?:[ \t]+[A-Za-z_:][A-Za-z0-9_.:-]*(?:[ \t]*=[ \t]*(?:"[^"]*"|'[^']*'|[^ \t"'=<>` + "`" + `]+))?)*[ \t]*/?>|</[A-Za-z][A-Za-z0-9-]*[ \t]*>)[ \t]*$`)
	htmlRawOpen      = regexp.MustCompile(`(?i)^<(?:script|pre|style|textarea)(?:[ \t>]|$)`)
	htmlRawClose     = regexp.MustCompile(`(?i)</(?:script|pre|style|textarea)>`)
)

// htmlBlockState tracks raw HTML blocks, whose lines Markdown renders verbatim.
type htmlBlockState struct {
	open bool
	// end is the terminator substring; empty means the block ends at a blank line.
	end string
	raw bool
}

// consume reports whether line belongs to an HTML block. afterParagraph is
// set when the previous line continues a paragraph, which a bare tag line
// cannot interrupt.
func (h *htmlBlockState) consume(line string, afterParagraph bool) bool {
	if h.open {
		switch {
		case h.raw:
			if htmlRawClose.MatchString(line) {
				h.open = false
			}
		case h.end == "":
			if strings.TrimSpace(line) == "" {
				h.open = false
				return false
			}
		case strings.Contains(line, h.end):
			h.open = false
		}
		return true
	}

	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || !strings.HasPrefix(trimmed, "<") {
		return false
	}
	switch {
	case htmlRawOpen.MatchString(trimmed):
		h.open, h.raw, h.end = !htmlRawClose.MatchString(trimmed[1:]), true, ""
	case strings.HasPrefix(trimmed, "<!--"):
		h.startUntil(trimmed[4:], "-->")
	case strings.HasPrefix(trimmed, "<?"):
		h.startUntil(trimmed[2:], "?>")
	case strings.HasPrefix(trimmed, "<![CDATA["):
		h.startUntil(trimmed[9:], "]]>")
	case len(trimmed) > 2 && trimmed[1] == '!' && isASCIILetter(trimmed[2]):
		h.startUntil(trimmed[2:], ">")
	default:
		m := htmlBlockTagName.FindStringSubmatch(trimmed)
		if m != nil && htmlBlockTags[strings.ToLower(m[1])] {
			h.open, h.raw, h.end = true, false, ""
			return true
		}
		if afterParagraph || !htmlCompleteTag.MatchString(trimmed) {
			return false
		}
		h.open, h.raw, h.end = true, false, ""
	}
	return true
}

func (h *htmlBlockState) startUntil(rest, end string) {
	h.raw, h.end = false, end
	h.open = !strings.Contains(rest, end)
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

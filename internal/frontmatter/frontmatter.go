// Package frontmatter separates YAML front-matter from Markdown bodies and
// decodes it into document metadata.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/docmodel"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

var bom = []byte{0xEF, 0xBB, 0xBF}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a YAML frontmatter delimiter, had is false
// and body is the full input. A closing delimiter on the last line without a
// trailing newline is accepted.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	content = bytes.TrimPrefix(content, bom)
	nl := detectNewline(content)

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}
	if bytes.Equal(rest, []byte("---")) {
		return []byte{}, []byte{}, true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	if idx := bytes.Index(rest, closeSeq); idx >= 0 {
		return rest[:idx+len(nl)], rest[idx+len(closeSeq):], true, nil
	}
	if tail := []byte(nl + "---"); bytes.HasSuffix(rest, tail) {
		return rest[:len(rest)-len(tail)+len(nl)], []byte{}, true, nil
	}
	return nil, nil, false, ErrMissingClosingDelimiter
}

// fields mirrors the supported front-matter keys.
type fields struct {
	Title           string     `yaml:"title"`
	Description     string     `yaml:"description"`
	Date            string     `yaml:"date"`
	Category        string     `yaml:"category"`
	Tags            StringList `yaml:"tags"`
	Author          string     `yaml:"author"`
	SidebarPosition *Position  `yaml:"sidebar_position"`
	SidebarLabel    string     `yaml:"sidebar_label"`
}

// Parsed is a document split into its decoded front-matter and body.
type Parsed struct {
	Metadata docmodel.Metadata
	// Block is the raw front-matter without delimiters, empty when absent.
	Block []byte
	Body  []byte
}

// Fingerprint returns the mdfp fingerprint of the document.
func (p Parsed) Fingerprint() string { return Fingerprint(p.Block, p.Body) }

// Parse splits content and decodes the front-matter. The body has the
// front-matter removed.
func Parse(content []byte) (Parsed, error) {
	fm, body, _, err := Split(content)
	if err != nil {
		return Parsed{}, err
	}
	meta, err := Decode(fm)
	if err != nil {
		return Parsed{}, err
	}
	return Parsed{Metadata: meta, Block: fm, Body: body}, nil
}

// Decode reads a raw front-matter block (without delimiters) into Metadata.
// Unknown keys are ignored. Title is left empty when absent; callers apply
// their own fallback.
func Decode(fm []byte) (docmodel.Metadata, error) {
	if len(bytes.TrimSpace(fm)) == 0 {
		return docmodel.Metadata{}, nil
	}

	var f fields
	if err := yaml.Unmarshal(fm, &f); err != nil {
		return docmodel.Metadata{}, fmt.Errorf("parse front-matter: %w", err)
	}

	meta := docmodel.Metadata{
		Title:        strings.TrimSpace(f.Title),
		Description:  f.Description,
		Date:         f.Date,
		Category:     f.Category,
		Tags:         []string(f.Tags),
		Author:       f.Author,
		SidebarLabel: f.SidebarLabel,
	}
	if f.SidebarPosition != nil {
		p := int(*f.SidebarPosition)
		meta.SidebarPosition = &p
	}
	return meta, nil
}

// StringList decodes either a YAML sequence or a comma-separated scalar.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" || strings.TrimSpace(node.Value) == "" {
			*l = nil
			return nil
		}
		var out StringList
		for _, part := range strings.Split(node.Value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*l = out
		return nil
	case yaml.SequenceNode:
		out := make(StringList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: tags must be scalars", item.Line)
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: tags must be a string or a list", node.Line)
	}
}

// Position decodes sidebar_position from an integer, a float (truncated) or a numeric string.
type Position int

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Position) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: sidebar_position must be a number", node.Line)
	}
	v := strings.TrimSpace(node.Value)
	if n, err := strconv.Atoi(v); err == nil {
		*p = Position(n)
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("line %d: sidebar_position %q is not a number", node.Line, v)
	}
	*p = Position(int(f))
	return nil
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

package markdown

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// elementClasses are the presentation classes assigned per element kind.
var elementClasses = map[atom.Atom]string{
	atom.H1:         "text-4xl font-bold text-gray-900 mt-8 mb-4",
	atom.H2:         "text-3xl font-bold text-gray-900 mt-6 mb-4",
	atom.H3:         "text-2xl font-bold text-gray-900 mt-4 mb-2",
	atom.H4:         "text-xl font-semibold text-gray-900 mt-4 mb-2",
	atom.P:          "text-gray-800 leading-relaxed mb-4",
	atom.A:          "text-blue-600 hover:text-blue-800 underline",
	atom.Ul:         "list-disc list-inside mb-4 space-y-2 pl-4",
	atom.Ol:         "list-decimal list-inside mb-4 space-y-2 pl-4",
	atom.Blockquote: "border-l-4 border-gray-300 pl-4 italic my-4 text-gray-600",
	atom.Pre:        "bg-gray-900 rounded-lg p-4 overflow-x-auto mb-4",
	atom.Code:       "bg-gray-100 px-1 py-0.5 rounded text-sm font-mono",
	atom.Table:      "min-w-full divide-y divide-gray-300 my-4",
	atom.Thead:      "bg-gray-50",
	atom.Th:         "px-4 py-2 text-left text-sm font-semibold text-gray-900",
	atom.Td:         "px-4 py-2 text-sm text-gray-700",
	atom.Img:        "rounded-lg shadow-lg my-4 max-w-full h-auto",
}

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// annotate walks the rendered HTML fragment, assigns presentation classes and
// makes sure every heading carries a non-empty id or none at all.
func annotate(fragment []byte) ([]byte, error) {
	nodes, err := html.ParseFragment(bytes.NewReader(fragment), bodyContext)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(fragment) + len(fragment)/2)
	for _, n := range nodes {
		annotateNode(n)
		if err := html.Render(&buf, n); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func annotateNode(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Pre:
			appendClass(n, elementClasses[atom.Pre])
		case atom.Code:
			// Block code keeps the highlighter's markup.
			inline := n.Parent == nil || n.Parent.DataAtom != atom.Pre
			if inline && !hasAttr(n, "class") {
				setAttr(n, "class", elementClasses[atom.Code])
			}
		default:
			if classes, ok := elementClasses[n.DataAtom]; ok {
				setAttr(n, "class", classes)
			}
		}
		if isHeading(n.DataAtom) {
			ensureHeadingID(n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		annotateNode(c)
	}
}

func isHeading(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func ensureHeadingID(n *html.Node) {
	id, ok := getAttr(n, "id")
	if !ok || id == "" {
		id = HeadingID(textContent(n))
	}
	if id == "" {
		removeAttr(n, "id")
		return
	}
	setAttr(n, "id", id)
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func hasAttr(n *html.Node, key string) bool {
	_, ok := getAttr(n, key)
	return ok
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		attrs = append(attrs, a)
	}
	n.Attr = attrs
}

func appendClass(n *html.Node, classes string) {
	existing, _ := getAttr(n, "class")
	if existing = strings.TrimSpace(existing); existing != "" {
		classes = existing + " " + classes
	}
	setAttr(n, "class", classes)
}

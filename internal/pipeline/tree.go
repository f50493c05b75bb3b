package pipeline

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Point is a snapshot of an inclusion point's annotations taken at discovery.
// Reading annotations once, before any goroutine starts, keeps the
// concurrent stages away from the host tree.
type Point struct {
	Node       *html.Node
	Source     string
	Format     Format
	Transforms []string
	Replace    bool
	Language   string // code language hint, set for FormatCode only
}

// FindInclusionPoints returns the inclusion points under root in document order.
// Elements with an empty data-include value are not inclusion points.
// The subtree of a selected element is not searched, so no two returned
// points are ancestor and descendant. Elements for which skip returns true
// are not selected but their children are still searched.
func FindInclusionPoints(root *html.Node, skip func(*html.Node) bool) []*Point {
	var points []*Point
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if p := pointFor(n); p != nil && (skip == nil || !skip(n)) {
				points = append(points, p)
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return points
}

// pointFor builds a Point if n carries a non-empty data-include value.
func pointFor(n *html.Node) *Point {
	src, ok := GetAttr(n, AttrInclude)
	if !ok || strings.TrimSpace(src) == "" {
		return nil
	}
	format, _ := GetAttr(n, AttrFormat)
	transforms, _ := GetAttr(n, AttrTransforms)
	_, replace := GetAttr(n, AttrReplace)
	p := &Point{
		Node:       n,
		Source:     strings.TrimSpace(src),
		Format:     ParseFormat(format),
		Transforms: SplitTransforms(transforms),
		Replace:    replace,
	}
	if p.Format == FormatCode {
		p.Language = LanguageOf(n)
	}
	return p
}

// IsFullDocument reports whether content looks like a complete HTML document
// rather than a fragment.
func IsFullDocument(content string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(content))
	return strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html")
}

// ParseDocument parses HTML content, handling both full documents and fragments.
// Fragments are parsed in a body context and hung under a DocumentNode
// container for uniform traversal. The boolean reports whether content was a fragment.
func ParseDocument(content string) (*html.Node, bool, error) {
	if IsFullDocument(content) {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	nodes, err := html.ParseFragment(strings.NewReader(content), body)
	if err != nil {
		return nil, true, err
	}

	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// RenderDocument renders a tree produced by ParseDocument back to a string.
// For fragments only the children are rendered, avoiding an <html><body> wrapper.
func RenderDocument(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ParseFragmentIn parses content as the children of context. The returned
// nodes are detached; context itself is only read.
func ParseFragmentIn(content string, context *html.Node) ([]*html.Node, error) {
	ctx := context
	if ctx == nil || ctx.Type != html.ElementNode {
		ctx = &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	}
	// Parsing only reads the tag of the context element; a shallow copy keeps
	// the parser away from a node other goroutines may be relinking.
	shallow := &html.Node{Type: html.ElementNode, DataAtom: ctx.DataAtom, Data: ctx.Data, Namespace: ctx.Namespace}
	// Hand-built nodes often omit DataAtom; the parser rejects a mismatch.
	if shallow.Namespace == "" {
		shallow.DataAtom = atom.Lookup([]byte(shallow.Data))
	}
	return html.ParseFragment(strings.NewReader(content), shallow)
}

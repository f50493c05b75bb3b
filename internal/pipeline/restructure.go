package pipeline

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// headingLevel returns 1-6 for h1-h6 elements and 0 otherwise.
func headingLevel(n *html.Node) int {
	if n.Type != html.ElementNode {
		return 0
	}
	switch n.DataAtom {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// RestructureSections wraps each top-level heading and the content that
// follows it in a <section>, nesting sections by heading level. Content before
// the first heading stays at the top level. Nodes must be detached; the
// returned nodes are detached as well.
func RestructureSections(nodes []*html.Node) []*html.Node {
	type open struct {
		level int
		node  *html.Node
	}

	root := &html.Node{Type: html.DocumentNode}
	stack := []open{{level: 0, node: root}}

	for _, n := range nodes {
		level := headingLevel(n)
		if level == 0 {
			stack[len(stack)-1].node.AppendChild(n)
			continue
		}

		for len(stack) > 1 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}
		section := &html.Node{Type: html.ElementNode, DataAtom: atom.Section, Data: "section"}
		stack[len(stack)-1].node.AppendChild(section)
		section.AppendChild(n)
		stack = append(stack, open{level: level, node: section})
	}

	var out []*html.Node
	for c := root.FirstChild; c != nil; {
		next := c.NextSibling
		root.RemoveChild(c)
		out = append(out, c)
		c = next
	}
	return out
}

package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/net/html"
)

// ErrSplice indicates converted content could not be placed into the host tree.
var ErrSplice = errors.New("splice failed")

// Splicer places converted content into inclusion points.
//
// Splicing is split in two: Build renders content into detached nodes and may
// run concurrently for different points; Apply relinks the host tree and must
// be serialized by the caller.
type Splicer struct {
	highlighter Highlighter
	sections    bool
}

// NewSplicer creates a Splicer. A nil highlighter leaves code as plain text.
// With sections true, markdown content is wrapped in nested <section> elements.
func NewSplicer(h Highlighter, sections bool) *Splicer {
	return &Splicer{highlighter: h, sections: sections}
}

// Fill is content rendered for one inclusion point, not yet in the host tree.
type Fill struct {
	point       *Point
	nodes       []*html.Node
	highlighted bool
}

// Build renders content according to the point's format. It never modifies
// the host tree.
func (s *Splicer) Build(ctx context.Context, p *Point, content string) (*Fill, error) {
	fill := &Fill{point: p}

	switch p.Format {
	case FormatText:
		fill.nodes = []*html.Node{{Type: html.TextNode, Data: content}}
		return fill, nil

	case FormatCode:
		if s.highlighter == nil {
			fill.nodes = []*html.Node{{Type: html.TextNode, Data: content}}
			return fill, nil
		}
		markup, err := s.highlighter.Highlight(ctx, content, p.Language)
		if err != nil {
			return nil, err
		}
		nodes, err := ParseFragmentIn(markup, p.Node)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing highlighted code: %v", ErrConversion, err)
		}
		fill.nodes = nodes
		fill.highlighted = true
		return fill, nil

	case FormatMarkdown:
		nodes, err := ParseFragmentIn(content, p.Node)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing markdown output: %v", ErrConversion, err)
		}
		if s.sections {
			nodes = RestructureSections(nodes)
		}
		fill.nodes = nodes
		return fill, nil

	default:
		nodes, err := ParseFragmentIn(content, p.Node)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing html: %v", ErrConversion, err)
		}
		fill.nodes = nodes
		return fill, nil
	}
}

// Apply replaces the point element's children with the fill. In replace mode
// the element is then unwrapped: its new children take its place and the
// element is removed. Otherwise the inclusion annotations are stripped so
// the element is never discovered again.
func (s *Splicer) Apply(f *Fill) error {
	el := f.point.Node
	if f.point.Replace && el.Parent == nil {
		return fmt.Errorf("%w: element has no parent to unwrap into", ErrSplice)
	}

	for c := el.FirstChild; c != nil; {
		next := c.NextSibling
		el.RemoveChild(c)
		c = next
	}
	for _, n := range f.nodes {
		el.AppendChild(n)
	}
	if f.highlighted {
		addClass(el, HighlightClass)
	}

	if !f.point.Replace {
		StripAnnotations(el)
		return nil
	}

	parent := el.Parent
	for c := el.FirstChild; c != nil; {
		next := c.NextSibling
		el.RemoveChild(c)
		parent.InsertBefore(c, el)
		c = next
	}
	parent.RemoveChild(el)
	return nil
}

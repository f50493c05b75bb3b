package pipeline

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// RewriteRelativeLinks resolves relative references in HTML content against
// baseURI, so links in included content keep pointing where their author meant.
// If baseURI is empty or not absolute, returns the content unchanged.
//
// Rewrites:
//   - img[src], source[src]: relative media references
//   - a[href], link[href]: relative links and stylesheets
//   - [data-include] on any element: nested inclusion sources
//
// Does NOT rewrite:
//   - script[src] (scripts are never given new origins)
//   - srcset attributes
//   - Anchors, protocol-relative URLs, or references with a scheme
func RewriteRelativeLinks(content, baseURI string) (string, error) {
	base, err := url.Parse(baseURI)
	if err != nil || !base.IsAbs() {
		return content, nil
	}

	doc, isFragment, err := ParseDocument(content)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, base)

	return RenderDocument(doc, isFragment)
}

// rewriteNode traverses the tree and resolves relative references.
func rewriteNode(n *html.Node, base *url.URL) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "img", "source":
			rewriteAttr(n, "src", base)
		case "a", "link":
			rewriteAttr(n, "href", base)
		}
		rewriteAttr(n, AttrInclude, base)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, base)
	}
}

// rewriteAttr rewrites a single attribute if it holds a relative reference.
func rewriteAttr(n *html.Node, attrName string, base *url.URL) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativeRef(attr.Val) {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(attr.Val))
		if err != nil {
			continue // Leave unparsable references as authored
		}
		n.Attr[i].Val = base.ResolveReference(ref).String()
	}
}

// isRelativeRef returns true if the reference should be resolved.
func isRelativeRef(ref string) bool {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return false
	}

	// Skip anchors and protocol-relative URLs
	if strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") {
		return false
	}

	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme == ""
}

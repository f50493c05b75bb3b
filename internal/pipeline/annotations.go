package pipeline

import (
	"strings"

	"golang.org/x/net/html"
)

// Annotation vocabulary carried by inclusion points.
const (
	AttrInclude    = "data-include"         // source URI; presence marks an inclusion point
	AttrFormat     = "data-include-format"  // html, text, code, markdown
	AttrReplace    = "data-include-replace" // presence-only flag
	AttrID         = "data-include-id"      // correlation id, set while in flight
	AttrTransforms = "data-oninclude"       // space-separated transform names
)

// Format identifies how fetched content is rendered into the host tree.
type Format string

// Supported formats. FormatHTML is the default.
const (
	FormatHTML     Format = "html"
	FormatText     Format = "text"
	FormatCode     Format = "code"
	FormatMarkdown Format = "markdown"
)

// ParseFormat maps an attribute value to a Format.
// Empty and unknown values fall back to FormatHTML.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatText:
		return FormatText
	case FormatCode:
		return FormatCode
	case FormatMarkdown:
		return FormatMarkdown
	default:
		return FormatHTML
	}
}

// annotationAttrs lists every attribute removed after a successful in-place splice.
var annotationAttrs = []string{
	AttrInclude,
	AttrFormat,
	AttrReplace,
	AttrID,
	AttrTransforms,
}

// GetAttr returns the value of the named attribute and whether it is present.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes every occurrence of the named attribute.
func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

// StripAnnotations removes all inclusion attributes from n.
func StripAnnotations(n *html.Node) {
	for _, key := range annotationAttrs {
		RemoveAttr(n, key)
	}
}

// SplitTransforms splits a data-oninclude value into transform names.
func SplitTransforms(s string) []string {
	return strings.Fields(s)
}

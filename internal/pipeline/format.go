package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrConversion indicates fetched content could not be rendered in its declared format.
var ErrConversion = errors.New("content conversion failed")

// MarkdownConverter abstracts Markdown to HTML fragment conversion.
type MarkdownConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark (pure Go).
type GoldmarkConverter struct {
	md  goldmark.Markdown
	pre MarkdownPreprocessor
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM extensions and
// class-based highlighting of fenced code blocks.
func NewGoldmarkConverter() *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			// Included markdown routinely embeds raw HTML, including further
			// data-include elements that later passes must discover.
			html.WithUnsafe(),
		),
	)
	return &GoldmarkConverter{md: md, pre: &CommonMarkPreprocessor{}}
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		src := c.pre.PreprocessMarkdown(ctx, content)
		if err := c.md.Convert([]byte(src), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: markdown: %v", ErrConversion, err)}
			return
		}
		done <- result{html: ConvertMarkPlaceholders(buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// FormatConverter maps transformed text and a declared format to renderable content.
type FormatConverter struct {
	markdown MarkdownConverter
}

// NewFormatConverter creates a FormatConverter. A nil markdown converter
// defaults to goldmark.
func NewFormatConverter(md MarkdownConverter) *FormatConverter {
	if md == nil {
		md = NewGoldmarkConverter()
	}
	return &FormatConverter{markdown: md}
}

// Convert applies exactly one conversion: markup conversion for markdown,
// identity for text and code, raw passthrough for html.
func (c *FormatConverter) Convert(ctx context.Context, text string, format Format) (string, error) {
	switch format {
	case FormatMarkdown:
		return c.markdown.ToHTML(ctx, text)
	default:
		return text, nil
	}
}

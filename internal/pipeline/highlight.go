package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"golang.org/x/net/html"
)

// DefaultHighlightStyle is used for inline styles when no style is configured.
const DefaultHighlightStyle = "github"

// HighlightClass is added to elements whose content was highlighted.
const HighlightClass = "chroma"

// Highlighter renders source code as highlighted HTML markup.
type Highlighter interface {
	Highlight(ctx context.Context, code, language string) (string, error)
}

// ChromaHighlighter highlights code with chroma. Output contains token spans
// only; the caller's element supplies the surrounding <pre> or <code>.
type ChromaHighlighter struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

// NewChromaHighlighter creates a highlighter. With inline false, tokens carry
// CSS classes and style is ignored; otherwise style attributes are emitted
// from the named chroma style.
func NewChromaHighlighter(style string, inline bool) *ChromaHighlighter {
	if style == "" {
		style = DefaultHighlightStyle
	}
	return &ChromaHighlighter{
		formatter: chromahtml.New(
			chromahtml.WithClasses(!inline),
			chromahtml.PreventSurroundingPre(true),
		),
		style: styles.Get(style),
	}
}

// Highlight tokenizes code with the lexer for language, guessing from the
// content when language is empty or unknown.
func (h *ChromaHighlighter) Highlight(ctx context.Context, code, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	lexer := lexerFor(code, language)
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("%w: tokenizing %s: %v", ErrConversion, lexer.Config().Name, err)
	}

	var buf strings.Builder
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return "", fmt.Errorf("%w: highlighting: %v", ErrConversion, err)
	}
	return buf.String(), nil
}

func lexerFor(code, language string) chroma.Lexer {
	var lexer chroma.Lexer
	if language != "" {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

// LanguageOf reads the code language from an element's class list.
// "language-x" and "lang-x" win; otherwise the first class naming a known
// lexer is used. The first <code> child is consulted when n has no hint.
func LanguageOf(n *html.Node) string {
	if lang := languageFromClass(n); lang != "" {
		return lang
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			return languageFromClass(c)
		}
	}
	return ""
}

func languageFromClass(n *html.Node) string {
	class, _ := GetAttr(n, "class")
	fields := strings.Fields(class)
	for _, f := range fields {
		if lang, ok := strings.CutPrefix(f, "language-"); ok {
			return lang
		}
		if lang, ok := strings.CutPrefix(f, "lang-"); ok {
			return lang
		}
	}
	for _, f := range fields {
		if f != HighlightClass && lexers.Get(f) != nil {
			return f
		}
	}
	return ""
}

// addClass appends class to n's class attribute if not already present.
func addClass(n *html.Node, class string) {
	current, _ := GetAttr(n, "class")
	for _, f := range strings.Fields(current) {
		if f == class {
			return
		}
	}
	SetAttr(n, "class", strings.TrimSpace(current+" "+class))
}

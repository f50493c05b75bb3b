package transform

import (
	"strings"

	"github.com/alnah/go-include/internal/pipeline"
)

// Built-in transform names.
const (
	AbsolutizeLinks  = "absolutize-links"
	Trim             = "trim"
	StripFrontMatter = "strip-front-matter"
	Dedent           = "dedent"
)

// Builtins returns a registry holding the built-in transforms.
func Builtins() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// RegisterBuiltins adds the built-in transforms to r.
func RegisterBuiltins(r *Registry) {
	r.Register(AbsolutizeLinks, absolutizeLinks)
	r.Register(Trim, func(text, _ string) string { return strings.TrimSpace(text) })
	r.Register(StripFrontMatter, func(text, _ string) string { return stripFrontMatter(text) })
	r.Register(Dedent, func(text, _ string) string { return dedent(text) })
}

// absolutizeLinks resolves relative links in HTML against the source URI.
// Content that cannot be parsed is returned unchanged.
func absolutizeLinks(text, uri string) string {
	out, err := pipeline.RewriteRelativeLinks(text, uri)
	if err != nil {
		return text
	}
	return out
}

// stripFrontMatter removes a leading YAML front matter block delimited by
// "---" lines.
func stripFrontMatter(text string) string {
	body := strings.TrimPrefix(text, "\uFEFF")
	if !strings.HasPrefix(body, "---\n") && !strings.HasPrefix(body, "---\r\n") {
		return text
	}

	lines := strings.SplitAfter(body, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], "\r\n") == "---" {
			return strings.Join(lines[i+1:], "")
		}
	}
	return text // Unterminated block is content
}

// dedent removes the longest common leading whitespace of non-blank lines.
func dedent(text string) string {
	lines := strings.Split(text, "\n")

	prefix := ""
	first := true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}
		prefix = commonPrefix(prefix, indent)
	}
	if prefix == "" {
		return text
	}

	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

//go:build bench

package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// BenchmarkGoldmarkToHTML benchmarks markdown conversion scaling with input size.
func BenchmarkGoldmarkToHTML(b *testing.B) {
	converter := NewGoldmarkConverter()
	ctx := context.Background()

	for _, size := range []int{1, 10, 50, 200} {
		content := generateMarkdown(size)
		b.Run(fmt.Sprintf("sections_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := converter.ToHTML(ctx, content); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkFindInclusionPoints benchmarks discovery over hosts of growing size.
func BenchmarkFindInclusionPoints(b *testing.B) {
	for _, count := range []int{10, 100, 1000} {
		doc, _, err := ParseDocument(generateHost(count))
		if err != nil {
			b.Fatal(err)
		}
		b.Run(fmt.Sprintf("points_%d", count), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = FindInclusionPoints(doc, nil)
			}
		})
	}
}

// BenchmarkSplicerBuild benchmarks rendering content into detached nodes.
func BenchmarkSplicerBuild(b *testing.B) {
	ctx := context.Background()
	doc, _, err := ParseDocument(`<div data-include="a.md" data-include-format="markdown"></div>`)
	if err != nil {
		b.Fatal(err)
	}
	point := FindInclusionPoints(doc, nil)[0]

	html, err := NewGoldmarkConverter().ToHTML(ctx, generateMarkdown(50))
	if err != nil {
		b.Fatal(err)
	}
	s := NewSplicer(nil, true)

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := s.Build(ctx, point, html); err != nil {
			b.Fatal(err)
		}
	}
}

func generateHost(points int) string {
	var sb strings.Builder
	for i := 0; i < points; i++ {
		sb.WriteString(fmt.Sprintf("<section><p>Paragraph %d</p><div data-include=\"part-%d.html\"></div></section>\n", i, i))
	}
	return sb.String()
}

func generateMarkdown(sections int) string {
	var sb strings.Builder
	sb.WriteString("# Document Title\n\n")
	for i := 0; i < sections; i++ {
		sb.WriteString(fmt.Sprintf("## Section %d\n\n", i+1))
		sb.WriteString("A paragraph with [links](https://example.com) and `inline code`.\n\n")
		if i%3 == 0 {
			sb.WriteString("```go\nfunc main() {\n    fmt.Println(\"Hello\")\n}\n```\n\n")
		}
	}
	return sb.String()
}

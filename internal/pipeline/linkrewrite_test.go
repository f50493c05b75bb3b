package pipeline

// Notes:
// - Tests RewriteRelativeLinks through its public API plus the isRelativeRef helper
// - Render error branches are not covered: html.Render only fails on writer errors

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRewriteRelativeLinks - Main Function Tests
// ---------------------------------------------------------------------------

func TestRewriteRelativeLinks(t *testing.T) {
	t.Parallel()

	const base = "https://example.com/docs/guide.html"

	tests := []struct {
		name         string
		html         string
		base         string
		wantContains []string
	}{
		{
			name:         "relative image",
			html:         `<img src="img/logo.png">`,
			base:         base,
			wantContains: []string{`src="https://example.com/docs/img/logo.png"`},
		},
		{
			name:         "parent link",
			html:         `<a href="../about.html">About</a>`,
			base:         base,
			wantContains: []string{`href="https://example.com/about.html"`},
		},
		{
			name:         "root relative link",
			html:         `<a href="/index.html">Home</a>`,
			base:         base,
			wantContains: []string{`href="https://example.com/index.html"`},
		},
		{
			name:         "nested inclusion source",
			html:         `<div data-include="part.md" data-include-format="markdown"></div>`,
			base:         base,
			wantContains: []string{`data-include="https://example.com/docs/part.md"`},
		},
		{
			name:         "stylesheet link",
			html:         `<link rel="stylesheet" href="style.css">`,
			base:         base,
			wantContains: []string{`href="https://example.com/docs/style.css"`},
		},
		{
			name:         "file base",
			html:         `<img src="a.png">`,
			base:         "file:///srv/docs/index.html",
			wantContains: []string{`src="file:///srv/docs/a.png"`},
		},
		{
			name:         "anchor unchanged",
			html:         `<a href="#intro">Intro</a>`,
			base:         base,
			wantContains: []string{`href="#intro"`},
		},
		{
			name:         "absolute URL unchanged",
			html:         `<img src="https://cdn.example.org/x.png">`,
			base:         base,
			wantContains: []string{`src="https://cdn.example.org/x.png"`},
		},
		{
			name:         "protocol-relative URL unchanged",
			html:         `<img src="//cdn.example.org/x.png">`,
			base:         base,
			wantContains: []string{`src="//cdn.example.org/x.png"`},
		},
		{
			name:         "data URI unchanged",
			html:         `<img src="data:image/png;base64,ABC">`,
			base:         base,
			wantContains: []string{`src="data:image/png;base64,ABC"`},
		},
		{
			name:         "script src unchanged",
			html:         `<script src="app.js"></script>`,
			base:         base,
			wantContains: []string{`src="app.js"`},
		},
		{
			name:         "empty src unchanged",
			html:         `<img src="">`,
			base:         base,
			wantContains: []string{`src=""`},
		},
		{
			name:         "other attributes preserved",
			html:         `<img src="a.png" alt="Logo" class="logo">`,
			base:         base,
			wantContains: []string{`alt="Logo"`, `class="logo"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := RewriteRelativeLinks(tt.html, tt.base)
			if err != nil {
				t.Fatalf("RewriteRelativeLinks() error = %v", err)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("RewriteRelativeLinks() = %q, want to contain %q", got, want)
				}
			}
		})
	}
}

func TestRewriteRelativeLinks_NoBase(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"", "docs/guide.html", "::bad"} {
		html := `<img src="./logo.png">`
		got, err := RewriteRelativeLinks(html, base)
		if err != nil {
			t.Fatalf("RewriteRelativeLinks(%q) error = %v", base, err)
		}
		if got != html {
			t.Errorf("RewriteRelativeLinks(%q) = %q, want unchanged", base, got)
		}
	}
}

func TestRewriteRelativeLinks_FullDocument(t *testing.T) {
	t.Parallel()

	html := `<!DOCTYPE html><html><head></head><body><img src="logo.png"></body></html>`

	got, err := RewriteRelativeLinks(html, "https://example.com/a/")
	if err != nil {
		t.Fatalf("RewriteRelativeLinks() error = %v", err)
	}
	if !strings.Contains(strings.ToLower(got), "doctype") {
		t.Error("full document should preserve DOCTYPE")
	}
	if !strings.Contains(got, `src="https://example.com/a/logo.png"`) {
		t.Errorf("RewriteRelativeLinks() = %q, image not rewritten", got)
	}
}

// ---------------------------------------------------------------------------
// TestIsRelativeRef - Helper Function Tests
// ---------------------------------------------------------------------------

func TestIsRelativeRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ref  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"#top", false},
		{"//cdn.example.com/a.js", false},
		{"https://example.com", false},
		{"mailto:me@example.com", false},
		{"data:text/plain,hi", false},
		{"a.png", true},
		{"./a.png", true},
		{"../a.png", true},
		{"/abs/a.png", true},
		{"page.html?x=1#frag", true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			t.Parallel()

			if got := isRelativeRef(tt.ref); got != tt.want {
				t.Errorf("isRelativeRef(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

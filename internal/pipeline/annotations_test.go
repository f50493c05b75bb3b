package pipeline

import (
	"testing"

	"golang.org/x/net/html"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Format
	}{
		{"", FormatHTML},
		{"html", FormatHTML},
		{"text", FormatText},
		{"code", FormatCode},
		{"markdown", FormatMarkdown},
		{" Markdown ", FormatMarkdown},
		{"TEXT", FormatText},
		{"asciidoc", FormatHTML},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	n := &html.Node{Type: html.ElementNode, Data: "div"}

	if _, ok := GetAttr(n, "id"); ok {
		t.Fatal("GetAttr() on bare node reported presence")
	}

	SetAttr(n, "id", "a")
	SetAttr(n, "id", "b")
	if got, _ := GetAttr(n, "id"); got != "b" {
		t.Errorf("GetAttr(id) = %q, want %q", got, "b")
	}
	if len(n.Attr) != 1 {
		t.Errorf("SetAttr() duplicated attribute, got %d attrs", len(n.Attr))
	}

	RemoveAttr(n, "id")
	if _, ok := GetAttr(n, "id"); ok {
		t.Error("RemoveAttr() left attribute in place")
	}
}

func TestStripAnnotations(t *testing.T) {
	t.Parallel()

	n := &html.Node{Type: html.ElementNode, Data: "div", Attr: []html.Attribute{
		{Key: "class", Val: "keep"},
		{Key: AttrInclude, Val: "a.html"},
		{Key: AttrFormat, Val: "text"},
		{Key: AttrReplace},
		{Key: AttrID, Val: "include-1"},
		{Key: AttrTransforms, Val: "trim"},
	}}

	StripAnnotations(n)

	if len(n.Attr) != 1 || n.Attr[0].Key != "class" {
		t.Errorf("StripAnnotations() left %v, want only class", n.Attr)
	}
}

func TestSplitTransforms(t *testing.T) {
	t.Parallel()

	got := SplitTransforms("  trim\tdedent  absolutize-links ")
	want := []string{"trim", "dedent", "absolutize-links"}
	if len(got) != len(want) {
		t.Fatalf("SplitTransforms() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SplitTransforms()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if got := SplitTransforms(""); len(got) != 0 {
		t.Errorf("SplitTransforms(\"\") = %v, want empty", got)
	}
}

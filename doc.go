// Package include resolves data-include inclusion points in HTML documents.
//
// An inclusion point is any element carrying a non-empty data-include
// attribute. The pipeline fetches the referenced content, runs the element's
// named transforms over it, converts it according to its declared format and
// splices the result into the document. Included content may itself contain
// inclusion points; they are resolved in later passes, up to a depth bound.
//
// # Quick Start
//
//	p, err := include.NewPipeline(
//	    include.WithBaseURL("https://example.com/docs/"),
//	    include.WithTransforms(include.BuiltinTransforms()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, report, err := p.ProcessHTML(ctx, `<div data-include="intro.md" data-include-format="markdown"></div>`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if report.Failed() {
//	    log.Println(report.Err())
//	}
//
// Run works on an already parsed golang.org/x/net/html tree and mutates it
// in place.
//
// # Annotations
//
//	data-include          source URI, resolved against the base URL
//	data-include-format   html (default), text, code or markdown
//	data-oninclude        space-separated transform names, applied in order
//	data-include-replace  presence-only; unwrap the element after splicing
//
// On success the annotations are removed, or the element itself when
// data-include-replace is set. On failure the element keeps its annotations,
// the failure is sent once to the Notifier and recorded in the Report, and
// the element is not retried within the same run.
//
// # Passes
//
// Each pass resolves every inclusion point found in the document
// concurrently and waits for all of them before the next pass. After
// WithMaxDepth passes (3 by default) any remaining inclusion points are left
// untouched, counted in Report.Unresolved and reported with a KindWarn
// notification.
//
// # Formats
//
//   - html: content is parsed as markup and becomes the element's children.
//   - text: content becomes a single text node.
//   - code: content is highlighted with chroma; the language comes from a
//     language-x or lang-x class on the element or its <code> child.
//   - markdown: content is rendered with goldmark (GFM, footnotes, heading
//     ids) and headings are wrapped in nested <section> elements.
//
// # Fetching
//
// By default only http and https sources are fetched. WithFileRoot enables
// file:// and plain-path sources confined to a directory. WithCache caches
// successful fetches in memory or in Redis.
//
// # PDF Export
//
// PDFExporter renders a resolved document with headless Chrome. The go-rod
// library downloads a managed Chromium on first run. For containers and CI
// environments, set ROD_NO_SANDBOX=1; use ROD_BROWSER_BIN to point at a
// custom Chrome binary.
package include

// Package pipeline implements the tree-level stages of HTML inclusion.
//
// This package handles discovery, format conversion and splicing:
//   - Inclusion point discovery in document order (data-include attributes)
//   - Markdown to HTML conversion via Goldmark
//   - Code highlighting via chroma
//   - Section restructuring of converted Markdown
//   - Splicing converted content into the host tree, in place or by unwrapping
//
// Fetching and transform lookup live in sibling packages; the root include
// package drives the passes and owns failure isolation.
package pipeline

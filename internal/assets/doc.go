// Package assets provides stylesheets applied to resolved documents.
//
// # Loaders
//
//	StyleLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in styles compiled into the binary
//	    ├── FilesystemLoader  - {dir}/styles/{name}.css from a custom directory
//	    └── StyleResolver     - custom first, embedded fallback, or a .css path
//
// Built-in styles are "document" for screen reading, "print" for PDF
// export and "compact" for dense reference pages.
//
// # Security
//
// Style names may not contain separators or dots. FilesystemLoader reads
// through an os.Root, so a symlink leading outside its directory fails with
// ErrPathTraversal.
package assets

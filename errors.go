package include

import (
	"errors"

	"github.com/alnah/go-include/internal/fetch"
	"github.com/alnah/go-include/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// Per-inclusion failures, reported through the Notifier and the Report.
	ErrFetch      = fetch.ErrFetch
	ErrConversion = pipeline.ErrConversion
	ErrSplice     = pipeline.ErrSplice

	// Usage errors.
	ErrNilDocument        = errors.New("document cannot be nil")
	ErrInvalidMaxDepth    = errors.New("invalid max depth")
	ErrInvalidConcurrency = errors.New("invalid concurrency")
	ErrInvalidBaseURL     = errors.New("invalid base URL")
	ErrInvalidTimeout     = errors.New("invalid timeout")

	// PDF export errors.
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Page settings validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidOrientation = errors.New("invalid orientation")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidFooterDate  = errors.New("invalid footer date")
)

// FetchError describes a failed retrieval; it matches ErrFetch with errors.Is.
type FetchError = fetch.FetchError

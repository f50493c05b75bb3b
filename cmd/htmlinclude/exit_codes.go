package main

import (
	"errors"
	"os"

	include "github.com/alnah/go-include"
	"github.com/alnah/go-include/internal/config"
	"github.com/alnah/go-include/internal/logging"
)

// Exit codes for the htmlinclude CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Every document written
	ExitGeneral   = 1 // General/unexpected error
	ExitUsage     = 2 // Invalid flags, config, or validation
	ExitIO        = 3 // File not found, permission denied
	ExitBrowser   = 4 // Browser/Chrome errors
	ExitInclusion = 5 // Documents written but some inclusions failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Inclusion failures (exit 5)
	if errors.Is(err, ErrInclusionFailures) {
		return ExitInclusion
	}

	// Browser errors (exit 4)
	if errors.Is(err, include.ErrBrowserConnect) ||
		errors.Is(err, include.ErrPageCreate) ||
		errors.Is(err, include.ErrPageLoad) ||
		errors.Is(err, include.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadHTML) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, ErrCacheUnavailable) ||
		errors.Is(err, ErrNoDocuments) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, logging.ErrInvalidLevel) ||
		errors.Is(err, include.ErrInvalidMaxDepth) ||
		errors.Is(err, include.ErrInvalidConcurrency) ||
		errors.Is(err, include.ErrInvalidBaseURL) ||
		errors.Is(err, include.ErrInvalidTimeout) ||
		errors.Is(err, include.ErrInvalidPageSize) ||
		errors.Is(err, include.ErrInvalidOrientation) ||
		errors.Is(err, include.ErrInvalidMargin) ||
		errors.Is(err, include.ErrInvalidFooterDate) ||
		errors.Is(err, include.ErrStyleNotFound) ||
		errors.Is(err, include.ErrInvalidStyleName) ||
		errors.Is(err, include.ErrInvalidStyleDir) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidHeader) ||
		errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUsage) {
		return ExitUsage
	}

	return ExitGeneral
}

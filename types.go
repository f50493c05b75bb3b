package include

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alnah/go-include/internal/dateutil"
	"github.com/alnah/go-include/internal/pipeline"
)

// Format selects how fetched content is rendered into an inclusion point.
type Format = pipeline.Format

// Supported formats. Unknown data-include-format values behave as FormatHTML.
const (
	FormatHTML     = pipeline.FormatHTML
	FormatText     = pipeline.FormatText
	FormatCode     = pipeline.FormatCode
	FormatMarkdown = pipeline.FormatMarkdown
)

// Annotation attributes recognized on host elements.
const (
	AttrInclude    = pipeline.AttrInclude
	AttrFormat     = pipeline.AttrFormat
	AttrReplace    = pipeline.AttrReplace
	AttrID         = pipeline.AttrID
	AttrTransforms = pipeline.AttrTransforms
)

// DefaultMaxDepth is the number of passes run before remaining inclusion
// points are left unresolved.
const DefaultMaxDepth = 3

// Report summarizes one Run.
type Report struct {
	Passes     int       // passes executed
	Resolved   int       // inclusion points spliced successfully
	Failures   []Failure // failed inclusion points, in pass then document order
	Unresolved int       // inclusion points left when the depth bound was reached
}

// Failure records one failed inclusion point.
type Failure struct {
	Source string // data-include value as authored
	URI    string // resolved URI, empty if resolution failed
	Err    error
}

// Failed reports whether any inclusion point failed.
func (r *Report) Failed() bool {
	return r != nil && len(r.Failures) > 0
}

// Err joins all failure errors, or returns nil.
func (r *Report) Err() error {
	if r == nil || len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("%s: %w", f.Source, f.Err))
	}
	return errors.Join(errs...)
}

// Page size constants.
const (
	PageSizeLetter = "letter"
	PageSizeA4     = "a4"
	PageSizeLegal  = "legal"
)

// Orientation constants.
const (
	OrientationPortrait  = "portrait"
	OrientationLandscape = "landscape"
)

// Margin bounds in inches.
const (
	MinMargin     = 0.25
	MaxMargin     = 3.0
	DefaultMargin = 0.5
)

// PageSettings configures PDF page dimensions.
type PageSettings struct {
	Size        string  // "letter", "a4", "legal"
	Orientation string  // "portrait", "landscape"
	Margin      float64 // inches, applied to all sides
	PageNumbers bool    // print "n/total" in the footer
	FooterDate  string  // literal text, "auto" or "auto:FORMAT", printed bottom left
}

// MaxFooterDateLength bounds PageSettings.FooterDate.
const MaxFooterDateLength = 100

// DefaultPageSettings returns page settings with default values.
func DefaultPageSettings() *PageSettings {
	return &PageSettings{
		Size:        PageSizeLetter,
		Orientation: OrientationPortrait,
		Margin:      DefaultMargin,
	}
}

// Validate checks that page settings are valid.
// Returns nil if p is nil (nil means use defaults). Empty fields and a zero
// margin also mean defaults.
func (p *PageSettings) Validate() error {
	if p == nil {
		return nil
	}

	if p.Size != "" {
		if _, ok := paperSizes[strings.ToLower(p.Size)]; !ok {
			return fmt.Errorf("%w: %q", ErrInvalidPageSize, p.Size)
		}
	}

	switch strings.ToLower(p.Orientation) {
	case "", OrientationPortrait, OrientationLandscape:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOrientation, p.Orientation)
	}

	if p.Margin != 0 && (p.Margin < MinMargin || p.Margin > MaxMargin) {
		return fmt.Errorf("%w: %.2f (must be between %.2f and %.2f)", ErrInvalidMargin, p.Margin, MinMargin, MaxMargin)
	}

	if len(p.FooterDate) > MaxFooterDateLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidFooterDate, MaxFooterDateLength)
	}
	if _, err := dateutil.Expand(p.FooterDate, time.Time{}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFooterDate, err)
	}

	return nil
}

// stamped returns a copy of p with FooterDate expanded at t.
// Validate has already rejected malformed stamps.
func (p *PageSettings) stamped(t time.Time) *PageSettings {
	if p == nil || !dateutil.IsAuto(p.FooterDate) {
		return p
	}
	out := *p
	out.FooterDate, _ = dateutil.Expand(p.FooterDate, t)
	return &out
}

// hasFooter reports whether the printed page carries a footer line.
func (p *PageSettings) hasFooter() bool {
	return p.PageNumbers || p.FooterDate != ""
}

// paperSizes maps page sizes to portrait width and height in inches.
var paperSizes = map[string][2]float64{
	PageSizeLetter: {8.5, 11},
	PageSizeA4:     {8.27, 11.69},
	PageSizeLegal:  {8.5, 14},
}

// dimensions returns paper width and height in inches, honoring orientation.
func (p *PageSettings) dimensions() (width, height float64) {
	size, ok := paperSizes[strings.ToLower(p.Size)]
	if !ok {
		size = paperSizes[PageSizeLetter]
	}
	if strings.ToLower(p.Orientation) == OrientationLandscape {
		return size[1], size[0]
	}
	return size[0], size[1]
}

// margin returns the configured margin, or DefaultMargin when unset.
func (p *PageSettings) margin() float64 {
	if p.Margin == 0 {
		return DefaultMargin
	}
	return p.Margin
}

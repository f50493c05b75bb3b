// Package dateutil expands footer date stamps for PDF export.
//
// A stamp is either literal text or "auto", optionally followed by a format:
// "auto" prints today's date as YYYY-MM-DD, "auto:DD/MM/YYYY" uses the given
// tokens and "auto:long" uses a named preset.
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates a malformed stamp or format string.
var ErrInvalidDateFormat = errors.New("invalid date format")

// MaxFormatLength bounds a format string.
const MaxFormatLength = 50

// DefaultFormat is used by a bare "auto" stamp.
const DefaultFormat = "YYYY-MM-DD"

const autoKeyword = "auto"

// tokens are matched longest first.
var tokens = []struct {
	token  string
	layout string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// Presets names common formats.
var Presets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
}

// Layout converts a token format into a time layout.
// Bracketed text is copied literally: "[Printed] YYYY" keeps "Printed".
// Other characters outside tokens are kept as they are.
func Layout(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		if rest[0] == '[' {
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, len(format)-len(rest))
			}
			b.WriteString(rest[1:end])
			rest = rest[end+1:]
			continue
		}
		if layout, n := matchToken(rest); n > 0 {
			b.WriteString(layout)
			rest = rest[n:]
			continue
		}
		b.WriteByte(rest[0])
		rest = rest[1:]
	}
	return b.String(), nil
}

func matchToken(s string) (string, int) {
	for _, t := range tokens {
		if strings.HasPrefix(s, t.token) {
			return t.layout, len(t.token)
		}
	}
	return "", 0
}

// IsAuto reports whether stamp asks for the current date.
func IsAuto(stamp string) bool {
	return strings.HasPrefix(strings.ToLower(stamp), autoKeyword)
}

// Expand returns the footer text for stamp at time t.
// Non-auto stamps are returned unchanged.
func Expand(stamp string, t time.Time) (string, error) {
	if !IsAuto(stamp) {
		return stamp, nil
	}

	format := DefaultFormat
	if len(stamp) > len(autoKeyword) {
		rest := stamp[len(autoKeyword):]
		if rest[0] != ':' {
			return "", fmt.Errorf("%w: %q: use \"auto\" or \"auto:FORMAT\"", ErrInvalidDateFormat, stamp)
		}
		// Tokens are case-sensitive; only preset names fold case.
		format = rest[1:]
		if format == "" {
			return "", fmt.Errorf("%w: format cannot be empty after \"auto:\"", ErrInvalidDateFormat)
		}
		if preset, ok := Presets[strings.ToLower(format)]; ok {
			format = preset
		}
	}

	layout, err := Layout(format)
	if err != nil {
		return "", err
	}
	return t.Format(layout), nil
}

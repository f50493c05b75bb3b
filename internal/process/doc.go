// Package process terminates browser process trees started for PDF export.
package process

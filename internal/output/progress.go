// Package output handles all portfile CLI output formatting. Diagnostics go
// to stderr; only lookup results and JSON ever touch stdout.
package output

import (
	"fmt"
	"io"
	"time"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Progress writes stage progress and count messages to the diagnostic
// stream.
type Progress struct {
	w      io.Writer
	silent bool
	start  time.Time
}

// NewProgress creates a progress reporter.
func NewProgress(w io.Writer, silent bool) *Progress {
	return &Progress{
		w:      w,
		silent: silent,
		start:  time.Now(),
	}
}

// Stage prints a stage header like "[2/4] Parsing registry...".
func (p *Progress) Stage(num, total int, msg string) {
	if p.silent {
		return
	}
	fmt.Fprintf(p.w, "[%d/%d] %s\n", num, total, msg)
}

// Detail prints an indented count or status message.
func (p *Progress) Detail(msg string) {
	if p.silent {
		return
	}
	fmt.Fprintf(p.w, "  %s\n", msg)
}

// Warn prints a warning.
func (p *Progress) Warn(msg string) {
	if p.silent {
		return
	}
	fmt.Fprintf(p.w, "  ! %s\n", msg)
}

// Complete prints the final duration.
func (p *Progress) Complete() {
	if p.silent {
		return
	}
	elapsed := time.Since(p.start)
	fmt.Fprintf(p.w, "\nCompleted in %.1fs\n", elapsed.Seconds())
}

// WriteHeader prints the portfile banner.
func WriteHeader(w io.Writer, noColor bool) {
	if noColor {
		fmt.Fprintf(w, "portfile %s\n\n", Version)
	} else {
		fmt.Fprintf(w, "\033[1mportfile %s\033[0m\n\n", Version)
	}
}

// Package portsfile renders and writes the generated ports.txt file and
// parses it back for lookups.
package portsfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/portfile/portfile/pkg/ports"
)

// Column widths for entries with a description. Names and port/proto pairs
// longer than the width are never truncated.
const (
	nameWidth      = 18
	portProtoWidth = 12
)

// CustomMarker separates the IANA set from the hand-maintained entries.
const CustomMarker = "# Custom entries (not from IANA)"

// ErrIO marks a failure to create or replace the output file.
var ErrIO = errors.New("io error")

// FormatEntry renders one entry as a ports.txt line. Entries without a
// description use the compact tab-separated form.
func FormatEntry(e ports.Entry) string {
	pp := e.PortProto()
	if e.Description != "" {
		return fmt.Sprintf("%-*s%-*s%s", nameWidth, e.Name, portProtoWidth, pp, e.Description)
	}
	return e.Name + "\t" + pp
}

// Render produces the full file contents: header comments, the sorted unique
// entries, the custom marker, and the custom entries in their fixed order.
func Render(entries, custom []ports.Entry, generated time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# (last updated %s) from https://www.iana.org/assignments/service-names-port-numbers\n",
		generated.Format("02 January 2006"))
	b.WriteString("# Keyword         Decimal    Description                     References\n")
	b.WriteString("# -------         -------    -----------                     ----------\n")

	for _, e := range entries {
		b.WriteString(FormatEntry(e))
		b.WriteByte('\n')
	}

	b.WriteString(CustomMarker)
	b.WriteByte('\n')
	for _, e := range custom {
		b.WriteString(FormatEntry(e))
		b.WriteByte('\n')
	}

	return b.String()
}

// Writer writes the rendered file to its final path.
type Writer struct{}

// Write renders the file and replaces path atomically: the contents go to a
// temp file in the same directory which is then renamed over the target, so
// a failed run never leaves a half-written file. Returns the number of lines
// written.
func (w *Writer) Write(path string, entries, custom []ports.Entry, generated time.Time) (int, error) {
	content := Render(entries, custom, generated)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ports-*.txt")
	if err != nil {
		return 0, fmt.Errorf("%w: create temp output: %v", ErrIO, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, fmt.Errorf("%w: write output: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("%w: close output: %v", ErrIO, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("%w: chmod output: %v", ErrIO, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("%w: replace %s: %v", ErrIO, path, err)
	}

	return strings.Count(content, "\n"), nil
}

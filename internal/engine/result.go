// Package engine orchestrates the ports file generation pipeline.
package engine

import (
	"context"
	"time"

	"github.com/portfile/portfile/pkg/ports"
)

// Result is the top-level output of a generation run.
type Result struct {
	URL          string    `json:"url"`
	OutputPath   string    `json:"output_path"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
	DurationSecs float64   `json:"duration_secs"`
	Summary      Summary   `json:"summary"`
}

// Summary provides aggregate counts for the run.
type Summary struct {
	ParsedEntries  int `json:"parsed_entries"`
	UniqueEntries  int `json:"unique_entries"`
	DuplicateCount int `json:"duplicate_count"`
	CustomEntries  int `json:"custom_entries"`
	LinesWritten   int `json:"lines_written"`
}

// RegistryFetcher retrieves the remote registry into a local file. The
// returned cleanup removes the file and must be safe to call on every exit
// path.
type RegistryFetcher interface {
	Fetch(ctx context.Context) (path string, cleanup func(), err error)
}

// RegistryParser reads a downloaded registry file into candidate entries,
// preserving file order.
type RegistryParser interface {
	Parse(path string) ([]ports.Entry, error)
}

// FileWriter renders the unique entries plus the custom entries and replaces
// the output file, returning the number of lines written.
type FileWriter interface {
	Write(path string, entries, custom []ports.Entry, generated time.Time) (int, error)
}

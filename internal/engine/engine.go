package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/portfile/portfile/pkg/ports"
)

// Config holds the runtime configuration for a generation run.
type Config struct {
	URL        string
	OutputPath string
}

// Stages holds the injectable stage implementations.
type Stages struct {
	Fetcher RegistryFetcher
	Parser  RegistryParser
	Writer  FileWriter
}

// ProgressReporter is called by the engine to report stage progress.
type ProgressReporter interface {
	Stage(num, total int, msg string)
	Detail(msg string)
	Warn(msg string)
}

const totalStages = 4

// Run executes the full pipeline: fetch the registry, parse it, sort and
// deduplicate, then write the output file. Any stage error aborts the run;
// the downloaded temp file is removed on every path.
func Run(ctx context.Context, cfg Config, stages Stages, progress ProgressReporter) (*Result, error) {
	result := &Result{
		URL:        cfg.URL,
		OutputPath: cfg.OutputPath,
		StartedAt:  time.Now(),
	}

	// Stage 1: download.
	progress.Stage(1, totalStages, fmt.Sprintf("Downloading %s...", cfg.URL))
	path, cleanup, err := stages.Fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry download failed: %w", err)
	}
	defer cleanup()
	progress.Detail(fmt.Sprintf("Downloaded to %s", path))

	// Stage 2: parse.
	progress.Stage(2, totalStages, "Parsing registry...")
	entries, err := stages.Parser.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("registry parse failed: %w", err)
	}
	result.Summary.ParsedEntries = len(entries)
	progress.Detail(fmt.Sprintf("Parsed %d entries from registry", len(entries)))
	if len(entries) == 0 {
		progress.Warn("registry yielded no entries; output will contain only custom entries")
	}

	// Stage 3: sort and deduplicate.
	progress.Stage(3, totalStages, "Sorting and deduplicating...")
	ports.Sort(entries)
	unique := ports.Dedupe(entries)
	result.Summary.UniqueEntries = len(unique)
	result.Summary.DuplicateCount = len(entries) - len(unique)
	progress.Detail(fmt.Sprintf("After dedup: %d unique entries", len(unique)))

	// Stage 4: write.
	custom := ports.Custom()
	result.Summary.CustomEntries = len(custom)
	progress.Stage(4, totalStages, fmt.Sprintf("Writing %s...", cfg.OutputPath))
	lines, err := stages.Writer.Write(cfg.OutputPath, unique, custom, result.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("output write failed: %w", err)
	}
	result.Summary.LinesWritten = lines
	progress.Detail(fmt.Sprintf("Wrote %d lines to %s", lines, cfg.OutputPath))

	result.CompletedAt = time.Now()
	result.DurationSecs = result.CompletedAt.Sub(result.StartedAt).Seconds()

	return result, nil
}

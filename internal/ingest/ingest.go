// Package ingest feeds report files from directories into the pipeline.
package ingest

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
)

// FileProcessor processes one report file.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string, opts pipeline.Options) (pipeline.Outcome, error)
}

// FileResult is the per-file outcome of a directory run.
type FileResult struct {
	Path         string
	RunID        string
	Accounts     int
	Deduplicated bool
	Empty        bool
	Err          string
}

// DirStats summarizes a directory run.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Empty        uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor runs every matching file in a directory through a FileProcessor.
type Ingestor struct {
	proc   FileProcessor
	logger *slog.Logger
}

func NewIngestor(proc FileProcessor, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{proc: proc, logger: logger}
}

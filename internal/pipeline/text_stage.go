package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/repository"
	"github.com/joseph-ayodele/cibil-extractor/internal/textextract"
)

// TextExtractor turns a source file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (textextract.Result, error)
}

// TextStage extracts a run's text and records the method used.
type TextStage struct {
	Runs      repository.RunRepository
	Extractor TextExtractor
	Timeout   time.Duration // 0 = no limit beyond ctx
	Logger    *slog.Logger
}

func NewTextStage(runs repository.RunRepository, tx TextExtractor, timeout time.Duration, logger *slog.Logger) *TextStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextStage{Runs: runs, Extractor: tx, Timeout: timeout, Logger: logger}
}

// Run extracts the text of path for runID. On failure the run is marked FAILED.
func (s *TextStage) Run(ctx context.Context, runID uuid.UUID, path string) (textextract.Result, error) {
	ectx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ectx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	res, err := s.Extractor.Extract(ectx, path)
	if err != nil {
		failRun(ctx, s.Runs, s.Logger, runID, err)
		return res, common.NewAppError(common.CodeExtraction, "text extraction failed", err)
	}

	if err := s.Runs.MarkTextOK(ctx, runID, string(res.Method), res.Pages); err != nil {
		failRun(ctx, s.Runs, s.Logger, runID, err)
		return res, common.NewAppError(common.CodeStorage, "mark text extracted", err)
	}
	return res, nil
}

// failRun marks runID FAILED. The update runs even when ctx is already done.
func failRun(ctx context.Context, runs repository.RunRepository, logger *slog.Logger, runID uuid.UUID, cause error) {
	if err := runs.FinishFailure(context.WithoutCancel(ctx), runID, cause.Error()); err != nil {
		common.Logger(ctx, logger).Error("pipeline.run.finish_failed", "cause", cause, "err", err)
	}
}

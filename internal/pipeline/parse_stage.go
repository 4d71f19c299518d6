package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
	"github.com/joseph-ayodele/cibil-extractor/internal/repository"
)

// ParseStage parses a run's text and persists the accounts.
type ParseStage struct {
	Runs     repository.RunRepository
	Accounts repository.AccountRepository
	Logger   *slog.Logger
}

func NewParseStage(runs repository.RunRepository, accounts repository.AccountRepository, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{Runs: runs, Accounts: accounts, Logger: logger}
}

// Run parses text for runID. A report without valid accounts marks the run
// EMPTY and returns an error wrapping report.ErrNoAccounts.
func (s *ParseStage) Run(ctx context.Context, runID uuid.UUID, text string) (report.Result, error) {
	res, err := report.Parse(text)
	if errors.Is(err, report.ErrNoAccounts) {
		if ferr := s.Runs.FinishEmpty(ctx, runID, res.Stats); ferr != nil {
			failRun(ctx, s.Runs, s.Logger, runID, ferr)
			return res, common.NewAppError(common.CodeStorage, "finish empty run", ferr)
		}
		return res, common.NewAppError(common.CodeNoAccounts, "no valid accounts found", err)
	}
	if err != nil {
		failRun(ctx, s.Runs, s.Logger, runID, err)
		return res, err
	}

	if err := s.Accounts.InsertBatch(ctx, runID, res.Accounts); err != nil {
		failRun(ctx, s.Runs, s.Logger, runID, err)
		return res, common.NewAppError(common.CodeStorage, "store accounts", err)
	}
	if err := s.Runs.FinishSuccess(ctx, runID, res.Stats); err != nil {
		failRun(ctx, s.Runs, s.Logger, runID, err)
		return res, common.NewAppError(common.CodeStorage, "finish run", err)
	}
	return res, nil
}

package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-extractor/constants"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
	"github.com/joseph-ayodele/cibil-extractor/internal/repository"
)

// File is a rendered export ready to be saved or served.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Render writes accounts in the requested format.
func Render(accounts []report.Account, format constants.ExportFormat) (File, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case constants.ExportCSV:
		err = WriteCSV(&buf, accounts)
	case constants.ExportXLSX:
		err = WriteXLSX(&buf, accounts)
	case constants.ExportJSON:
		err = WriteJSON(&buf, accounts)
	default:
		return File{}, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return File{}, err
	}
	return File{Name: format.FileName(), ContentType: format.ContentType(), Data: buf.Bytes()}, nil
}

// Service is a tiny façade over repositories that renders stored runs.
type Service struct {
	runs     repository.RunRepository
	accounts repository.AccountRepository
	logger   *slog.Logger
}

func NewService(runs repository.RunRepository, accounts repository.AccountRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runs: runs, accounts: accounts, logger: logger}
}

// Export renders the accounts stored for runID.
func (s *Service) Export(ctx context.Context, runID uuid.UUID, format constants.ExportFormat) (File, error) {
	start := time.Now()

	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return File{}, err
	}
	accounts, err := s.accounts.ListByRun(ctx, run.ID)
	if err != nil {
		return File{}, fmt.Errorf("query accounts: %w", err)
	}

	f, err := Render(accounts, format)
	if err != nil {
		s.logger.Error("export."+string(format)+".failed", "run_id", runID, "err", err)
		return File{}, err
	}

	s.logger.Info("export."+string(format)+".ok",
		"run_id", runID.String(),
		"rows", len(accounts),
		"bytes", len(f.Data),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return f, nil
}

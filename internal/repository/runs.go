package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-extractor/constants"
	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

// Run is one extraction attempt over a single source document.
type Run struct {
	ID           uuid.UUID
	SourceName   string
	SourcePath   string
	ContentHash  string
	Method       string
	Pages        int
	Status       constants.RunStatus
	ErrorMessage string
	Blocks       int
	Accepted     int
	Rejected     int
	ClosedOffset int // -1 when the report has no closed-accounts heading
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Stats rebuilds the parse statistics persisted with the run.
func (r Run) Stats() report.Stats {
	return report.Stats{
		Blocks:   r.Blocks,
		Accepted: r.Accepted,
		Rejected: r.Rejected,
		Boundary: report.Boundary{Offset: max(r.ClosedOffset, 0), Found: r.ClosedOffset >= 0},
	}
}

// StartRun describes the source of a new run.
type StartRun struct {
	SourceName  string
	SourcePath  string
	ContentHash string
}

type RunRepository interface {
	Start(ctx context.Context, in StartRun) (*Run, error)
	MarkTextOK(ctx context.Context, id uuid.UUID, method string, pages int) error
	FinishSuccess(ctx context.Context, id uuid.UUID, stats report.Stats) error
	FinishEmpty(ctx context.Context, id uuid.UUID, stats report.Stats) error
	FinishFailure(ctx context.Context, id uuid.UUID, message string) error
	Get(ctx context.Context, id uuid.UUID) (*Run, error)
	List(ctx context.Context, limit int) ([]Run, error)
	// FindByHash returns the newest PARSED run for a content hash.
	FindByHash(ctx context.Context, hash string) (*Run, error)
}

var runColumns = []string{
	"id", "source_name", "source_path", "content_hash", "method", "pages",
	"status", "error_message", "blocks", "accepted", "rejected", "closed_offset",
	"started_at", "finished_at",
}

type runRepo struct {
	db  *DB
	log *slog.Logger
}

func NewRunRepository(db *DB, log *slog.Logger) RunRepository {
	if log == nil {
		log = slog.Default()
	}
	return &runRepo{db: db, log: log}
}

func (r *runRepo) Start(ctx context.Context, in StartRun) (*Run, error) {
	run := &Run{
		ID:           uuid.New(),
		SourceName:   in.SourceName,
		SourcePath:   in.SourcePath,
		ContentHash:  in.ContentHash,
		Status:       constants.RunStatusRunning,
		ClosedOffset: -1,
		StartedAt:    time.Now().UTC(),
	}
	q, args := r.db.builder().Insert(tableRuns).
		Columns("id", "source_name", "source_path", "content_hash", "status", "closed_offset", "started_at").
		Values(run.ID.String(), run.SourceName, run.SourcePath, run.ContentHash, string(run.Status), run.ClosedOffset, run.StartedAt).
		Query()
	if _, err := r.db.SQL.ExecContext(ctx, q, args...); err != nil {
		r.log.Error("extract_run start failed", "source", in.SourceName, "err", err)
		return nil, fmt.Errorf("%w: start run: %v", common.ErrDatabase, err)
	}
	r.log.Info("extract_run started", "run_id", run.ID, "source", in.SourceName)
	return run, nil
}

func (r *runRepo) MarkTextOK(ctx context.Context, id uuid.UUID, method string, pages int) error {
	u := r.db.builder().Update(tableRuns).
		Set("status", string(constants.RunStatusTextOK)).
		Set("method", method).
		Set("pages", pages)
	return r.update(ctx, id, u, "TEXT_OK")
}

func (r *runRepo) FinishSuccess(ctx context.Context, id uuid.UUID, stats report.Stats) error {
	return r.finish(ctx, id, constants.RunStatusParsed, stats)
}

func (r *runRepo) FinishEmpty(ctx context.Context, id uuid.UUID, stats report.Stats) error {
	return r.finish(ctx, id, constants.RunStatusEmpty, stats)
}

func (r *runRepo) finish(ctx context.Context, id uuid.UUID, status constants.RunStatus, stats report.Stats) error {
	closed := -1
	if stats.Boundary.Found {
		closed = stats.Boundary.Offset
	}
	u := r.db.builder().Update(tableRuns).
		Set("status", string(status)).
		Set("blocks", stats.Blocks).
		Set("accepted", stats.Accepted).
		Set("rejected", stats.Rejected).
		Set("closed_offset", closed).
		Set("finished_at", time.Now().UTC())
	return r.update(ctx, id, u, string(status))
}

func (r *runRepo) FinishFailure(ctx context.Context, id uuid.UUID, message string) error {
	u := r.db.builder().Update(tableRuns).
		Set("status", string(constants.RunStatusFailed)).
		Set("error_message", message).
		Set("finished_at", time.Now().UTC())
	if err := r.update(ctx, id, u, "FAILED"); err != nil {
		return err
	}
	r.log.Warn("extract_run finished (FAILED)", "run_id", id, "error", message)
	return nil
}

func (r *runRepo) update(ctx context.Context, id uuid.UUID, u *entsql.UpdateBuilder, label string) error {
	q, args := u.Where(entsql.EQ("id", id.String())).Query()
	res, err := r.db.SQL.ExecContext(ctx, q, args...)
	if err != nil {
		r.log.Error("extract_run update failed", "run_id", id, "status", label, "err", err)
		return fmt.Errorf("%w: update run: %v", common.ErrDatabase, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	r.log.Debug("extract_run updated", "run_id", id, "status", label)
	return nil
}

func (r *runRepo) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	b := r.db.builder()
	q, args := b.Select(runColumns...).From(b.Table(tableRuns)).
		Where(entsql.EQ("id", id.String())).
		Query()
	run, err := scanRun(r.db.SQL.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get run: %v", common.ErrDatabase, err)
	}
	return run, nil
}

func (r *runRepo) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	b := r.db.builder()
	q, args := b.Select(runColumns...).From(b.Table(tableRuns)).
		OrderBy(entsql.Desc("started_at")).
		Limit(limit).
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan run: %v", common.ErrDatabase, err)
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

func (r *runRepo) FindByHash(ctx context.Context, hash string) (*Run, error) {
	b := r.db.builder()
	q, args := b.Select(runColumns...).From(b.Table(tableRuns)).
		Where(entsql.And(
			entsql.EQ("content_hash", hash),
			entsql.EQ("status", string(constants.RunStatusParsed)),
		)).
		OrderBy(entsql.Desc("started_at")).
		Limit(1).
		Query()
	run, err := scanRun(r.db.SQL.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hash %s: %w", hash, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find run: %v", common.ErrDatabase, err)
	}
	return run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (*Run, error) {
	var (
		run      Run
		id       string
		status   string
		finished sql.NullTime
	)
	err := s.Scan(&id, &run.SourceName, &run.SourcePath, &run.ContentHash, &run.Method, &run.Pages,
		&status, &run.ErrorMessage, &run.Blocks, &run.Accepted, &run.Rejected, &run.ClosedOffset,
		&run.StartedAt, &finished)
	if err != nil {
		return nil, err
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	run.Status = constants.RunStatus(status)
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return &run, nil
}

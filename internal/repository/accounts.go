package repository

import (
	"context"
	"fmt"
	"log/slog"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-extractor/constants"
	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

// accounts per INSERT statement; keeps well under sqlite's bound-variable limit
const insertChunk = 100

type AccountRepository interface {
	// InsertBatch stores accounts for a run in one transaction, keeping their order.
	InsertBatch(ctx context.Context, runID uuid.UUID, accounts []report.Account) error
	// ListByRun returns a run's accounts in document order.
	ListByRun(ctx context.Context, runID uuid.UUID) ([]report.Account, error)
}

type accountRepo struct {
	db  *DB
	log *slog.Logger
}

func NewAccountRepository(db *DB, log *slog.Logger) AccountRepository {
	if log == nil {
		log = slog.Default()
	}
	return &accountRepo{db: db, log: log}
}

func accountColumns() []string {
	cols := []string{"run_id", "position", "section", "payment_status", "block_offset"}
	for _, spec := range report.Vocabulary {
		cols = append(cols, spec.Key)
	}
	return cols
}

func (r *accountRepo) InsertBatch(ctx context.Context, runID uuid.UUID, accounts []report.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", common.ErrDatabase, err)
	}
	defer func() { _ = tx.Rollback() }()

	cols := accountColumns()
	for start := 0; start < len(accounts); start += insertChunk {
		end := min(start+insertChunk, len(accounts))
		ins := r.db.builder().Insert(tableAccounts).Columns(cols...)
		for i := start; i < end; i++ {
			a := accounts[i]
			vals := []any{runID.String(), i, string(a.Section), a.PaymentStatus, a.Offset}
			for _, v := range a.Values() {
				vals = append(vals, v)
			}
			ins.Values(vals...)
		}
		q, args := ins.Query()
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			r.log.Error("account insert failed", "run_id", runID, "err", err)
			return fmt.Errorf("%w: insert accounts: %v", common.ErrDatabase, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", common.ErrDatabase, err)
	}
	r.log.Info("accounts stored", "run_id", runID, "accounts", len(accounts))
	return nil
}

func (r *accountRepo) ListByRun(ctx context.Context, runID uuid.UUID) ([]report.Account, error) {
	b := r.db.builder()
	q, args := b.Select(accountColumns()[2:]...).From(b.Table(tableAccounts)).
		Where(entsql.EQ("run_id", runID.String())).
		OrderBy("position").
		Query()
	rows, err := r.db.SQL.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list accounts: %v", common.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	fields := report.Fields()
	var out []report.Account
	for rows.Next() {
		var (
			section string
			acc     report.Account
			values  = make([]string, len(fields))
		)
		dest := []any{&section, &acc.PaymentStatus, &acc.Offset}
		for i := range values {
			dest = append(dest, &values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("%w: scan account: %v", common.ErrDatabase, err)
		}
		acc.Section = constants.ParseSection(section)
		for i, f := range fields {
			acc.Set(f, values[i])
		}
		out = append(out, acc)
	}
	return out, rows.Err()
}

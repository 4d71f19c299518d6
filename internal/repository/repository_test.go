package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cibil-extractor/constants"
	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "runs.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))
	return db
}

func account(name, number string, section constants.Section) report.Account {
	var a report.Account
	for _, f := range report.Fields() {
		a.Set(f, "")
	}
	a.Set(report.MemberName, name)
	a.Set(report.AccountNumber, number)
	a.Set(report.SanctionedAmount, "150000")
	a.Set(report.DateOpened, "01/04/2019")
	a.Section = section
	a.PaymentStatus = "STANDARD"
	return a
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql"}, nil)
	assert.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
	assert.NoError(t, db.HealthCheck(context.Background(), time.Second))
	assert.Equal(t, "sqlite3", db.Dialect())
}

func TestMigrate_AccountHasVocabularyColumns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	rows, err := db.SQL.QueryContext(ctx, "SELECT name FROM pragma_table_info('account')")
	require.NoError(t, err)
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		cols[name] = true
	}
	require.NoError(t, rows.Err())

	for _, name := range []string{"run_id", "position", "section", "payment_status", "block_offset"} {
		assert.True(t, cols[name], name)
	}
	for _, fs := range report.Vocabulary {
		assert.True(t, cols[fs.Key], fs.Key)
	}
}

func TestSchema_PostgresUsesTimestamptz(t *testing.T) {
	db := &DB{dialect: "postgres"}
	stmts := db.schema()
	require.Len(t, stmts, 4)
	assert.Contains(t, stmts[0], "started_at TIMESTAMPTZ NOT NULL")
	assert.Contains(t, stmts[1], "PRIMARY KEY (run_id, position)")
	assert.Contains(t, stmts[1], "REFERENCES extract_run (id) ON DELETE CASCADE")
}

func TestRunRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	runs := NewRunRepository(db, nil)

	run, err := runs.Start(ctx, StartRun{SourceName: "report.pdf", SourcePath: "/in/report.pdf", ContentHash: "abc"})
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusRunning, run.Status)

	require.NoError(t, runs.MarkTextOK(ctx, run.ID, "pdftotext", 3))
	got, err := runs.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusTextOK, got.Status)
	assert.Equal(t, "pdftotext", got.Method)
	assert.Equal(t, 3, got.Pages)
	assert.Nil(t, got.FinishedAt)
	assert.False(t, got.Stats().Boundary.Found)

	stats := report.Stats{Blocks: 3, Accepted: 2, Rejected: 1, Boundary: report.Boundary{Offset: 120, Found: true}}
	require.NoError(t, runs.FinishSuccess(ctx, run.ID, stats))

	got, err = runs.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusParsed, got.Status)
	assert.Equal(t, stats, got.Stats())
	require.NotNil(t, got.FinishedAt)
	assert.True(t, got.Status.Terminal())

	found, err := runs.FindByHash(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, run.ID, found.ID)
}

func TestRunRepository_FindByHashIgnoresUnparsedRuns(t *testing.T) {
	ctx := context.Background()
	runs := NewRunRepository(openTestDB(t), nil)

	empty, err := runs.Start(ctx, StartRun{SourceName: "a.txt", ContentHash: "h1"})
	require.NoError(t, err)
	require.NoError(t, runs.FinishEmpty(ctx, empty.ID, report.Stats{Blocks: 1, Rejected: 1}))

	failed, err := runs.Start(ctx, StartRun{SourceName: "a.txt", ContentHash: "h1"})
	require.NoError(t, err)
	require.NoError(t, runs.FinishFailure(ctx, failed.ID, "pdftotext: exit status 1"))

	_, err = runs.FindByHash(ctx, "h1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	got, err := runs.Get(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusFailed, got.Status)
	assert.Equal(t, "pdftotext: exit status 1", got.ErrorMessage)
}

func TestRunRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	runs := NewRunRepository(openTestDB(t), nil)

	_, err := runs.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.ErrorIs(t, runs.FinishFailure(ctx, uuid.New(), "x"), common.ErrNotFound)
}

func TestRunRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	runs := NewRunRepository(openTestDB(t), nil)

	var ids []uuid.UUID
	for _, name := range []string{"one.pdf", "two.pdf", "three.pdf"} {
		r, err := runs.Start(ctx, StartRun{SourceName: name, ContentHash: name})
		require.NoError(t, err)
		ids = append(ids, r.ID)
		time.Sleep(2 * time.Millisecond)
	}

	list, err := runs.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[1], list[1].ID)
}

func TestAccountRepository_RoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	runs := NewRunRepository(db, nil)
	accounts := NewAccountRepository(db, nil)

	run, err := runs.Start(ctx, StartRun{SourceName: "r.pdf", ContentHash: "x"})
	require.NoError(t, err)

	var in []report.Account
	for i := 0; i < insertChunk+5; i++ {
		section := constants.SectionOpen
		if i%2 == 1 {
			section = constants.SectionClosed
		}
		a := account("BANK", uuid.NewString(), section)
		a.Offset = i * 10
		in = append(in, a)
	}
	require.NoError(t, accounts.InsertBatch(ctx, run.ID, in))

	out, err := accounts.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	none, err := accounts.ListByRun(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NoError(t, accounts.InsertBatch(ctx, run.ID, nil))
}

func TestAccountRepository_RequiresRun(t *testing.T) {
	accounts := NewAccountRepository(openTestDB(t), nil)
	err := accounts.InsertBatch(context.Background(), uuid.New(), []report.Account{account("A", "1", constants.SectionOpen)})
	assert.ErrorIs(t, err, common.ErrDatabase)
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"

	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

const (
	tableRuns     = "extract_run"
	tableAccounts = "account"
)

// schema returns the DDL for the current dialect. The account table carries
// one TEXT column per vocabulary key.
func (d *DB) schema() []string {
	ts := "TIMESTAMP"
	if d.dialect == dialect.Postgres {
		ts = "TIMESTAMPTZ"
	}

	runs := `CREATE TABLE IF NOT EXISTS extract_run (
	id TEXT NOT NULL PRIMARY KEY,
	source_name TEXT NOT NULL,
	source_path TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL,
	method TEXT NOT NULL DEFAULT '',
	pages INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	blocks INTEGER NOT NULL DEFAULT 0,
	accepted INTEGER NOT NULL DEFAULT 0,
	rejected INTEGER NOT NULL DEFAULT 0,
	closed_offset INTEGER NOT NULL DEFAULT -1,
	started_at ` + ts + ` NOT NULL,
	finished_at ` + ts + `
)`

	var acc strings.Builder
	acc.WriteString("CREATE TABLE IF NOT EXISTS account (\n")
	acc.WriteString("\trun_id TEXT NOT NULL REFERENCES extract_run (id) ON DELETE CASCADE,\n")
	acc.WriteString("\tposition INTEGER NOT NULL,\n")
	acc.WriteString("\tsection TEXT NOT NULL,\n")
	acc.WriteString("\tpayment_status TEXT NOT NULL DEFAULT '',\n")
	acc.WriteString("\tblock_offset INTEGER NOT NULL DEFAULT 0,\n")
	for _, fs := range report.Vocabulary {
		fmt.Fprintf(&acc, "\t%s TEXT NOT NULL DEFAULT '',\n", quoteIdent(fs.Key))
	}
	acc.WriteString("\tPRIMARY KEY (run_id, position)\n)")

	return []string{
		runs,
		acc.String(),
		"CREATE INDEX IF NOT EXISTS extract_run_content_hash ON extract_run (content_hash)",
		"CREATE INDEX IF NOT EXISTS extract_run_started_at ON extract_run (started_at)",
	}
}

// quoteIdent double-quotes a column name; both sqlite and postgres accept it.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Migrate creates the extract_run and account tables if they do not exist.
func (d *DB) Migrate(ctx context.Context) error {
	for _, s := range d.schema() {
		if _, err := d.SQL.ExecContext(ctx, s); err != nil {
			d.logger.Error("migration failed", "statement", s, "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
	}
	d.logger.Info("database schema ready", "dialect", d.dialect)
	return nil
}

// Package app wires configuration into the store, extractor and pipeline
// shared by the daemon and the CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/export"
	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cibil-extractor/internal/repository"
	"github.com/joseph-ayodele/cibil-extractor/internal/textextract"
)

// App holds the wired components.
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	DB        *repository.DB
	Runs      repository.RunRepository
	Accounts  repository.AccountRepository
	Extractor *textextract.Extractor
	Processor *pipeline.Processor
	Exporter  *export.Service
}

// New opens and migrates the store, then builds the pipeline on top of it.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := repository.Open(ctx, DBConfig(cfg), logger)
	if err != nil {
		return nil, common.NewAppError(common.CodeStorage, "open database", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, common.NewAppError(common.CodeStorage, "migrate database", err)
	}

	runs := repository.NewRunRepository(db, logger)
	accounts := repository.NewAccountRepository(db, logger)
	tx := textextract.NewExtractor(ExtractorConfig(cfg), logger)

	logger.Info("app.ready",
		"db_driver", db.Dialect(),
		"extract_method", cfg.Extract.Method,
	)
	return &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Runs:      runs,
		Accounts:  accounts,
		Extractor: tx,
		Processor: pipeline.NewProcessor(logger, runs, accounts, tx, cfg.Extract.Timeout),
		Exporter:  export.NewService(runs, accounts, logger),
	}, nil
}

func (a *App) Close() {
	if a != nil && a.DB != nil {
		a.DB.Close()
	}
}

// DBConfig maps the database section onto repository.Config.
func DBConfig(cfg *common.Config) repository.Config {
	d := cfg.Database
	return repository.Config{
		Driver:           d.Driver,
		DSN:              d.DSN,
		MaxConns:         d.MaxConns,
		MinConns:         d.MinConns,
		MaxConnLifetime:  d.MaxConnLifetime,
		MaxConnIdleTime:  d.MaxConnIdleTime,
		DialTimeout:      d.DialTimeout,
		StatementTimeout: d.StatementTimeout,
	}
}

// ExtractorConfig maps the extract section onto textextract.Config.
func ExtractorConfig(cfg *common.Config) textextract.Config {
	e := cfg.Extract
	return textextract.Config{
		Method:    e.Method,
		Pdftotext: e.Pdftotext,
		Pdftoppm:  e.Pdftoppm,
		Tesseract: e.Tesseract,
		Lang:      e.Lang,
		DPI:       e.DPI,
		MaxPages:  e.MaxPages,
	}
}

// LoadConfig loads and validates configuration.
func LoadConfig() (*common.Config, error) {
	cfg, err := common.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

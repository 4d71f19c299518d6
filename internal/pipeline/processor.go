// Package pipeline runs a report through text extraction, parsing and storage.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cibil-extractor/constants"
	"github.com/joseph-ayodele/cibil-extractor/internal/common"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
	"github.com/joseph-ayodele/cibil-extractor/internal/repository"
	"github.com/joseph-ayodele/cibil-extractor/internal/textextract"
)

// Options tune a single processing call.
type Options struct {
	Force bool // reprocess even if the same content was already parsed
}

// Outcome is the result of processing one document.
type Outcome struct {
	RunID        uuid.UUID
	SourceName   string
	Method       string
	Pages        int
	Accounts     []report.Account
	Stats        report.Stats
	Warnings     []string
	Deduplicated bool
}

// Processor coordinates text extraction then parsing, with content-hash dedup.
type Processor struct {
	Logger   *slog.Logger
	Runs     repository.RunRepository
	Accounts repository.AccountRepository
	Text     *TextStage
	Parse    *ParseStage
}

func NewProcessor(logger *slog.Logger, runs repository.RunRepository, accounts repository.AccountRepository, tx TextExtractor, extractTimeout time.Duration) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:   logger,
		Runs:     runs,
		Accounts: accounts,
		Text:     NewTextStage(runs, tx, extractTimeout, logger),
		Parse:    NewParseStage(runs, accounts, logger),
	}
}

// ProcessFile extracts, parses and stores the report at path.
func (p *Processor) ProcessFile(ctx context.Context, path string, opts Options) (Outcome, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if constants.MapExtToFormat(ext) == "" {
		return Outcome{}, common.NewAppError(common.CodeUnsupported, fmt.Sprintf("unsupported file type %q", ext),
			fmt.Errorf("%w: %w", common.ErrInvalidInput, textextract.ErrUnsupportedFormat))
	}
	hash, err := hashFile(path)
	if err != nil {
		return Outcome{}, fmt.Errorf("hash %s: %w", path, err)
	}
	name := filepath.Base(path)

	if out, ok, err := p.dedup(ctx, hash, opts); err != nil || ok {
		return out, err
	}

	run, err := p.Runs.Start(ctx, repository.StartRun{SourceName: name, SourcePath: path, ContentHash: hash})
	if err != nil {
		return Outcome{}, err
	}
	ctx = common.WithRunID(ctx, run.ID)
	log := common.Logger(ctx, p.Logger)
	out := Outcome{RunID: run.ID, SourceName: name}

	// 1) text stage → marks the run TEXT_OK
	text, err := p.Text.Run(ctx, run.ID, path)
	out.Method, out.Pages, out.Warnings = string(text.Method), text.Pages, text.Warnings
	if err != nil {
		log.Error("processor.text.failed", "path", path, "err", err)
		return out, err
	}
	log.Info("processor.text.ok",
		"method", text.Method,
		"pages", text.Pages,
		"warnings", len(text.Warnings),
	)

	// 2) parse stage → stores accounts and finishes the run
	return p.parse(ctx, out, text.Text)
}

// ProcessText parses already-extracted report text.
func (p *Processor) ProcessText(ctx context.Context, name, text string, opts Options) (Outcome, error) {
	sum := sha256.Sum256([]byte(text))
	hash := hex.EncodeToString(sum[:])

	if out, ok, err := p.dedup(ctx, hash, opts); err != nil || ok {
		return out, err
	}

	run, err := p.Runs.Start(ctx, repository.StartRun{SourceName: name, ContentHash: hash})
	if err != nil {
		return Outcome{}, err
	}
	ctx = common.WithRunID(ctx, run.ID)
	if err := p.Runs.MarkTextOK(ctx, run.ID, string(constants.ExtractPlain), 1); err != nil {
		failRun(ctx, p.Runs, p.Logger, run.ID, err)
		return Outcome{RunID: run.ID, SourceName: name}, common.NewAppError(common.CodeStorage, "mark text extracted", err)
	}
	return p.parse(ctx, Outcome{RunID: run.ID, SourceName: name, Method: string(constants.ExtractPlain), Pages: 1}, text)
}

func (p *Processor) parse(ctx context.Context, out Outcome, text string) (Outcome, error) {
	log := common.Logger(ctx, p.Logger)
	res, err := p.Parse.Run(ctx, out.RunID, text)
	out.Stats = res.Stats
	out.Accounts = res.Accounts
	if err != nil {
		if errors.Is(err, report.ErrNoAccounts) {
			log.Warn("processor.parse.empty", "blocks", res.Stats.Blocks)
		} else {
			log.Error("processor.parse.failed", "err", err)
		}
		return out, err
	}
	log.Info("processor.parse.ok",
		"accounts", res.Stats.Accepted,
		"rejected", res.Stats.Rejected,
		"closed_section", res.Stats.Boundary.Found,
	)
	return out, nil
}

// dedup returns the stored outcome of a previous PARSED run with the same content.
func (p *Processor) dedup(ctx context.Context, hash string, opts Options) (Outcome, bool, error) {
	if opts.Force {
		return Outcome{}, false, nil
	}
	prev, err := p.Runs.FindByHash(ctx, hash)
	if errors.Is(err, common.ErrNotFound) {
		return Outcome{}, false, nil
	}
	if err != nil {
		return Outcome{}, false, err
	}
	accounts, err := p.Accounts.ListByRun(ctx, prev.ID)
	if err != nil {
		return Outcome{}, false, err
	}
	common.Logger(ctx, p.Logger).Info("processor.dedup", "run_id", prev.ID, "hash", hash, "accounts", len(accounts))
	return Outcome{
		RunID:        prev.ID,
		SourceName:   prev.SourceName,
		Method:       prev.Method,
		Pages:        prev.Pages,
		Accounts:     accounts,
		Stats:        prev.Stats(),
		Deduplicated: true,
	}, true, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Package textextract turns report files into plain text for the parser.
package textextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/joseph-ayodele/cibil-extractor/constants"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrNoText            = errors.New("no text extracted")
)

type Config struct {
	Method    constants.ExtractMethod // default auto
	Pdftotext string                  // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string                  // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string                  // binary name or absolute path; if empty -> "tesseract"

	Lang     string // tesseract language, default "eng"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // 0 = no limit
}

type Result struct {
	Text     string
	Pages    int
	Method   constants.ExtractMethod
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the command runner used for poppler and tesseract.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Method == "" {
		cfg.Method = constants.ExtractAuto
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("textextract.start", "path", path, "method", e.cfg.Method, "ext", ext)

	var (
		res Result
		err error
	)
	switch constants.MapExtToFormat(ext) {
	case constants.TEXT:
		res, err = e.extractPlain(path)
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	default:
		e.logger.Error("textextract.unsupported", "path", path, "extension", ext)
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("textextract.failed", "path", path, "warnings", len(res.Warnings), "err", err)
		return res, err
	}
	e.logger.Info("textextract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPlain(path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{Method: constants.ExtractPlain}, err
	}
	return Result{
		Text:   norm.NFC.String(string(b)),
		Pages:  1,
		Method: constants.ExtractPlain,
	}, nil
}

// methods returns the strategies to try, in order.
func (e *Extractor) methods() []constants.ExtractMethod {
	if e.cfg.Method == constants.ExtractAuto {
		return []constants.ExtractMethod{constants.ExtractNative, constants.ExtractPdftotext, constants.ExtractOCR}
	}
	return []constants.ExtractMethod{e.cfg.Method}
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (Result, error) {
	var (
		warns   []string
		lastErr error
	)
	for _, m := range e.methods() {
		var (
			text  string
			pages int
			w     []string
			err   error
		)
		switch m {
		case constants.ExtractNative:
			text, pages, w, err = e.nativeText(ctx, path)
		case constants.ExtractPdftotext:
			text, pages, w, err = e.pdfToText(ctx, path)
		case constants.ExtractOCR:
			text, pages, w, err = e.pdfToOCR(ctx, path)
		default:
			return Result{}, fmt.Errorf("unknown extract method %q", m)
		}
		warns = append(warns, w...)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Result{Warnings: warns}, ctxErr
			}
			warns = append(warns, fmt.Sprintf("%s: %v", m, err))
			lastErr = err
			e.logger.Warn("textextract.fallback", "path", path, "method", m, "err", err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			warns = append(warns, fmt.Sprintf("%s: no text", m))
			e.logger.Warn("textextract.fallback", "path", path, "method", m, "reason", "empty")
			continue
		}
		return Result{Text: text, Pages: pages, Method: m, Warnings: warns}, nil
	}
	if lastErr != nil {
		return Result{Warnings: warns}, errors.Join(ErrNoText, lastErr)
	}
	return Result{Warnings: warns}, ErrNoText
}

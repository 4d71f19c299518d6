package textextract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, stderrWarning(errb), fmt.Errorf("pdftotext: %w", err)
	}
	text = string(out)
	// a form feed terminates every page
	pages = strings.Count(text, "\f")
	if !strings.HasSuffix(text, "\f") {
		pages++
	}
	text = strings.ReplaceAll(text, "\f", "\n")
	return norm.NFC.String(text), pages, nil, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "cibil-ocr-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", 0, stderrWarning(errb), fmt.Errorf("pdftoppm: %w", err)
	}

	// prefix-1.png, prefix-2.png, ... (zero padded for long documents)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		warnings = append(warnings, fmt.Sprintf("ocr limited to %d of %d pages", e.cfg.MaxPages, len(matches)))
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, append(warnings, "pdftoppm produced no images"), errors.New("no pages rendered")
	}

	segments := make([]string, 0, len(matches))
	for _, img := range matches {
		// tesseract <file> stdout -l <lang>
		out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, img, "stdout", "-l", e.cfg.Lang)
		if err != nil {
			if ctx.Err() != nil {
				return "", 0, warnings, ctx.Err()
			}
			warnings = append(warnings, fmt.Sprintf("tesseract %s: %v", filepath.Base(img), err))
			warnings = append(warnings, stderrWarning(errb)...)
			segments = append(segments, "")
			continue
		}
		segments = append(segments, norm.NFC.String(string(out)))
	}
	return strings.Join(segments, "\n"), len(matches), warnings, nil
}

func stderrWarning(b []byte) []string {
	s := tail(string(b), 4)
	if s == "" {
		return nil
	}
	return []string{truncate(s, 512)}
}

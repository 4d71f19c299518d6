package textextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/cibil-extractor/internal/common"
)

// ErrToolMissing is returned when a poppler or tesseract binary is not on PATH.
var ErrToolMissing = errors.New("extraction tool not installed")

// Runner executes the poppler and tesseract binaries. Tests swap in a stub.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	log := common.Logger(ctx, r.logger).With("tool", filepath.Base(name))
	if len(args) > 0 {
		// input file or rendered page image
		log = log.With("input", filepath.Base(inputArg(args)))
	}

	var out, errb bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout, cmd.Stderr = &out, &errb

	start := time.Now()
	err := cmd.Run()
	took := time.Since(start).Milliseconds()

	switch {
	case errors.Is(err, exec.ErrNotFound):
		log.Error("textextract.tool.missing", "err", err)
		return nil, nil, fmt.Errorf("%w: %s", ErrToolMissing, name)
	case err != nil:
		log.Error("textextract.tool.failed",
			"duration_ms", took,
			"err", err,
			"stderr", tail(errb.String(), 4),
		)
	default:
		log.Debug("textextract.tool.ok",
			"duration_ms", took,
			"stdout_bytes", out.Len(),
		)
	}
	return out.Bytes(), errb.Bytes(), err
}

// inputArg picks the first argument that names a file rather than a flag value.
func inputArg(args []string) string {
	for _, a := range args {
		if ext := strings.ToLower(filepath.Ext(a)); ext == ".pdf" || ext == ".png" {
			return a
		}
	}
	return args[len(args)-1]
}

// tail keeps the last n non-empty lines of tool output; poppler and
// tesseract print the actual failure last.
func tail(s string, n int) string {
	lines := strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' })
	kept := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, " | ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

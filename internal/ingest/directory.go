package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

// ProcessDirectory walks root, filters by includeExts (or the defaults), skips
// hidden entries if requested, and processes matching files with at most
// workers in flight. Per-file failures are reported in the results; the
// returned error is reserved for walk and context failures.
func (in *Ingestor) ProcessDirectory(ctx context.Context, root string, includeExts []string, skipHidden bool, workers int, opts pipeline.Options) ([]FileResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}
	if workers <= 0 {
		workers = 1
	}
	exts := extSet(includeExts)

	var (
		stats   DirStats
		paths   []string
		results []FileResult
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		// skip hidden dirs/files if requested
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !allowed(path, exts) {
			return nil
		}
		stats.Matched++
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	perFile := make([]FileResult, len(paths))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := in.processOne(gctx, path, opts)

			mu.Lock()
			defer mu.Unlock()
			perFile[i] = res
			switch {
			case res.Empty:
				stats.Empty++
			case res.Err != "":
				stats.Failed++
			default:
				stats.Succeeded++
				if res.Deduplicated {
					stats.Deduplicated++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, stats, err
	}

	in.logger.Info("ingest.directory.ok",
		"root", root,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"empty", stats.Empty,
		"failed", stats.Failed,
	)
	return append(results, perFile...), stats, nil
}

func (in *Ingestor) processOne(ctx context.Context, path string, opts pipeline.Options) FileResult {
	out, err := in.proc.ProcessFile(ctx, path, opts)
	res := FileResult{Path: path, Accounts: len(out.Accounts), Deduplicated: out.Deduplicated}
	if out.RunID != uuid.Nil {
		res.RunID = out.RunID.String()
	}
	if err != nil {
		res.Err = err.Error()
		res.Empty = errors.Is(err, report.ErrNoAccounts)
		in.logger.Warn("ingest.file.failed", "path", path, "empty", res.Empty, "err", err)
	}
	return res
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cibil-extractor/internal/ingest"
	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
)

var (
	batchWorkers    int
	batchExts       []string
	batchSkipHidden bool
	batchForce      bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract accounts from every report in a directory",
	Long: `Walks a directory and processes every matching report in parallel.
Each file gets its own run; use "runs export" to write the results.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel files (default QUEUE_WORKERS)")
	batchCmd.Flags().StringSliceVar(&batchExts, "ext", nil, "file extensions to include (default pdf,txt)")
	batchCmd.Flags().BoolVar(&batchSkipHidden, "skip-hidden", true, "skip hidden files and directories")
	batchCmd.Flags().BoolVar(&batchForce, "force", false, "reprocess reports that were already parsed")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	workers := batchWorkers
	if workers <= 0 {
		workers = a.Config.Queue.Workers
	}
	in := ingest.NewIngestor(a.Processor, a.Logger)
	results, stats, err := in.ProcessDirectory(cmd.Context(), args[0], batchExts, batchSkipHidden, workers, pipeline.Options{Force: batchForce})
	for _, r := range results {
		switch {
		case r.Empty:
			cmd.Printf("EMPTY  %s\n", r.Path)
		case r.Err != "":
			cmd.Printf("FAILED %s: %s\n", r.Path, r.Err)
		default:
			cmd.Printf("OK     %s run=%s accounts=%d\n", r.Path, r.RunID, r.Accounts)
		}
	}
	if err != nil {
		return err
	}

	cmd.Printf("matched=%d succeeded=%d empty=%d deduplicated=%d failed=%d\n",
		stats.Matched, stats.Succeeded, stats.Empty, stats.Deduplicated, stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("%d file(s) failed", stats.Failed)
	}
	return nil
}

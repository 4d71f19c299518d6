package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cibil-extractor/internal/async"
	"github.com/joseph-ayodele/cibil-extractor/internal/ingest"
	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
)

var (
	watchDebounce    time.Duration
	watchInitialScan bool
	watchForce       bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Process reports as they appear in a directory",
	Long: `Watches a directory tree and queues every new or changed report for
extraction until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "coalesce bursts of file events")
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", true, "queue reports already in the directory")
	watchCmd.Flags().BoolVar(&watchForce, "force", false, "reprocess reports that were already parsed")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	q := async.NewProcessorQueue(a.Processor, a.Logger,
		async.WithWorkers(a.Config.Queue.Workers),
		async.WithQueueSize(a.Config.Queue.Size),
		async.WithProcessTimeout(a.Config.Extract.Timeout+30*time.Second),
		async.WithResultHook(func(job async.Job, out pipeline.Outcome, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				cmd.Printf("FAILED %s: %v\n", job.Path, err)
				return
			}
			cmd.Printf("OK     %s run=%s accounts=%d\n", job.Path, out.RunID, len(out.Accounts))
		}),
	)

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{args[0]},
		InitialScan: watchInitialScan,
		Debounce:    watchDebounce,
		Logger:      a.Logger,
	})
	if err != nil {
		return err
	}
	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])

loop:
	for {
		select {
		case path, ok := <-events:
			if !ok {
				break loop
			}
			job := async.Job{Path: path, Force: watchForce, SubmittedAt: time.Now(), TraceID: uuid.NewString()}
			if err := q.Enqueue(ctx, job); err != nil {
				a.Logger.Warn("watch.enqueue.failed", "path", path, "err", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.Logger.Warn("watch.error", "err", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), 30*time.Second)
	defer cancel()
	q.Shutdown(shutdownCtx)
	cmd.Println("Stopped.")
	return nil
}

package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cibil-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

type countingProcessor struct {
	processed atomic.Int32
	forced    atomic.Int32
	block     chan struct{}
}

func (p *countingProcessor) ProcessFile(ctx context.Context, path string, opts pipeline.Options) (pipeline.Outcome, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
			return pipeline.Outcome{}, ctx.Err()
		}
	}
	p.processed.Add(1)
	if opts.Force {
		p.forced.Add(1)
	}
	switch path {
	case "empty.pdf":
		return pipeline.Outcome{}, report.ErrNoAccounts
	case "broken.pdf":
		return pipeline.Outcome{}, errors.New("boom")
	}
	return pipeline.Outcome{SourceName: path}, nil
}

func TestProcessorQueue_ProcessesAndDrains(t *testing.T) {
	proc := &countingProcessor{}
	var (
		mu      sync.Mutex
		results = map[string]error{}
	)
	q := NewProcessorQueue(proc, nil,
		WithWorkers(3),
		WithQueueSize(2),
		WithResultHook(func(job Job, _ pipeline.Outcome, err error) {
			mu.Lock()
			results[job.Path] = err
			mu.Unlock()
		}),
	)

	paths := []string{"a.pdf", "b.pdf", "empty.pdf", "broken.pdf", "c.pdf"}
	for _, p := range paths {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p, Force: p == "a.pdf"}))
	}
	q.Shutdown(context.Background())

	assert.Equal(t, int32(len(paths)), proc.processed.Load())
	assert.Equal(t, int32(1), proc.forced.Load())
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, results, len(paths))
	assert.NoError(t, results["a.pdf"])
	assert.ErrorIs(t, results["empty.pdf"], report.ErrNoAccounts)
	assert.EqualError(t, results["broken.pdf"], "boom")
}

func TestProcessorQueue_RejectsAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&countingProcessor{}, nil, WithWorkers(1))
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late.pdf"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestProcessorQueue_EnqueueHonorsContextWhenFull(t *testing.T) {
	proc := &countingProcessor{block: make(chan struct{})}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(1))

	// one job held by the worker, one buffered
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "a.pdf"}))
	require.Eventually(t, func() bool { return len(q.ch) == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "b.pdf"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, Job{Path: "c.pdf"}), context.DeadlineExceeded)

	close(proc.block)
	q.Shutdown(context.Background())
	assert.Equal(t, int32(2), proc.processed.Load())
}

func TestProcessorQueue_JobTimeout(t *testing.T) {
	proc := &countingProcessor{block: make(chan struct{})}
	var got atomic.Value
	q := NewProcessorQueue(proc, nil,
		WithWorkers(1),
		WithProcessTimeout(10*time.Millisecond),
		WithResultHook(func(_ Job, _ pipeline.Outcome, err error) { got.Store(err) }),
	)
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "slow.pdf"}))
	q.Shutdown(context.Background())

	err, _ := got.Load().(error)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

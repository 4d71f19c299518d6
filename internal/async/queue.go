// Package async processes report files on a fixed pool of background workers.
package async

import (
	"context"
	"errors"
	"time"
)

// ErrQueueClosed is returned by Enqueue after Shutdown has started.
var ErrQueueClosed = errors.New("queue is shutting down")

// Job asks a worker to process one report file. TraceID, when set, is logged
// as the request id of everything the job does.
type Job struct {
	Path        string
	Force       bool
	SubmittedAt time.Time
	TraceID     string
}

// Queue accepts jobs until Shutdown, which waits for queued jobs to finish.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

package async

import (
	"context"
	"time"
)

// Job identifies one stored object awaiting extraction.
type Job struct {
	Key           string
	CorrelationID string
	SubmittedAt   time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

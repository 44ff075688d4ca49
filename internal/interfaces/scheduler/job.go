package scheduler

import "context"

// Job is a unit of work executed by the worker pool.
type Job interface {
	// Execute runs the job. Context must be respected for cancellation and
	// timeouts.
	Execute(ctx context.Context) error

	// UserID identifies whose data the job touches, for logging.
	UserID() string

	// Description is a human-readable job label, for logging.
	Description() string
}

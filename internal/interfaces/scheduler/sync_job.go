package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"zvit/internal/domain/statement"
)

// SyncService is the slice of the statement service the jobs need.
type SyncService interface {
	FullSync(ctx context.Context, userID int64) (*statement.Result, error)
	IncrementalSync(ctx context.Context, userID int64) (*statement.Result, error)
}

// StatementSyncJob pulls statements for a single user. The scheduled batches
// use the incremental mode; the full mode is submitted on demand from the
// HTTP layer.
type StatementSyncJob struct {
	userID  int64
	full    bool
	service SyncService
}

// NewIncrementalSyncJob creates a job that syncs from the user's cursor.
func NewIncrementalSyncJob(userID int64, service SyncService) *StatementSyncJob {
	return &StatementSyncJob{userID: userID, service: service}
}

// NewFullSyncJob creates a job that syncs the whole backfill window.
func NewFullSyncJob(userID int64, service SyncService) *StatementSyncJob {
	return &StatementSyncJob{userID: userID, full: true, service: service}
}

// Execute runs the sync. A sync already in flight for the user is not a
// failure: the running one covers the same data.
func (j *StatementSyncJob) Execute(ctx context.Context) error {
	result, err := j.run(ctx)
	if err != nil {
		if errors.Is(err, statement.ErrSyncInProgress) {
			log.Printf("Sync for user %d already in progress, skipping", j.userID)
			return nil
		}
		return fmt.Errorf("sync failed: %w", err)
	}

	log.Printf("Sync %s for user %d done: accounts=%d transactions=%d fallback=%v",
		result.RunID, j.userID, result.Accounts, result.Transactions, result.FallbackApplied)
	return nil
}

func (j *StatementSyncJob) run(ctx context.Context) (*statement.Result, error) {
	if j.full {
		return j.service.FullSync(ctx, j.userID)
	}
	return j.service.IncrementalSync(ctx, j.userID)
}

// UserID returns the user ID associated with this job.
func (j *StatementSyncJob) UserID() string {
	return strconv.FormatInt(j.userID, 10)
}

// Description returns a human-readable description of the job.
func (j *StatementSyncJob) Description() string {
	if j.full {
		return fmt.Sprintf("Full statement sync for user %d", j.userID)
	}
	return fmt.Sprintf("Incremental statement sync for user %d", j.userID)
}

package transaction

import (
	"context"
	"time"
)

// Repository defines the interface for transaction data access. Upsert is
// idempotent by statement item id.
type Repository interface {
	Upsert(ctx context.Context, params UpsertParams) (*Transaction, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Transaction, error)
	CountByUserID(ctx context.Context, userID int64) (int64, error)
	// LatestTimeByUserID returns the most recent transaction timestamp for the
	// user, or nil when the user has no transactions. It anchors incremental
	// sync.
	LatestTimeByUserID(ctx context.Context, userID int64) (*time.Time, error)
}

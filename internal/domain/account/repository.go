package account

import "context"

// Repository defines the interface for account data access.
type Repository interface {
	Upsert(ctx context.Context, params UpsertParams) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	ListByUserID(ctx context.Context, userID int64) ([]*Account, error)
}

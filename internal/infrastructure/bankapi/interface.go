package bankapi

import (
	"context"
	"time"
)

// ClientInterface defines the operations the sync engine needs from the
// upstream statement API. Allows mocking in tests.
type ClientInterface interface {
	GetClientInfo(ctx context.Context, token string) (*ClientInfo, error)
	GetStatement(ctx context.Context, token, accountID string, from, to time.Time) ([]StatementItem, error)
	SetWebhook(ctx context.Context, token, url string) error
}

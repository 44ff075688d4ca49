package statement

import (
	"context"
	"fmt"
	"log"

	"zvit/internal/infrastructure/bankapi"
)

const eventTypeStatementItem = "StatementItem"

// WebhookEvent is the upstream push notification payload.
type WebhookEvent struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

// WebhookData carries the pushed statement item and its account external id.
type WebhookData struct {
	Account       string                `json:"account"`
	StatementItem bankapi.StatementItem `json:"statementItem"`
}

// IngestWebhook applies a single pushed statement item through the same
// idempotent write path sync uses, without chunk planning or rate limiting.
// Unknown event types and unknown accounts are logged and dropped rather than
// raised: the upstream retries on non-2xx responses, and new event types may
// appear at any time.
func (s *Service) IngestWebhook(ctx context.Context, event *WebhookEvent) error {
	if event.Type != eventTypeStatementItem {
		log.Printf("Webhook: discarding event of unknown type %q", event.Type)
		return nil
	}

	acc, err := s.accounts.GetByID(ctx, event.Data.Account)
	if err != nil {
		return fmt.Errorf("failed to look up account %s: %w", event.Data.Account, err)
	}
	if acc == nil {
		// The account must have been seen by at least one prior sync.
		log.Printf("Webhook: dropping statement item %s for unknown account %s",
			event.Data.StatementItem.ID, event.Data.Account)
		return nil
	}

	item := &event.Data.StatementItem
	if _, err := s.transactions.Upsert(ctx, upsertParamsFromItem(acc.UserID, acc.ID, item)); err != nil {
		return fmt.Errorf("failed to upsert transaction %s: %w", item.ID, err)
	}

	log.Printf("Webhook: applied statement item %s to account %s", item.ID, acc.ID)
	return nil
}

package statement

import (
	"context"
	"strings"
	"testing"
	"time"

	"zvit/internal/domain/account"
	"zvit/internal/infrastructure/bankapi"
)

func TestIngestWebhook_StatementItem(t *testing.T) {
	ledger := newMemLedger()
	ledger.accounts["acc-1"] = &account.Account{ID: "acc-1", UserID: 7}

	s := newTestService(&MockClient{}, &MockUserRepo{}, ledger)

	event := &WebhookEvent{
		Type: "StatementItem",
		Data: WebhookData{
			Account: "acc-1",
			StatementItem: bankapi.StatementItem{
				ID:             "wh-tx-1",
				Time:           testNow.Add(-time.Minute).Unix(),
				Description:    "Coffee",
				MCC:            5411,
				Amount:         -3500,
				CashbackAmount: 35,
				Balance:        96500,
				Hold:           true,
			},
		},
	}

	if err := s.IngestWebhook(context.Background(), event); err != nil {
		t.Fatalf("IngestWebhook() failed: %v", err)
	}

	tx := ledger.transactions["wh-tx-1"]
	if tx == nil {
		t.Fatal("pushed statement item was not stored")
	}
	if tx.UserID != 7 {
		t.Errorf("UserID = %d, want the account owner 7", tx.UserID)
	}
	if tx.AccountID != "acc-1" {
		t.Errorf("AccountID = %q, want acc-1", tx.AccountID)
	}
	if !tx.Hold || tx.Amount != -3500 || tx.MCC != 5411 {
		t.Errorf("stored transaction fields = %+v, want webhook payload values", tx)
	}

	// Redelivery of the same item must not create a second row
	if err := s.IngestWebhook(context.Background(), event); err != nil {
		t.Fatalf("redelivered IngestWebhook() failed: %v", err)
	}
	if len(ledger.transactions) != 1 {
		t.Errorf("stored transactions after redelivery = %d, want 1", len(ledger.transactions))
	}
}

func TestIngestWebhook_UnknownEventType(t *testing.T) {
	ledger := newMemLedger()
	ledger.accounts["acc-1"] = &account.Account{ID: "acc-1", UserID: 7}
	s := newTestService(&MockClient{}, &MockUserRepo{}, ledger)

	event := &WebhookEvent{
		Type: "BalanceChange",
		Data: WebhookData{Account: "acc-1", StatementItem: bankapi.StatementItem{ID: "wh-tx-1"}},
	}

	if err := s.IngestWebhook(context.Background(), event); err != nil {
		t.Fatalf("IngestWebhook() returned %v, unknown event types must be dropped silently", err)
	}
	if len(ledger.transactions) != 0 {
		t.Error("unknown event type produced a stored transaction")
	}
}

func TestIngestWebhook_UnknownAccount(t *testing.T) {
	ledger := newMemLedger()
	s := newTestService(&MockClient{}, &MockUserRepo{}, ledger)

	event := &WebhookEvent{
		Type: "StatementItem",
		Data: WebhookData{Account: "never-synced", StatementItem: bankapi.StatementItem{ID: "wh-tx-1"}},
	}

	if err := s.IngestWebhook(context.Background(), event); err != nil {
		t.Fatalf("IngestWebhook() returned %v, unknown accounts must be dropped, not raised", err)
	}
	if len(ledger.transactions) != 0 {
		t.Error("item for an unknown account was stored")
	}
}

func TestIngestWebhook_WriteFailure(t *testing.T) {
	ledger := newMemLedger()
	ledger.accounts["acc-1"] = &account.Account{ID: "acc-1", UserID: 7}
	ledger.failTxID = "wh-tx-1"
	s := newTestService(&MockClient{}, &MockUserRepo{}, ledger)

	event := &WebhookEvent{
		Type: "StatementItem",
		Data: WebhookData{Account: "acc-1", StatementItem: bankapi.StatementItem{ID: "wh-tx-1"}},
	}

	err := s.IngestWebhook(context.Background(), event)
	if err == nil {
		t.Fatal("IngestWebhook() ignored a storage failure")
	}
	if !strings.Contains(err.Error(), "wh-tx-1") {
		t.Errorf("error %q does not name the failed item", err)
	}
}

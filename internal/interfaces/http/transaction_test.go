package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"zvit/internal/domain/transaction"
)

func TestHandleListTransactions(t *testing.T) {
	repo := &MockTransactionRepo{
		CountByUserIDFunc: func(ctx context.Context, userID int64) (int64, error) {
			return 101, nil
		},
		ListByUserIDFunc: func(ctx context.Context, userID int64, limit, offset int) ([]*transaction.Transaction, error) {
			if limit != 50 || offset != 100 {
				t.Errorf("ListByUserID(limit=%d, offset=%d), want limit=50 offset=100", limit, offset)
			}
			return []*transaction.Transaction{{ID: "tx-101", UserID: userID}}, nil
		},
	}
	handler := NewTransactionHandler(repo)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/transactions?page=3", nil), 1)
	rr := httptest.NewRecorder()

	handler.HandleListTransactions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var page TransactionPage
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if page.Total != 101 {
		t.Errorf("Total = %d, want 101", page.Total)
	}
	if page.Page != 3 {
		t.Errorf("Page = %d, want 3", page.Page)
	}
	if page.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3 (101 items at 50 per page)", page.TotalPages)
	}
	if len(page.Items) != 1 || page.Items[0].ID != "tx-101" {
		t.Errorf("Items = %+v, want the repo page", page.Items)
	}
}

func TestHandleListTransactions_EmptyLedger(t *testing.T) {
	handler := NewTransactionHandler(&MockTransactionRepo{})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/transactions", nil), 1)
	rr := httptest.NewRecorder()

	handler.HandleListTransactions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}

	var page TransactionPage
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if page.Items == nil {
		t.Error("Items = null, want an empty array")
	}
	if page.TotalPages != 0 || page.Total != 0 {
		t.Errorf("page = %+v, want zero totals", page)
	}
}

func TestHandleListTransactions_ClampsBadParams(t *testing.T) {
	repo := &MockTransactionRepo{
		ListByUserIDFunc: func(ctx context.Context, userID int64, limit, offset int) ([]*transaction.Transaction, error) {
			if limit != 50 || offset != 0 {
				t.Errorf("ListByUserID(limit=%d, offset=%d), want defaults for garbage params", limit, offset)
			}
			return nil, nil
		},
	}
	handler := NewTransactionHandler(repo)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/transactions?page=-2&limit=99999", nil), 1)
	rr := httptest.NewRecorder()

	handler.HandleListTransactions(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestHandleListTransactions_Unauthenticated(t *testing.T) {
	handler := NewTransactionHandler(&MockTransactionRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rr := httptest.NewRecorder()

	handler.HandleListTransactions(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestHandleListTransactions_MethodNotAllowed(t *testing.T) {
	handler := NewTransactionHandler(&MockTransactionRepo{})

	req := withUser(httptest.NewRequest(http.MethodPost, "/api/transactions", nil), 1)
	rr := httptest.NewRecorder()

	handler.HandleListTransactions(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
}

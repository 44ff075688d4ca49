package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"zvit/internal/domain/transaction"
	"zvit/internal/shared/middleware"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type TransactionHandler struct {
	transactions transaction.Repository
}

func NewTransactionHandler(transactions transaction.Repository) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type TransactionPage struct {
	Items      []*transaction.Transaction `json:"items"`
	Total      int64                      `json:"total"`
	Page       int                        `json:"page"`
	TotalPages int64                      `json:"totalPages"`
}

// HandleListTransactions returns a page of the user's transactions, newest
// first.
func (h *TransactionHandler) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil && parsed > 0 {
			page = parsed
		}
	}

	limit := defaultPageSize
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= maxPageSize {
			limit = parsed
		}
	}

	ctx := r.Context()
	offset := (page - 1) * limit

	total, err := h.transactions.CountByUserID(ctx, userID)
	if err != nil {
		log.Printf("Error counting transactions for user %d: %v", userID, err)
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}

	items, err := h.transactions.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		log.Printf("Error listing transactions for user %d: %v", userID, err)
		http.Error(w, "Failed to list transactions", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []*transaction.Transaction{}
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TransactionPage{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}

package http

import (
	"encoding/json"
	"log"
	"net/http"

	"zvit/internal/domain/account"
	"zvit/internal/shared/middleware"
)

type AccountHandler struct {
	accounts account.Repository
}

func NewAccountHandler(accounts account.Repository) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// HandleListAccounts returns the user's synced account snapshots.
func (h *AccountHandler) HandleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	accounts, err := h.accounts.ListByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("Error listing accounts for user %d: %v", userID, err)
		http.Error(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}
	if accounts == nil {
		accounts = []*account.Account{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accounts)
}

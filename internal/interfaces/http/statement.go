package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"zvit/internal/domain/statement"
	"zvit/internal/infrastructure/bankapi"
	"zvit/internal/interfaces/scheduler"
	"zvit/internal/shared/middleware"
)

// StatementService is the slice of the statement domain the HTTP layer uses.
type StatementService interface {
	SaveToken(ctx context.Context, userID int64, token string) error
	TokenStatus(ctx context.Context, userID int64) (*statement.TokenStatus, error)
	FullSync(ctx context.Context, userID int64) (*statement.Result, error)
	IncrementalSync(ctx context.Context, userID int64) (*statement.Result, error)
	RegisterWebhook(ctx context.Context, userID int64) (string, error)
	IngestWebhook(ctx context.Context, event *statement.WebhookEvent) error
	SyncInProgress(userID int64) bool
}

// JobSubmitter queues background work; the worker pool implements it.
type JobSubmitter interface {
	Submit(job scheduler.Job) error
}

type StatementHandler struct {
	service StatementService
	jobs    JobSubmitter
}

func NewStatementHandler(service StatementService, jobs JobSubmitter) *StatementHandler {
	return &StatementHandler{service: service, jobs: jobs}
}

type SaveTokenRequest struct {
	Token string `json:"token"`
}

// HandleSaveToken validates and stores the user's upstream bank token.
func (h *StatementHandler) HandleSaveToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SaveTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	if err := h.service.SaveToken(r.Context(), userID, req.Token); err != nil {
		status, msg := upstreamErrorStatus(err)
		log.Printf("Save token for user %d failed: %v", userID, err)
		http.Error(w, msg, status)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleTokenStatus reports whether a token is stored and how much ledger
// data has been synced.
func (h *StatementHandler) HandleTokenStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status, err := h.service.TokenStatus(r.Context(), userID)
	if err != nil {
		log.Printf("Token status for user %d failed: %v", userID, err)
		http.Error(w, "Failed to get token status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

type syncQueuedResponse struct {
	Status string `json:"status"`
	Mode   string `json:"mode"`
}

// HandleFullSync queues a full backfill sync. The sync itself runs on the
// worker pool: with the mandatory spacing between statement requests a run
// takes minutes, far beyond a sensible HTTP timeout.
func (h *StatementHandler) HandleFullSync(w http.ResponseWriter, r *http.Request) {
	h.enqueueSync(w, r, "full")
}

// HandleIncrementalSync queues a sync from the user's cursor.
func (h *StatementHandler) HandleIncrementalSync(w http.ResponseWriter, r *http.Request) {
	h.enqueueSync(w, r, "incremental")
}

func (h *StatementHandler) enqueueSync(w http.ResponseWriter, r *http.Request, mode string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	// Fail fast on the conditions the job would hit anyway
	status, err := h.service.TokenStatus(r.Context(), userID)
	if err != nil {
		log.Printf("Sync precheck for user %d failed: %v", userID, err)
		http.Error(w, "Failed to queue sync", http.StatusInternalServerError)
		return
	}
	if !status.HasToken {
		http.Error(w, "No bank token on file", http.StatusBadRequest)
		return
	}
	if h.service.SyncInProgress(userID) {
		http.Error(w, "Sync already in progress", http.StatusConflict)
		return
	}

	var job scheduler.Job
	if mode == "full" {
		job = scheduler.NewFullSyncJob(userID, h.service)
	} else {
		job = scheduler.NewIncrementalSyncJob(userID, h.service)
	}

	if err := h.jobs.Submit(job); err != nil {
		log.Printf("Failed to queue %s sync for user %d: %v", mode, userID, err)
		http.Error(w, "Sync queue is full, try again later", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(syncQueuedResponse{Status: "queued", Mode: mode})
}

type registerWebhookResponse struct {
	URL string `json:"url"`
}

// HandleRegisterWebhook registers this deployment's callback URL upstream.
func (h *StatementHandler) HandleRegisterWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	url, err := h.service.RegisterWebhook(r.Context(), userID)
	if err != nil {
		if errors.Is(err, statement.ErrNoToken) {
			http.Error(w, "No bank token on file", http.StatusBadRequest)
			return
		}
		status, msg := upstreamErrorStatus(err)
		log.Printf("Webhook registration for user %d failed: %v", userID, err)
		http.Error(w, msg, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(registerWebhookResponse{URL: url})
}

// HandleWebhook receives upstream push notifications. It always answers 200
// to a well-formed request: a non-2xx response makes the upstream retry, and
// re-delivery of an event we chose to drop is pointless.
func (h *StatementHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		// Upstream probes the URL with GET before accepting it
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event statement.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.IngestWebhook(r.Context(), &event); err != nil {
		// Storage failures are logged but still acknowledged; the item will
		// be picked up by the next sync.
		log.Printf("Webhook ingestion failed: %v", err)
	}

	w.WriteHeader(http.StatusOK)
}

// upstreamErrorStatus maps upstream call failures to HTTP responses.
func upstreamErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, statement.ErrNoToken):
		return http.StatusBadRequest, "No bank token on file"
	case errors.Is(err, bankapi.ErrInvalidToken), errors.Is(err, bankapi.ErrForbidden):
		return http.StatusUnauthorized, "Bank rejected the token"
	case errors.Is(err, bankapi.ErrInvalidRequest):
		return http.StatusBadRequest, "Bank rejected the request"
	case errors.Is(err, bankapi.ErrRateLimited):
		return http.StatusTooManyRequests, "Bank rate limit hit, try again later"
	default:
		return http.StatusBadGateway, "Bank is unavailable"
	}
}

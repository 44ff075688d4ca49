package statement

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"zvit/internal/domain/account"
	"zvit/internal/domain/transaction"
	"zvit/internal/domain/user"
	"zvit/internal/infrastructure/bankapi"

	"github.com/google/uuid"
)

const (
	// MaxStatementSpan is the longest range the upstream accepts in a single
	// statement request.
	MaxStatementSpan = 31 * 24 * time.Hour

	// fullSyncWindow is how far back a full sync reaches.
	fullSyncWindow = 90 * 24 * time.Hour

	// defaultRequestInterval spaces statement requests: the upstream allows
	// one request per account per minute.
	defaultRequestInterval = 60 * time.Second

	webhookCallbackPath = "/api/webhook"
)

// Config holds sync service settings.
type Config struct {
	// WebhookBaseURL is this deployment's public base URL, used to build the
	// webhook callback registered upstream.
	WebhookBaseURL string

	// RequestInterval overrides the mandatory wait between statement
	// requests. Zero selects the upstream default of one minute.
	RequestInterval time.Duration
}

// Service orchestrates full and incremental statement syncs and webhook
// registration against the upstream API.
type Service struct {
	client          bankapi.ClientInterface
	users           user.Repository
	accounts        account.Repository
	transactions    transaction.Repository
	webhookBaseURL  string
	requestInterval time.Duration
	locks           *syncLocks
	now             func() time.Time
}

// NewService creates a new sync service.
func NewService(
	client bankapi.ClientInterface,
	users user.Repository,
	accounts account.Repository,
	transactions transaction.Repository,
	cfg Config,
) *Service {
	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = defaultRequestInterval
	}
	return &Service{
		client:          client,
		users:           users,
		accounts:        accounts,
		transactions:    transactions,
		webhookBaseURL:  strings.TrimRight(cfg.WebhookBaseURL, "/"),
		requestInterval: interval,
		locks:           newSyncLocks(),
		now:             time.Now,
	}
}

// Result contains the aggregate outcome of a sync run. Per-chunk and
// per-transaction failures are logged and skipped, not enumerated here.
type Result struct {
	RunID           string `json:"runId"`
	Accounts        int    `json:"accountsCount"`
	Transactions    int    `json:"transactionsCount"`
	FallbackApplied bool   `json:"fallbackApplied"`
}

// TokenStatus describes the state of a user's stored token and ledger.
type TokenStatus struct {
	HasToken            bool       `json:"hasToken"`
	HasTransactions     bool       `json:"hasTransactions"`
	TransactionCount    int64      `json:"transactionCount"`
	LastTransactionTime *time.Time `json:"lastTransactionTime,omitempty"`
}

// SaveToken validates the plaintext token against the upstream and stores it
// encrypted. An invalid token is surfaced synchronously and never stored.
func (s *Service) SaveToken(ctx context.Context, userID int64, token string) error {
	if _, err := s.client.GetClientInfo(ctx, token); err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}

	if err := s.users.SaveToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	log.Printf("User %d: upstream token saved", userID)
	return nil
}

// TokenStatus reports whether the user has a token and how much ledger data
// has been synced so far.
func (s *Service) TokenStatus(ctx context.Context, userID int64) (*TokenStatus, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	count, err := s.transactions.CountByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	latest, err := s.transactions.LatestTimeByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest transaction time: %w", err)
	}

	return &TokenStatus{
		HasToken:            u != nil && u.HasToken(),
		HasTransactions:     count > 0,
		TransactionCount:    count,
		LastTransactionTime: latest,
	}, nil
}

// FullSync pulls the trailing 90 days of statements for every upstream
// account of the user. Accounts are processed sequentially and chunks in
// chronological order; a failed chunk or transaction write is logged and
// skipped without aborting the rest of the run.
func (s *Service) FullSync(ctx context.Context, userID int64) (*Result, error) {
	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.locks.tryAcquire(userID) {
		return nil, ErrSyncInProgress
	}
	defer s.locks.release(userID)

	now := s.now()
	return s.sync(ctx, userID, token, Window{From: now.Add(-fullSyncWindow), To: now}, false)
}

// IncrementalSync pulls statements from the latest stored transaction
// timestamp (the cursor) up to now. With no cursor it delegates to FullSync.
// When the cursor is older than the maximum statement span, only the trailing
// span is fetched and FallbackApplied is set: the gap between the true cursor
// and the fallback start is skipped, trading completeness for request-count
// safety after long inactivity.
func (s *Service) IncrementalSync(ctx context.Context, userID int64) (*Result, error) {
	token, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}

	cursor, err := s.transactions.LatestTimeByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sync cursor: %w", err)
	}
	if cursor == nil {
		log.Printf("User %d: no sync cursor, falling back to full sync", userID)
		return s.FullSync(ctx, userID)
	}

	now := s.now()
	win := Window{From: *cursor, To: now}
	fallback := false
	if win.Span() > MaxStatementSpan {
		win.From = now.Add(-MaxStatementSpan)
		fallback = true
		log.Printf("User %d: cursor %s is older than the maximum statement span, fetching only the trailing window from %s (gap is not retried)",
			userID, cursor.Format(time.RFC3339), win.From.Format(time.RFC3339))
	}

	if !s.locks.tryAcquire(userID) {
		return nil, ErrSyncInProgress
	}
	defer s.locks.release(userID)

	return s.sync(ctx, userID, token, win, fallback)
}

// SyncInProgress reports whether a sync is currently running for the user.
func (s *Service) SyncInProgress(userID int64) bool {
	return s.locks.held(userID)
}

// RegisterWebhook registers this deployment's public callback URL upstream.
func (s *Service) RegisterWebhook(ctx context.Context, userID int64) (string, error) {
	token, err := s.token(ctx, userID)
	if err != nil {
		return "", err
	}

	url := s.webhookBaseURL + webhookCallbackPath
	if err := s.client.SetWebhook(ctx, token, url); err != nil {
		return "", fmt.Errorf("failed to register webhook: %w", err)
	}

	log.Printf("User %d: webhook registered at %s", userID, url)
	return url, nil
}

// token loads and returns the user's decrypted upstream token. No upstream
// call is attempted when no token is on file.
func (s *Service) token(ctx context.Context, userID int64) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil || !u.HasToken() {
		return "", ErrNoToken
	}
	return u.Token, nil
}

func (s *Service) sync(ctx context.Context, userID int64, token string, win Window, fallback bool) (*Result, error) {
	result := &Result{RunID: uuid.NewString(), FallbackApplied: fallback}

	info, err := s.client.GetClientInfo(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client info: %w", err)
	}

	log.Printf("User %d: sync %s: %d accounts upstream, window %s..%s",
		userID, result.RunID, len(info.Accounts), win.From.Format(time.RFC3339), win.To.Format(time.RFC3339))

	for _, apiAcc := range info.Accounts {
		if err := s.syncAccount(ctx, userID, token, apiAcc, win, result); err != nil {
			if ctx.Err() != nil {
				// Cancellation aborts the run; progress already written stays.
				return result, err
			}
			log.Printf("User %d: failed to sync account %s: %v", userID, apiAcc.ID, err)
		}
	}

	log.Printf("User %d: sync %s complete: accounts=%d transactions=%d fallback=%v",
		userID, result.RunID, result.Accounts, result.Transactions, result.FallbackApplied)

	return result, nil
}

func (s *Service) syncAccount(ctx context.Context, userID int64, token string, apiAcc bankapi.Account, win Window, result *Result) error {
	_, err := s.accounts.Upsert(ctx, account.UpsertParams{
		ID:           apiAcc.ID,
		UserID:       userID,
		Balance:      apiAcc.Balance,
		CreditLimit:  apiAcc.CreditLimit,
		CurrencyCode: apiAcc.CurrencyCode,
		Type:         apiAcc.Type,
		MaskedPan:    strings.Join(apiAcc.MaskedPan, ","),
		IBAN:         apiAcc.IBAN,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	result.Accounts++

	for _, chunk := range SplitRange(win.From, win.To, MaxStatementSpan) {
		// Mandatory spacing precedes every statement request (the previous
		// upstream call shares the same budget); it never trails the loop.
		if err := s.wait(ctx); err != nil {
			return err
		}

		items, err := s.client.GetStatement(ctx, token, apiAcc.ID, chunk.From, chunk.To)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("User %d: skipping chunk %s..%s for account %s: %v",
				userID, chunk.From.Format(time.RFC3339), chunk.To.Format(time.RFC3339), apiAcc.ID, err)
			continue
		}

		for i := range items {
			if _, err := s.transactions.Upsert(ctx, upsertParamsFromItem(userID, apiAcc.ID, &items[i])); err != nil {
				log.Printf("User %d: failed to upsert transaction %s: %v", userID, items[i].ID, err)
				continue
			}
			result.Transactions++
		}
	}

	return nil
}

// wait is the cooperative suspension point between upstream calls. A select
// on ctx keeps multi-minute syncs cancellable at every chunk boundary.
func (s *Service) wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.requestInterval):
		return nil
	}
}

func upsertParamsFromItem(userID int64, accountID string, item *bankapi.StatementItem) transaction.UpsertParams {
	return transaction.UpsertParams{
		ID:              item.ID,
		UserID:          userID,
		AccountID:       accountID,
		Time:            item.OccurredAt(),
		Description:     item.Description,
		MCC:             item.MCC,
		OriginalMCC:     item.OriginalMCC,
		Amount:          item.Amount,
		OperationAmount: item.OperationAmount,
		CurrencyCode:    item.CurrencyCode,
		CommissionRate:  item.CommissionRate,
		CashbackAmount:  item.CashbackAmount,
		Balance:         item.Balance,
		Hold:            item.Hold,
	}
}

package http

import (
	"context"
	"net/http"
	"time"

	"zvit/internal/domain/account"
	"zvit/internal/domain/statement"
	"zvit/internal/domain/transaction"
	"zvit/internal/domain/user"
	"zvit/internal/interfaces/scheduler"
	"zvit/internal/shared/middleware"
)

// MockUserRepo implements user.Repository for testing
type MockUserRepo struct {
	CreateFunc     func(ctx context.Context, params user.CreateUserParams) (*user.User, error)
	GetByIDFunc    func(ctx context.Context, id int64) (*user.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*user.User, error)
}

func (m *MockUserRepo) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, params)
	}
	return nil, nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepo) SaveToken(ctx context.Context, userID int64, token string) error {
	return nil
}

func (m *MockUserRepo) ListWithToken(ctx context.Context) ([]*user.User, error) {
	return nil, nil
}

// MockAccountRepo implements account.Repository for testing
type MockAccountRepo struct {
	ListByUserIDFunc func(ctx context.Context, userID int64) ([]*account.Account, error)
}

func (m *MockAccountRepo) Upsert(ctx context.Context, params account.UpsertParams) (*account.Account, error) {
	return nil, nil
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id string) (*account.Account, error) {
	return nil, nil
}

func (m *MockAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

// MockTransactionRepo implements transaction.Repository for testing
type MockTransactionRepo struct {
	ListByUserIDFunc  func(ctx context.Context, userID int64, limit, offset int) ([]*transaction.Transaction, error)
	CountByUserIDFunc func(ctx context.Context, userID int64) (int64, error)
}

func (m *MockTransactionRepo) Upsert(ctx context.Context, params transaction.UpsertParams) (*transaction.Transaction, error) {
	return nil, nil
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	return nil, nil
}

func (m *MockTransactionRepo) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*transaction.Transaction, error) {
	if m.ListByUserIDFunc != nil {
		return m.ListByUserIDFunc(ctx, userID, limit, offset)
	}
	return nil, nil
}

func (m *MockTransactionRepo) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	if m.CountByUserIDFunc != nil {
		return m.CountByUserIDFunc(ctx, userID)
	}
	return 0, nil
}

func (m *MockTransactionRepo) LatestTimeByUserID(ctx context.Context, userID int64) (*time.Time, error) {
	return nil, nil
}

// MockStatementService implements StatementService for testing
type MockStatementService struct {
	SaveTokenFunc       func(ctx context.Context, userID int64, token string) error
	TokenStatusFunc     func(ctx context.Context, userID int64) (*statement.TokenStatus, error)
	FullSyncFunc        func(ctx context.Context, userID int64) (*statement.Result, error)
	IncrementalSyncFunc func(ctx context.Context, userID int64) (*statement.Result, error)
	RegisterWebhookFunc func(ctx context.Context, userID int64) (string, error)
	IngestWebhookFunc   func(ctx context.Context, event *statement.WebhookEvent) error
	SyncInProgressFunc  func(userID int64) bool
}

func (m *MockStatementService) SaveToken(ctx context.Context, userID int64, token string) error {
	if m.SaveTokenFunc != nil {
		return m.SaveTokenFunc(ctx, userID, token)
	}
	return nil
}

func (m *MockStatementService) TokenStatus(ctx context.Context, userID int64) (*statement.TokenStatus, error) {
	if m.TokenStatusFunc != nil {
		return m.TokenStatusFunc(ctx, userID)
	}
	return &statement.TokenStatus{HasToken: true}, nil
}

func (m *MockStatementService) FullSync(ctx context.Context, userID int64) (*statement.Result, error) {
	if m.FullSyncFunc != nil {
		return m.FullSyncFunc(ctx, userID)
	}
	return &statement.Result{}, nil
}

func (m *MockStatementService) IncrementalSync(ctx context.Context, userID int64) (*statement.Result, error) {
	if m.IncrementalSyncFunc != nil {
		return m.IncrementalSyncFunc(ctx, userID)
	}
	return &statement.Result{}, nil
}

func (m *MockStatementService) RegisterWebhook(ctx context.Context, userID int64) (string, error) {
	if m.RegisterWebhookFunc != nil {
		return m.RegisterWebhookFunc(ctx, userID)
	}
	return "", nil
}

func (m *MockStatementService) IngestWebhook(ctx context.Context, event *statement.WebhookEvent) error {
	if m.IngestWebhookFunc != nil {
		return m.IngestWebhookFunc(ctx, event)
	}
	return nil
}

func (m *MockStatementService) SyncInProgress(userID int64) bool {
	if m.SyncInProgressFunc != nil {
		return m.SyncInProgressFunc(userID)
	}
	return false
}

// MockJobSubmitter implements JobSubmitter for testing
type MockJobSubmitter struct {
	SubmitFunc func(job scheduler.Job) error
	Submitted  []scheduler.Job
}

func (m *MockJobSubmitter) Submit(job scheduler.Job) error {
	m.Submitted = append(m.Submitted, job)
	if m.SubmitFunc != nil {
		return m.SubmitFunc(job)
	}
	return nil
}

// withUser attaches the authenticated user id the way the auth middleware
// does.
func withUser(r *http.Request, userID int64) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
	return r.WithContext(ctx)
}

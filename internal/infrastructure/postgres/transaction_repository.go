package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"zvit/internal/domain/transaction"
)

// TransactionRepository implements the transaction.Repository interface for PostgreSQL
type TransactionRepository struct {
	db *DB
}

// NewTransactionRepository creates a new PostgreSQL transaction repository
func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Upsert applies a statement item keyed by its upstream id. Re-applying the
// same id updates the row in place, so sync replays and webhook redeliveries
// never produce duplicates.
func (r *TransactionRepository) Upsert(ctx context.Context, params transaction.UpsertParams) (*transaction.Transaction, error) {
	query := `
		INSERT INTO transactions (
			id, user_id, account_id, occurred_at, description, mcc, original_mcc,
			amount, operation_amount, currency_code, commission_rate, cashback_amount, balance, hold
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id)
		DO UPDATE SET
			occurred_at = EXCLUDED.occurred_at,
			description = EXCLUDED.description,
			mcc = EXCLUDED.mcc,
			original_mcc = EXCLUDED.original_mcc,
			amount = EXCLUDED.amount,
			operation_amount = EXCLUDED.operation_amount,
			currency_code = EXCLUDED.currency_code,
			commission_rate = EXCLUDED.commission_rate,
			cashback_amount = EXCLUDED.cashback_amount,
			balance = EXCLUDED.balance,
			hold = EXCLUDED.hold,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, user_id, account_id, occurred_at, description, mcc, original_mcc,
		          amount, operation_amount, currency_code, commission_rate, cashback_amount, balance, hold,
		          created_at, updated_at
	`

	var tx transaction.Transaction
	err := r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.AccountID, params.Time, params.Description,
		params.MCC, params.OriginalMCC, params.Amount, params.OperationAmount,
		params.CurrencyCode, params.CommissionRate, params.CashbackAmount, params.Balance, params.Hold,
	).Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &tx.Time, &tx.Description,
		&tx.MCC, &tx.OriginalMCC, &tx.Amount, &tx.OperationAmount,
		&tx.CurrencyCode, &tx.CommissionRate, &tx.CashbackAmount, &tx.Balance, &tx.Hold,
		&tx.CreatedAt, &tx.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert transaction: %w", err)
	}

	return &tx, nil
}

// GetByID retrieves a transaction by its upstream statement item id.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*transaction.Transaction, error) {
	query := `
		SELECT id, user_id, account_id, occurred_at, description, mcc, original_mcc,
		       amount, operation_amount, currency_code, commission_rate, cashback_amount, balance, hold,
		       created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	var tx transaction.Transaction
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &tx.Time, &tx.Description,
		&tx.MCC, &tx.OriginalMCC, &tx.Amount, &tx.OperationAmount,
		&tx.CurrencyCode, &tx.CommissionRate, &tx.CashbackAmount, &tx.Balance, &tx.Hold,
		&tx.CreatedAt, &tx.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return &tx, nil
}

// ListByUserID retrieves a page of the user's transactions, newest first.
func (r *TransactionRepository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*transaction.Transaction, error) {
	query := `
		SELECT id, user_id, account_id, occurred_at, description, mcc, original_mcc,
		       amount, operation_amount, currency_code, commission_rate, cashback_amount, balance, hold,
		       created_at, updated_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY occurred_at DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		var tx transaction.Transaction
		err := rows.Scan(
			&tx.ID, &tx.UserID, &tx.AccountID, &tx.Time, &tx.Description,
			&tx.MCC, &tx.OriginalMCC, &tx.Amount, &tx.OperationAmount,
			&tx.CurrencyCode, &tx.CommissionRate, &tx.CashbackAmount, &tx.Balance, &tx.Hold,
			&tx.CreatedAt, &tx.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &tx)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// CountByUserID returns the total number of transactions for a user.
func (r *TransactionRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE user_id = $1`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	return count, nil
}

// LatestTimeByUserID returns the most recent occurred_at for the user, or nil
// when the user has no transactions.
func (r *TransactionRepository) LatestTimeByUserID(ctx context.Context, userID int64) (*time.Time, error) {
	query := `SELECT MAX(occurred_at) FROM transactions WHERE user_id = $1`

	var latest sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&latest); err != nil {
		return nil, fmt.Errorf("failed to get latest transaction time: %w", err)
	}

	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"zvit/internal/domain/account"
)

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Upsert creates or refreshes an account snapshot keyed by the upstream id.
func (r *AccountRepository) Upsert(ctx context.Context, params account.UpsertParams) (*account.Account, error) {
	query := `
		INSERT INTO accounts (id, user_id, balance, credit_limit, currency_code, account_type, masked_pan, iban)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id)
		DO UPDATE SET
			balance = EXCLUDED.balance,
			credit_limit = EXCLUDED.credit_limit,
			currency_code = EXCLUDED.currency_code,
			account_type = EXCLUDED.account_type,
			masked_pan = EXCLUDED.masked_pan,
			iban = EXCLUDED.iban,
			updated_at = CURRENT_TIMESTAMP
		RETURNING id, user_id, balance, credit_limit, currency_code, account_type, masked_pan, iban, created_at, updated_at
	`

	var acc account.Account
	var maskedPan, iban sql.NullString

	err := r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.Balance, params.CreditLimit,
		params.CurrencyCode, params.Type, nullString(params.MaskedPan), nullString(params.IBAN),
	).Scan(
		&acc.ID, &acc.UserID, &acc.Balance, &acc.CreditLimit,
		&acc.CurrencyCode, &acc.Type, &maskedPan, &iban,
		&acc.CreatedAt, &acc.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}

	if maskedPan.Valid {
		acc.MaskedPan = maskedPan.String
	}
	if iban.Valid {
		acc.IBAN = iban.String
	}

	return &acc, nil
}

// GetByID retrieves an account by its upstream id.
// An unknown id returns (nil, nil): webhook ingestion probes for accounts
// that may never have been synced.
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*account.Account, error) {
	query := `
		SELECT id, user_id, balance, credit_limit, currency_code, account_type, masked_pan, iban, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	var acc account.Account
	var maskedPan, iban sql.NullString

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&acc.ID, &acc.UserID, &acc.Balance, &acc.CreditLimit,
		&acc.CurrencyCode, &acc.Type, &maskedPan, &iban,
		&acc.CreatedAt, &acc.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if maskedPan.Valid {
		acc.MaskedPan = maskedPan.String
	}
	if iban.Valid {
		acc.IBAN = iban.String
	}

	return &acc, nil
}

// ListByUserID retrieves all accounts for a specific user
func (r *AccountRepository) ListByUserID(ctx context.Context, userID int64) ([]*account.Account, error) {
	query := `
		SELECT id, user_id, balance, credit_limit, currency_code, account_type, masked_pan, iban, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		var acc account.Account
		var maskedPan, iban sql.NullString

		err := rows.Scan(
			&acc.ID, &acc.UserID, &acc.Balance, &acc.CreditLimit,
			&acc.CurrencyCode, &acc.Type, &maskedPan, &iban,
			&acc.CreatedAt, &acc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		if maskedPan.Valid {
			acc.MaskedPan = maskedPan.String
		}
		if iban.Valid {
			acc.IBAN = iban.String
		}

		accounts = append(accounts, &acc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

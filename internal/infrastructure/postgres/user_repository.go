package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"zvit/internal/domain/user"
	"zvit/internal/infrastructure/crypto"
)

// UserRepository implements user.Repository for PostgreSQL. The upstream bank
// token is encrypted before it reaches a row and decrypted on the way out, so
// callers only ever see plaintext.
type UserRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

func NewUserRepository(db *DB, encryptor *crypto.Encryptor) *UserRepository {
	return &UserRepository{
		db:        db,
		encryptor: encryptor,
	}
}

// decryptToken decrypts the stored bank token in place. Rows written before
// encryption was introduced hold plaintext tokens; those pass through
// unchanged and get encrypted on their next save.
func (r *UserRepository) decryptToken(u *user.User) error {
	if u.Token == "" || !crypto.IsEncrypted(u.Token) {
		return nil
	}

	decrypted, err := r.encryptor.Decrypt(u.Token)
	if err != nil {
		return fmt.Errorf("failed to decrypt bank token: %w", err)
	}
	u.Token = decrypted
	return nil
}

func (r *UserRepository) Create(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
	query := `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, password_hash, created_at, updated_at
	`

	var u user.User
	err := r.db.QueryRowContext(
		ctx, query,
		params.Email, params.Name, params.PasswordHash,
	).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.CreatedAt, &u.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	query := `
		SELECT id, email, name, password_hash, bank_token, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
		SELECT id, email, name, password_hash, bank_token, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	u, err := r.scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

// SaveToken encrypts and stores the user's upstream bank token.
func (r *UserRepository) SaveToken(ctx context.Context, userID int64, token string) error {
	encrypted, err := r.encryptor.Encrypt(token)
	if err != nil {
		return fmt.Errorf("failed to encrypt bank token: %w", err)
	}

	query := `UPDATE users SET bank_token = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, encrypted, userID)
	if err != nil {
		return fmt.Errorf("failed to save bank token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("user %d not found", userID)
	}

	return nil
}

// ListWithToken returns every user with a stored bank token, for the
// scheduled sync runs.
func (r *UserRepository) ListWithToken(ctx context.Context) ([]*user.User, error) {
	query := `
		SELECT id, email, name, password_hash, bank_token, created_at, updated_at
		FROM users
		WHERE bank_token IS NOT NULL AND bank_token != ''
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users with token: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		var u user.User
		var token sql.NullString

		err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.PasswordHash, &token,
			&u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		if token.Valid {
			u.Token = token.String
		}
		if err := r.decryptToken(&u); err != nil {
			return nil, err
		}

		users = append(users, &u)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// scanUser scans a single user row, mapping sql.ErrNoRows to (nil, nil).
func (r *UserRepository) scanUser(row *tracedRow) (*user.User, error) {
	var u user.User
	var token sql.NullString

	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash, &token,
		&u.CreatedAt, &u.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if token.Valid {
		u.Token = token.String
	}
	if err := r.decryptToken(&u); err != nil {
		return nil, err
	}

	return &u, nil
}

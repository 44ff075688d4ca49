package user

import "context"

// Repository defines the interface for user data access. The upstream token
// is stored encrypted at rest; implementations decrypt it on read and encrypt
// on save.
type Repository interface {
	Create(ctx context.Context, params CreateUserParams) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	SaveToken(ctx context.Context, userID int64, token string) error
	ListWithToken(ctx context.Context) ([]*User, error)
}

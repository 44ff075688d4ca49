package user

import (
	"time"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Token        string    `json:"-"` // upstream API token, decrypted by the repository
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasToken reports whether the user has a stored upstream token.
func (u *User) HasToken() bool {
	return u.Token != ""
}

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
}

package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"zvit/internal/domain/user"
	"zvit/internal/shared/auth"
)

func TestHandleRegister(t *testing.T) {
	jwt := auth.NewJWT("test-secret")

	t.Run("success", func(t *testing.T) {
		var createdParams user.CreateUserParams
		users := &MockUserRepo{
			CreateFunc: func(ctx context.Context, params user.CreateUserParams) (*user.User, error) {
				createdParams = params
				return &user.User{ID: 1, Email: params.Email, Name: params.Name}, nil
			},
		}
		handler := NewAuthHandler(users, jwt)

		body := `{"email":"ada@example.com","name":"Ada","password":"s3cret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()

		handler.HandleRegister(rr, req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
		}
		if createdParams.PasswordHash == "s3cret" || createdParams.PasswordHash == "" {
			t.Error("password was not hashed before storage")
		}

		var resp AuthResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Token == "" {
			t.Error("response has no session token")
		}
		if claims, err := jwt.Validate(resp.Token); err != nil || claims.UserID != 1 {
			t.Errorf("issued token does not validate for user 1: %v", err)
		}

		cookies := rr.Result().Cookies()
		if len(cookies) == 0 || cookies[0].Name != "access_token" {
			t.Error("access_token cookie was not set")
		}
	})

	t.Run("duplicate email", func(t *testing.T) {
		users := &MockUserRepo{
			GetByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
				return &user.User{ID: 1, Email: email}, nil
			},
		}
		handler := NewAuthHandler(users, jwt)

		body := `{"email":"ada@example.com","name":"Ada","password":"s3cret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()

		handler.HandleRegister(rr, req)

		if rr.Code != http.StatusConflict {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusConflict)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		handler := NewAuthHandler(&MockUserRepo{}, jwt)

		body := `{"email":"ada@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()

		handler.HandleRegister(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})
}

func TestHandleLogin(t *testing.T) {
	jwt := auth.NewJWT("test-secret")
	passwordHash, _ := auth.HashPassword("s3cret")

	usersWithAda := func() *MockUserRepo {
		return &MockUserRepo{
			GetByEmailFunc: func(ctx context.Context, email string) (*user.User, error) {
				if email == "ada@example.com" {
					return &user.User{ID: 1, Email: email, PasswordHash: passwordHash}, nil
				}
				return nil, nil
			},
		}
	}

	t.Run("success", func(t *testing.T) {
		handler := NewAuthHandler(usersWithAda(), jwt)

		body := `{"email":"ada@example.com","password":"s3cret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()

		handler.HandleLogin(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
		}

		var resp AuthResponse
		if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Token == "" {
			t.Error("response has no session token")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		handler := NewAuthHandler(usersWithAda(), jwt)

		body := `{"email":"ada@example.com","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()

		handler.HandleLogin(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		handler := NewAuthHandler(usersWithAda(), jwt)

		body := `{"email":"nobody@example.com","password":"s3cret"}`
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		rr := httptest.NewRecorder()

		handler.HandleLogin(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
		}
	})
}

func TestHandleLogout(t *testing.T) {
	handler := NewAuthHandler(&MockUserRepo{}, auth.NewJWT("test-secret"))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()

	handler.HandleLogout(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}

	cookies := rr.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != "access_token" || cookies[0].MaxAge != -1 {
		t.Error("access_token cookie was not cleared")
	}
}

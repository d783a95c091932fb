package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/postboard/backend/internal/db"
	"golang.org/x/crypto/bcrypt"
)

type memUserStore struct {
	users map[uuid.UUID]*db.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[uuid.UUID]*db.User)}
}

func (s *memUserStore) Create(ctx context.Context, user *db.User) error {
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return db.ErrEmailExists
		}
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *memUserStore) GetByEmail(ctx context.Context, email string) (*db.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, db.ErrUserNotFound
}

func (s *memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*db.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, db.ErrUserNotFound
	}
	return user, nil
}

type memTokenStore struct {
	tokens map[string]*db.AccessToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]*db.AccessToken)}
}

func (s *memTokenStore) Create(ctx context.Context, token *db.AccessToken) error {
	copied := *token
	s.tokens[token.TokenHash] = &copied
	return nil
}

func (s *memTokenStore) GetByHash(ctx context.Context, tokenHash string) (*db.AccessToken, error) {
	token, ok := s.tokens[tokenHash]
	if !ok {
		return nil, db.ErrTokenNotFound
	}
	return token, nil
}

func (s *memTokenStore) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	for hash, token := range s.tokens {
		if token.UserID == userID {
			delete(s.tokens, hash)
		}
	}
	return nil
}

func newTestService() (*Service, *memUserStore, *memTokenStore) {
	users := newMemUserStore()
	tokens := newMemTokenStore()
	return NewService(users, tokens), users, tokens
}

func TestPasswordHashing(t *testing.T) {
	password := "testpassword123"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		t.Error("password comparison failed for correct password")
	}

	if err := bcrypt.CompareHashAndPassword(hash, []byte("wrongpassword")); err == nil {
		t.Error("password comparison should fail for wrong password")
	}
}

func TestHashToken(t *testing.T) {
	token1 := "test-token-1"
	token2 := "test-token-2"

	hash1 := hashToken(token1)
	hash1Again := hashToken(token1)
	hash2 := hashToken(token2)

	if hash1 != hash1Again {
		t.Error("same token should produce same hash")
	}

	if hash1 == hash2 {
		t.Error("different tokens should produce different hashes")
	}

	if len(hash1) != 64 {
		t.Errorf("hash should be 64 characters (SHA-256 hex), got %d", len(hash1))
	}
}

func TestSignup_StoresHashedPassword(t *testing.T) {
	svc, users, _ := newTestService()

	user, err := svc.Signup(context.Background(), "A", "a@x.com", "p")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	if user.Email != "a@x.com" {
		t.Errorf("email should be stored exactly as given, got %s", user.Email)
	}
	if user.PasswordHash == "p" {
		t.Error("password must not be stored in plain text")
	}

	stored, err := users.GetByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("p")); err != nil {
		t.Error("stored hash does not verify against the original password")
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc, users, _ := newTestService()

	if _, err := svc.Signup(context.Background(), "A", "a@x.com", "p"); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}

	if _, err := svc.Signup(context.Background(), "B", "a@x.com", "q"); err != db.ErrEmailExists {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	if len(users.users) != 1 {
		t.Errorf("duplicate signup must not create a second row, have %d", len(users.users))
	}
}

func TestLogin_MintsDistinctTokens(t *testing.T) {
	svc, _, tokens := newTestService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "A", "a@x.com", "p"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	token1, _, err := svc.Login(ctx, "a@x.com", "p")
	if err != nil {
		t.Fatalf("first login failed: %v", err)
	}
	token2, _, err := svc.Login(ctx, "a@x.com", "p")
	if err != nil {
		t.Fatalf("second login failed: %v", err)
	}

	if token1 == token2 {
		t.Error("each login must mint a fresh token")
	}
	if len(tokens.tokens) != 2 {
		t.Errorf("expected 2 token rows, got %d", len(tokens.tokens))
	}
}

func TestLogin_WrongCredentials(t *testing.T) {
	svc, _, tokens := newTestService()
	ctx := context.Background()

	if _, err := svc.Signup(ctx, "A", "a@x.com", "p"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "a@x.com", "wrong"},
		{"unknown email", "b@x.com", "p"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Login(ctx, tt.email, tt.password)
			if err != ErrInvalidCredentials {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	if len(tokens.tokens) != 0 {
		t.Errorf("failed logins must not issue tokens, got %d", len(tokens.tokens))
	}
}

func TestLogout_RevokesAllTokens(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Signup(ctx, "A", "a@x.com", "p")
	if err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	// two devices
	token1, _, err := svc.Login(ctx, "a@x.com", "p")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	token2, _, err := svc.Login(ctx, "a@x.com", "p")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := svc.Authenticate(ctx, token1); err != nil {
		t.Fatalf("token should be valid before logout: %v", err)
	}

	if err := svc.Logout(ctx, user.ID); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	for _, token := range []string{token1, token2} {
		if _, err := svc.Authenticate(ctx, token); err != ErrInvalidToken {
			t.Errorf("token must be revoked after logout, got %v", err)
		}
	}
}

func TestAuthenticate_UnknownToken(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Authenticate(context.Background(), "not-a-token"); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateSignupRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        *SignupRequest
		wantErrors int
	}{
		{
			name:       "valid request",
			req:        &SignupRequest{Name: "A", Email: "a@x.com", Password: "p"},
			wantErrors: 0,
		},
		{
			name:       "missing name",
			req:        &SignupRequest{Email: "a@x.com", Password: "p"},
			wantErrors: 1,
		},
		{
			name:       "missing email",
			req:        &SignupRequest{Name: "A", Password: "p"},
			wantErrors: 1,
		},
		{
			name:       "malformed email",
			req:        &SignupRequest{Name: "A", Email: "notanemail", Password: "p"},
			wantErrors: 1,
		},
		{
			name:       "everything missing",
			req:        &SignupRequest{},
			wantErrors: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validateSignupRequest(tt.req)
			if len(fields) != tt.wantErrors {
				t.Errorf("validateSignupRequest() = %v, want %d errors", fields, tt.wantErrors)
			}
		})
	}
}

func TestValidateLoginRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        *LoginRequest
		wantErrors int
	}{
		{"valid", &LoginRequest{Email: "a@x.com", Password: "p"}, 0},
		{"missing email", &LoginRequest{Password: "p"}, 1},
		{"malformed email", &LoginRequest{Email: "nope", Password: "p"}, 1},
		{"missing password", &LoginRequest{Email: "a@x.com"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validateLoginRequest(tt.req)
			if len(fields) != tt.wantErrors {
				t.Errorf("validateLoginRequest() = %v, want %d errors", fields, tt.wantErrors)
			}
		})
	}
}

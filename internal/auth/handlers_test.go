package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/postboard/backend/internal/errors"
)

func TestSignupHandler_CreatesUser(t *testing.T) {
	svc, users, _ := newTestService()
	handlers := NewHandlers(svc)

	body := `{"name":"A","email":"a@x.com","password":"p"}`
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()

	apperrors.HandleFunc(handlers.Signup)(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp SignupResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Status {
		t.Error("expected status true")
	}
	if resp.User == nil || resp.User.ID == "" {
		t.Fatal("expected user with assigned id")
	}
	if resp.User.Email != "a@x.com" {
		t.Errorf("email must be returned exactly as given, got %s", resp.User.Email)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not carry any password material")
	}
	if len(users.users) != 1 {
		t.Errorf("expected one persisted user, got %d", len(users.users))
	}
}

func TestSignupHandler_DuplicateEmailConflict(t *testing.T) {
	svc, _, _ := newTestService()
	handlers := NewHandlers(svc)

	for i, want := range []int{http.StatusCreated, http.StatusConflict} {
		body := `{"name":"A","email":"a@x.com","password":"p"}`
		req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
		rec := httptest.NewRecorder()

		apperrors.HandleFunc(handlers.Signup)(rec, req)

		if rec.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, rec.Code)
		}
	}
}

func TestSignupHandler_ValidationError(t *testing.T) {
	svc, users, _ := newTestService()
	handlers := NewHandlers(svc)

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"name":"A"}`))
	rec := httptest.NewRecorder()

	apperrors.HandleFunc(handlers.Signup)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp apperrors.Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Status {
		t.Error("expected status false")
	}
	if len(resp.Errors) != 2 {
		t.Errorf("expected errors for email and password, got %v", resp.Errors)
	}
	if len(users.users) != 0 {
		t.Error("validation failure must not persist a user")
	}
}

func TestLoginHandler_WrongPassword(t *testing.T) {
	svc, _, tokens := newTestService()
	handlers := NewHandlers(svc)

	if _, err := svc.Signup(context.Background(), "A", "a@x.com", "p"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	body := `{"email":"a@x.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	apperrors.HandleFunc(handlers.Login)(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(tokens.tokens) != 0 {
		t.Error("failed login must not issue a token")
	}
}

func TestLoginHandler_Success(t *testing.T) {
	svc, _, _ := newTestService()
	handlers := NewHandlers(svc)

	if _, err := svc.Signup(context.Background(), "A", "a@x.com", "p"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}

	body := `{"email":"a@x.com","password":"p"}`
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	rec := httptest.NewRecorder()

	apperrors.HandleFunc(handlers.Login)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Token == "" {
		t.Error("expected a token")
	}
	if resp.TokenType != TokenType {
		t.Errorf("expected token_type %q, got %q", TokenType, resp.TokenType)
	}
}

func TestLogout_ThroughMiddleware(t *testing.T) {
	svc, _, _ := newTestService()
	handlers := NewHandlers(svc)

	ctx := context.Background()
	if _, err := svc.Signup(ctx, "A", "a@x.com", "p"); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	token, _, err := svc.Login(ctx, "a@x.com", "p")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	protected := Middleware(svc)(apperrors.HandleFunc(handlers.Logout))

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// The same token must now be rejected.
	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestMiddleware_RejectsMalformedHeaders(t *testing.T) {
	svc, _, _ := newTestService()

	protected := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without valid auth")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"no token", "Bearer"},
		{"unknown token", "Bearer deadbeef"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}
		})
	}
}

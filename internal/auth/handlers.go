package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/postboard/backend/internal/db"
	apperrors "github.com/postboard/backend/internal/errors"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo is the user projection returned to clients. The password hash
// is never serialized.
type UserInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SignupResponse struct {
	Status  bool      `json:"status"`
	Message string    `json:"message"`
	User    *UserInfo `json:"user"`
}

type LoginResponse struct {
	Status    bool   `json:"status"`
	Message   string `json:"message"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

type LogoutResponse struct {
	Status  bool      `json:"status"`
	Message string    `json:"message"`
	User    *UserInfo `json:"user"`
}

type Handlers struct {
	authService *Service
}

func NewHandlers(authService *Service) *Handlers {
	return &Handlers{authService: authService}
}

func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) error {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if fields := validateSignupRequest(&req); len(fields) > 0 {
		return apperrors.ValidationError(fields...)
	}

	user, err := h.authService.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, db.ErrEmailExists) {
			return apperrors.EmailExists()
		}
		return apperrors.InternalError("failed to create user").WithCause(err)
	}

	requestID := apperrors.GetRequestID(r.Context())
	apperrors.WriteJSON(w, requestID, http.StatusCreated, SignupResponse{
		Status:  true,
		Message: "User Created Successfully",
		User:    userInfo(user),
	})
	return nil
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequest("invalid request body")
	}

	if fields := validateLoginRequest(&req); len(fields) > 0 {
		return apperrors.ValidationError(fields...)
	}

	token, _, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return apperrors.InvalidCredentials()
		}
		return apperrors.InternalError("login failed").WithCause(err)
	}

	requestID := apperrors.GetRequestID(r.Context())
	apperrors.WriteJSON(w, requestID, http.StatusOK, LoginResponse{
		Status:    true,
		Message:   "User logged in Successfully",
		Token:     token,
		TokenType: TokenType,
	})
	return nil
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) error {
	user := GetUserFromContext(r.Context())
	if user == nil {
		return apperrors.Unauthorized("not authenticated")
	}

	if err := h.authService.Logout(r.Context(), user.ID); err != nil {
		return apperrors.InternalError("logout failed").WithCause(err)
	}

	requestID := apperrors.GetRequestID(r.Context())
	apperrors.WriteJSON(w, requestID, http.StatusOK, LogoutResponse{
		Status:  true,
		Message: "Logout Successfully",
		User:    userInfo(user),
	})
	return nil
}

func userInfo(user *db.User) *UserInfo {
	return &UserInfo{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func validateSignupRequest(req *SignupRequest) []string {
	var fields []string
	if req.Name == "" {
		fields = append(fields, "name is required")
	}
	if req.Email == "" {
		fields = append(fields, "email is required")
	} else if !emailRegex.MatchString(req.Email) {
		fields = append(fields, "invalid email format")
	}
	if req.Password == "" {
		fields = append(fields, "password is required")
	}
	return fields
}

func validateLoginRequest(req *LoginRequest) []string {
	var fields []string
	if req.Email == "" {
		fields = append(fields, "email is required")
	} else if !emailRegex.MatchString(req.Email) {
		fields = append(fields, "invalid email format")
	}
	if req.Password == "" {
		fields = append(fields, "password is required")
	}
	return fields
}

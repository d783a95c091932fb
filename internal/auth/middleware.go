package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/postboard/backend/internal/db"
	apperrors "github.com/postboard/backend/internal/errors"
)

type contextKey string

const userContextKey contextKey = "user"

// Middleware resolves the bearer token to an active session before the
// wrapped handler runs. The token is opaque: validity means a matching row
// in the token store, so logout takes effect immediately.
func Middleware(authService *Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := apperrors.GetRequestID(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				apperrors.WriteError(w, requestID, apperrors.Unauthorized("missing authorization header"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], TokenType) {
				apperrors.WriteError(w, requestID, apperrors.Unauthorized("invalid authorization header format"))
				return
			}

			user, err := authService.Authenticate(r.Context(), parts[1])
			if err != nil {
				if errors.Is(err, ErrInvalidToken) {
					apperrors.WriteError(w, requestID, apperrors.InvalidToken())
					return
				}
				apperrors.WriteError(w, requestID, apperrors.InternalError("authentication failed").WithCause(err))
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the authenticated user, or nil outside the
// middleware.
func GetUserFromContext(ctx context.Context) *db.User {
	user, ok := ctx.Value(userContextKey).(*db.User)
	if !ok {
		return nil
	}
	return user
}

package api

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/postboard/backend/internal/auth"
	apperrors "github.com/postboard/backend/internal/errors"
	"github.com/postboard/backend/internal/health"
	"github.com/postboard/backend/internal/logger"
	"github.com/postboard/backend/internal/posts"
)

type Router struct {
	mux          *http.ServeMux
	handler      http.Handler
	authHandlers *auth.Handlers
	authService  *auth.Service
	postHandlers *posts.Handlers
}

func NewRouter(authHandlers *auth.Handlers, authService *auth.Service, postHandlers *posts.Handlers, checker *health.Checker, corsOrigins []string) *Router {
	r := &Router{
		mux:          http.NewServeMux(),
		authHandlers: authHandlers,
		authService:  authService,
		postHandlers: postHandlers,
	}
	r.setupRoutes(checker)

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", apperrors.RequestIDHeader},
		ExposedHeaders: []string{apperrors.RequestIDHeader},
	})

	r.handler = apperrors.RequestIDMiddleware(
		logger.RecoveryMiddleware(
			logger.LoggingMiddleware(
				c.Handler(r.mux),
			),
		),
	)

	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) setupRoutes(checker *health.Checker) {
	// Health check
	r.mux.HandleFunc("GET /health", checker.Handler())

	// Auth routes (no auth required)
	r.mux.HandleFunc("POST /signup", apperrors.HandleFunc(r.authHandlers.Signup))
	r.mux.HandleFunc("POST /login", apperrors.HandleFunc(r.authHandlers.Login))

	// Auth routes (auth required)
	r.mux.HandleFunc("POST /logout", r.withAuth(r.authHandlers.Logout))

	// Post routes
	r.mux.HandleFunc("GET /posts", r.withAuth(r.postHandlers.List))
	r.mux.HandleFunc("POST /posts", r.withAuth(r.postHandlers.Create))
	r.mux.HandleFunc("GET /posts/{id}", apperrors.HandleFunc(r.postHandlers.Get))
	r.mux.HandleFunc("PUT /posts/{id}", r.withAuth(r.postHandlers.Update))
	r.mux.HandleFunc("DELETE /posts/{id}", r.withAuth(r.postHandlers.Delete))
}

func (r *Router) withAuth(next apperrors.Handler) http.HandlerFunc {
	middleware := auth.Middleware(r.authService)
	return func(w http.ResponseWriter, req *http.Request) {
		middleware(apperrors.HandleFunc(next)).ServeHTTP(w, req)
	}
}

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/postboard/backend/internal/db"
	"golang.org/x/crypto/bcrypt"
)

const (
	BcryptCost = 12
	// TokenType is the scheme clients present the token under.
	TokenType = "Bearer"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// UserStore is the repository surface the service needs for users.
type UserStore interface {
	Create(ctx context.Context, user *db.User) error
	GetByEmail(ctx context.Context, email string) (*db.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*db.User, error)
}

// TokenStore is the repository surface for opaque bearer tokens.
type TokenStore interface {
	Create(ctx context.Context, token *db.AccessToken) error
	GetByHash(ctx context.Context, tokenHash string) (*db.AccessToken, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	userRepo  UserStore
	tokenRepo TokenStore
}

func NewService(userRepo UserStore, tokenRepo TokenStore) *Service {
	return &Service{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
	}
}

// Signup creates a user with a bcrypt-hashed password. The caller maps
// db.ErrEmailExists to a conflict response.
func (s *Service) Signup(ctx context.Context, name, email, password string) (*db.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &db.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and mints a fresh bearer token. Unknown email
// and wrong password produce the same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, *db.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.mintToken(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// Logout deletes every token belonging to the user, across all devices.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.tokenRepo.DeleteAllForUser(ctx, userID)
}

// Authenticate resolves a presented plain token to its owning user.
func (s *Service) Authenticate(ctx context.Context, plainToken string) (*db.User, error) {
	token, err := s.tokenRepo.GetByHash(ctx, hashToken(plainToken))
	if err != nil {
		if errors.Is(err, db.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, db.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	return user, nil
}

// mintToken generates an opaque bearer token, stores its hash, and returns
// the plain value. Each login gets its own row so devices log out together
// only via Logout.
func (s *Service) mintToken(ctx context.Context, userID uuid.UUID) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	plain := hex.EncodeToString(tokenBytes)

	token := &db.AccessToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hashToken(plain),
		CreatedAt: time.Now(),
	}

	if err := s.tokenRepo.Create(ctx, token); err != nil {
		return "", err
	}

	return plain, nil
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

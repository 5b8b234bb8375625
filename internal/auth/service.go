// Package auth verifies credentials and issues and checks session tokens.
package auth

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/MediSynth-io/postsvc/internal/models"
	"github.com/MediSynth-io/postsvc/internal/store"
)

var (
	ErrValidation = errors.New("email and password are required")
	ErrConflict   = errors.New("email already registered")

	ErrNotRegistered     = &AuthenticationError{Reason: "User is not registered"}
	ErrIncorrectPassword = &AuthenticationError{Reason: "Incorrect password"}
)

// AuthenticationError is returned by Login when the credentials are rejected.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return e.Reason
}

// UserStore is the subset of the record store the service needs.
type UserStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Session is an issued token bound to a user.
type Session struct {
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	users  UserStore
	tokens *TokenManager
}

func NewService(users UserStore, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens}
}

// Tokens exposes the token manager, mostly for the cookie lifetime.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// Register creates a user with a bcrypt hashed password and returns its id.
func (s *Service) Register(ctx context.Context, email, password string) (int64, error) {
	if email == "" || password == "" {
		return 0, ErrValidation
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return 0, err
	}
	if exists {
		log.Printf("[AUTH] Signup rejected, %s already registered", email)
		return 0, ErrConflict
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return 0, err
	}

	user, err := s.users.CreateUser(ctx, email, hashed)
	if err != nil {
		// lost a race with a concurrent signup for the same email
		if errors.Is(err, store.ErrEmailTaken) {
			return 0, ErrConflict
		}
		return 0, err
	}

	log.Printf("[AUTH] Registered user %d", user.ID)
	return user.ID, nil
}

// Login verifies the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		log.Printf("[AUTH] Login failed for %s: not registered", email)
		return nil, ErrNotRegistered
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(user.Password, password) {
		log.Printf("[AUTH] Login failed for user %d: incorrect password", user.ID)
		return nil, ErrIncorrectPassword
	}

	return s.IssueSession(user.ID)
}

// IssueSession signs a fresh token for an already verified user.
func (s *Service) IssueSession(userID int64) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateToken(userID)
	if err != nil {
		return nil, err
	}
	return &Session{UserID: userID, Token: token, ExpiresAt: expiresAt}, nil
}

// CheckSession reports whether token is a valid, unexpired session token.
func (s *Service) CheckSession(token string) bool {
	_, ok := s.SessionUser(token)
	return ok
}

// SessionUser returns the user a valid token was issued to.
func (s *Service) SessionUser(token string) (int64, bool) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		if token != "" {
			log.Printf("[AUTH] Rejected session token: %v", err)
		}
		return 0, false
	}
	return claims.UserID, true
}

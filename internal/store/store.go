package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MediSynth-io/postsvc/internal/database"
	"github.com/MediSynth-io/postsvc/internal/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already taken")
)

// Store handles all database operations
type Store struct {
	db *database.DB
}

// New creates a new store instance
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a user with an already hashed password.
func (s *Store) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	user := &models.User{Email: email, Password: passwordHash}

	if s.db.Type == database.TypePostgres {
		err := s.db.QueryRowContext(ctx,
			"INSERT INTO users (email, password) VALUES ($1, $2) RETURNING id",
			email, passwordHash,
		).Scan(&user.ID)
		if err != nil {
			return nil, userWriteError(err)
		}
		return user, nil
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (email, password) VALUES (?, ?)",
		email, passwordHash,
	)
	if err != nil {
		return nil, userWriteError(err)
	}
	user.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return user, nil
}

// EmailExists reports whether a user already registered the email.
func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, s.db.Rebind("SELECT 1 FROM users WHERE email = ?"), email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		s.db.Rebind("SELECT id, email, password FROM users WHERE email = ?"),
		email,
	).Scan(&user.ID, &user.Email, &user.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func userWriteError(err error) error {
	if database.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// Stats holds row counts for the tables the service depends on.
type Stats struct {
	Users int64
	Posts int64
}

// Stats counts users and posts. It fails when either table is missing,
// which makes it a cheap check that the external schema is in place.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&stats.Users); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posttable").Scan(&stats.Posts); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	return stats, nil
}

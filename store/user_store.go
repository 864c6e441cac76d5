package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskdo-service/models"

	"github.com/jmoiron/sqlx"
)

const userColumns = "id, username, email, hashed_password, is_active, created_at"

// UserStore persists accounts in the users table
type UserStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db, now: time.Now}
}

// FindByUsername returns ErrNotFound when no account has that username
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT "+userColumns+" FROM users WHERE username = ?", username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}
	return &user, nil
}

// Create inserts a new active account. The id comes from the table's
// autoincrement key so concurrent registrations never collide.
func (s *UserStore) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if _, err := s.FindByUsername(ctx, user.Username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	created := *user
	created.IsActive = true
	created.CreatedAt = s.now().UTC()

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO users (username, email, hashed_password, is_active, created_at) VALUES (?, ?, ?, ?, ?)",
		created.Username, created.Email, created.Password, created.IsActive, created.CreatedAt)
	switch {
	case uniqueViolation(err, "users.username"):
		return nil, ErrDuplicateUsername
	case uniqueViolation(err, "users.email"):
		return nil, ErrDuplicateEmail
	case err != nil:
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	created.ID = int(id)
	return &created, nil
}

package repository

import (
	"context"
	"time"

	"github.com/automator-io/admin-service/internal/domain/entity"
)

// UserRepository defines user-related store operations.
type UserRepository interface {
	Insert(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, userID string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	List(ctx context.Context, filter map[string]any, limit, skip int) ([]*entity.User, error)
	Count(ctx context.Context, filter map[string]any) (int64, error)
	Replace(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, userID string) error

	// MarkLoggedIn records a successful login: security.last_login,
	// metadata.last_activity, is_logged_in and updated_at.
	MarkLoggedIn(ctx context.Context, userID string, at time.Time) error
	MarkLoggedOut(ctx context.Context, userID string, at time.Time) error
	SetEmailVerified(ctx context.Context, userID string, at time.Time) error
	UpdatePassword(ctx context.Context, userID, passwordHash string, at time.Time) error
}

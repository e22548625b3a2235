package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/infrastructure/docstore"
)

const usersCollection = "users"

type UserRepository struct {
	store *docstore.Store
}

func NewUserRepository(store *docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) error {
	return mapErr(r.store.Insert(ctx, usersCollection, u.UserID, u))
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (*entity.User, error) {
	u := &entity.User{}
	if err := r.store.FindByID(ctx, usersCollection, userID, u); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	u := &entity.User{}
	if err := r.store.FindOne(ctx, usersCollection, map[string]any{"email": email}, u); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	u := &entity.User{}
	if err := r.store.FindOne(ctx, usersCollection, map[string]any{"username": username}, u); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, filter map[string]any, limit, skip int) ([]*entity.User, error) {
	raws, err := r.store.FindMany(ctx, usersCollection, filter, limit, skip)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]*entity.User, 0, len(raws))
	for _, raw := range raws {
		u := &entity.User{}
		if err := json.Unmarshal(raw, u); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context, filter map[string]any) (int64, error) {
	n, err := r.store.Count(ctx, usersCollection, filter)
	return n, mapErr(err)
}

func (r *UserRepository) Replace(ctx context.Context, u *entity.User) error {
	return mapErr(r.store.Replace(ctx, usersCollection, u.UserID, u))
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	return mapErr(r.store.Delete(ctx, usersCollection, userID))
}

func (r *UserRepository) MarkLoggedIn(ctx context.Context, userID string, at time.Time) error {
	return mapErr(r.store.SetFields(ctx, usersCollection, userID, map[string]any{
		"security.last_login":    at,
		"metadata.last_activity": at,
		"is_logged_in":           true,
		"updated_at":             at,
	}))
}

func (r *UserRepository) MarkLoggedOut(ctx context.Context, userID string, at time.Time) error {
	return mapErr(r.store.SetFields(ctx, usersCollection, userID, map[string]any{
		"is_logged_in": false,
		"updated_at":   at,
	}))
}

func (r *UserRepository) SetEmailVerified(ctx context.Context, userID string, at time.Time) error {
	return mapErr(r.store.SetFields(ctx, usersCollection, userID, map[string]any{
		"security.is_email_verified": true,
		"updated_at":                 at,
	}))
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string, at time.Time) error {
	return mapErr(r.store.SetFields(ctx, usersCollection, userID, map[string]any{
		"security.password_hash": passwordHash,
		"updated_at":             at,
	}))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/automator-io/admin-service/config"
	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/domain/repository"
	"github.com/automator-io/admin-service/internal/infrastructure/docstore"
	pginfra "github.com/automator-io/admin-service/internal/infrastructure/postgres"
	"github.com/automator-io/admin-service/pkg/hash"
)

// Seeds a demo organization and an admin user so a fresh environment has
// something to log in with.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := docstore.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer pool.Close()

	store := docstore.New(pool)
	orgs := pginfra.NewOrganizationRepository(store)
	users := pginfra.NewUserRepository(store)

	now := time.Now().UTC()
	active := true
	org := &entity.Organization{
		OrgID:         "org-demo",
		Name:          "Demo Organization",
		Description:   "Seeded organization for local development",
		Status:        entity.StatusActive,
		IsActive:      &active,
		BusinessUnits: []string{},
		Members:       []string{},
		Projects:      []string{},
		Metadata:      map[string]any{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := orgs.Insert(ctx, org); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			log.Fatalf("failed to seed organization: %v", err)
		}
		fmt.Println("organization org-demo already present")
	} else {
		fmt.Printf("seeded organization: org_id=%s name=%q\n", org.OrgID, org.Name)
	}

	password := "password123"
	digest, err := hash.New(cfg.BcryptCost).Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	user := &entity.User{
		UserID:   "user-demo-admin",
		Email:    "admin@example.com",
		Username: "demoAdmin",
		OrgID:    org.OrgID,
		Roles:    []string{"admin"},
		Profile:  &entity.Profile{FirstName: "Demo", LastName: "Admin"},
		Security: &entity.Security{
			IsEmailVerified: true,
			PasswordHash:    digest,
		},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := users.Insert(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			log.Fatalf("failed to seed user: %v", err)
		}
		fmt.Println("user admin@example.com already present")
		return
	}
	fmt.Printf("seeded user: user_id=%s email=%s password=%s\n", user.UserID, user.Email, password)
}

package repository

import (
	"context"

	"github.com/automator-io/admin-service/internal/domain/entity"
)

// OrganizationRepository defines organization store operations.
type OrganizationRepository interface {
	Insert(ctx context.Context, o *entity.Organization) error
	FindByID(ctx context.Context, orgID string) (*entity.Organization, error)
	FindByName(ctx context.Context, name string) (*entity.Organization, error)
	List(ctx context.Context, filter map[string]any, limit, skip int) ([]*entity.Organization, error)
	Count(ctx context.Context, filter map[string]any) (int64, error)
	Replace(ctx context.Context, o *entity.Organization) error
	Delete(ctx context.Context, orgID string) error

	// AddBusinessUnit and RemoveBusinessUnit maintain the reverse
	// reference list on the parent organization.
	AddBusinessUnit(ctx context.Context, orgID, buID string) error
	RemoveBusinessUnit(ctx context.Context, orgID, buID string) error
	AddProject(ctx context.Context, orgID, projectID string) error
	RemoveProject(ctx context.Context, orgID, projectID string) error
}

// BusinessUnitRepository defines business unit store operations.
type BusinessUnitRepository interface {
	Insert(ctx context.Context, b *entity.BusinessUnit) error
	FindByID(ctx context.Context, buID string) (*entity.BusinessUnit, error)

	// FindInOrg and FindByName are scoped to a parent organization:
	// a unit is only visible through the org it belongs to.
	FindInOrg(ctx context.Context, buID, orgID string) (*entity.BusinessUnit, error)
	FindByName(ctx context.Context, name, orgID string) (*entity.BusinessUnit, error)
	List(ctx context.Context, filter map[string]any, limit, skip int) ([]*entity.BusinessUnit, error)
	Count(ctx context.Context, filter map[string]any) (int64, error)
	Replace(ctx context.Context, b *entity.BusinessUnit) error
	Delete(ctx context.Context, buID string) error

	// CountChildren counts sub-units whose parent_bu_id is buID.
	CountChildren(ctx context.Context, buID string) (int64, error)
}

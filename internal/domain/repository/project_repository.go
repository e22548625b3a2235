package repository

import (
	"context"

	"github.com/automator-io/admin-service/internal/domain/entity"
)

// ProjectRepository defines project store operations.
type ProjectRepository interface {
	Insert(ctx context.Context, p *entity.Project) error
	FindByID(ctx context.Context, projectID string) (*entity.Project, error)
	FindByName(ctx context.Context, name string) (*entity.Project, error)
	List(ctx context.Context, filter map[string]any, limit, skip int) ([]*entity.Project, error)
	Count(ctx context.Context, filter map[string]any) (int64, error)
	Replace(ctx context.Context, p *entity.Project) error
	Delete(ctx context.Context, projectID string) error

	AddModule(ctx context.Context, projectID, moduleID string) error
	RemoveModule(ctx context.Context, projectID, moduleID string) error
}

// ModuleRepository defines module store operations.
type ModuleRepository interface {
	Insert(ctx context.Context, m *entity.Module) error
	FindByID(ctx context.Context, moduleID string) (*entity.Module, error)

	// FindInProject and FindByName are scoped to a parent project: a
	// module is only visible through the project it belongs to.
	FindInProject(ctx context.Context, moduleID, projectID string) (*entity.Module, error)
	FindByName(ctx context.Context, name, projectID string) (*entity.Module, error)
	List(ctx context.Context, filter map[string]any, limit, skip int) ([]*entity.Module, error)
	Count(ctx context.Context, filter map[string]any) (int64, error)
	Replace(ctx context.Context, m *entity.Module) error
	Delete(ctx context.Context, moduleID string) error
}

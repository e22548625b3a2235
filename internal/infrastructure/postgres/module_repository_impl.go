package postgres

import (
	"context"
	"encoding/json"

	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/infrastructure/docstore"
)

const modulesCollection = "modules"

type ModuleRepository struct {
	store *docstore.Store
}

func NewModuleRepository(store *docstore.Store) *ModuleRepository {
	return &ModuleRepository{store: store}
}

func (r *ModuleRepository) Insert(ctx context.Context, m *entity.Module) error {
	return mapErr(r.store.Insert(ctx, modulesCollection, m.ModuleID, m))
}

func (r *ModuleRepository) FindByID(ctx context.Context, moduleID string) (*entity.Module, error) {
	m := &entity.Module{}
	if err := r.store.FindByID(ctx, modulesCollection, moduleID, m); err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func (r *ModuleRepository) FindInProject(ctx context.Context, moduleID, projectID string) (*entity.Module, error) {
	m := &entity.Module{}
	filter := map[string]any{"module_id": moduleID, "project_id": projectID}
	if err := r.store.FindOne(ctx, modulesCollection, filter, m); err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func (r *ModuleRepository) FindByName(ctx context.Context, name, projectID string) (*entity.Module, error) {
	m := &entity.Module{}
	filter := map[string]any{"name": name, "project_id": projectID}
	if err := r.store.FindOne(ctx, modulesCollection, filter, m); err != nil {
		return nil, mapErr(err)
	}
	return m, nil
}

func (r *ModuleRepository) List(ctx context.Context, filter map[string]any, limit, skip int) ([]*entity.Module, error) {
	raws, err := r.store.FindMany(ctx, modulesCollection, filter, limit, skip)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]*entity.Module, 0, len(raws))
	for _, raw := range raws {
		m := &entity.Module{}
		if err := json.Unmarshal(raw, m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *ModuleRepository) Count(ctx context.Context, filter map[string]any) (int64, error) {
	n, err := r.store.Count(ctx, modulesCollection, filter)
	return n, mapErr(err)
}

func (r *ModuleRepository) Replace(ctx context.Context, m *entity.Module) error {
	return mapErr(r.store.Replace(ctx, modulesCollection, m.ModuleID, m))
}

func (r *ModuleRepository) Delete(ctx context.Context, moduleID string) error {
	return mapErr(r.store.Delete(ctx, modulesCollection, moduleID))
}

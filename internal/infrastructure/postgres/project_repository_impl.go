package postgres

import (
	"context"
	"encoding/json"

	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/infrastructure/docstore"
)

const projectsCollection = "projects"

type ProjectRepository struct {
	store *docstore.Store
}

func NewProjectRepository(store *docstore.Store) *ProjectRepository {
	return &ProjectRepository{store: store}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *entity.Project) error {
	return mapErr(r.store.Insert(ctx, projectsCollection, p.ProjectID, p))
}

func (r *ProjectRepository) FindByID(ctx context.Context, projectID string) (*entity.Project, error) {
	p := &entity.Project{}
	if err := r.store.FindByID(ctx, projectsCollection, projectID, p); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *ProjectRepository) FindByName(ctx context.Context, name string) (*entity.Project, error) {
	p := &entity.Project{}
	if err := r.store.FindOne(ctx, projectsCollection, map[string]any{"name": name}, p); err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context, filter map[string]any, limit, skip int) ([]*entity.Project, error) {
	raws, err := r.store.FindMany(ctx, projectsCollection, filter, limit, skip)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]*entity.Project, 0, len(raws))
	for _, raw := range raws {
		p := &entity.Project{}
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *ProjectRepository) Count(ctx context.Context, filter map[string]any) (int64, error) {
	n, err := r.store.Count(ctx, projectsCollection, filter)
	return n, mapErr(err)
}

func (r *ProjectRepository) Replace(ctx context.Context, p *entity.Project) error {
	return mapErr(r.store.Replace(ctx, projectsCollection, p.ProjectID, p))
}

func (r *ProjectRepository) Delete(ctx context.Context, projectID string) error {
	return mapErr(r.store.Delete(ctx, projectsCollection, projectID))
}

func (r *ProjectRepository) AddModule(ctx context.Context, projectID, moduleID string) error {
	p, err := r.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	for _, existing := range p.Modules {
		if existing == moduleID {
			return nil
		}
	}
	p.Modules = append(p.Modules, moduleID)
	return r.Replace(ctx, p)
}

func (r *ProjectRepository) RemoveModule(ctx context.Context, projectID, moduleID string) error {
	p, err := r.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	kept := p.Modules[:0]
	for _, existing := range p.Modules {
		if existing != moduleID {
			kept = append(kept, existing)
		}
	}
	p.Modules = kept
	return r.Replace(ctx, p)
}

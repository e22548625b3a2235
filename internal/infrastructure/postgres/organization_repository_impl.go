package postgres

import (
	"context"
	"encoding/json"

	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/infrastructure/docstore"
)

const organizationsCollection = "organizations"

type OrganizationRepository struct {
	store *docstore.Store
}

func NewOrganizationRepository(store *docstore.Store) *OrganizationRepository {
	return &OrganizationRepository{store: store}
}

func (r *OrganizationRepository) Insert(ctx context.Context, o *entity.Organization) error {
	return mapErr(r.store.Insert(ctx, organizationsCollection, o.OrgID, o))
}

func (r *OrganizationRepository) FindByID(ctx context.Context, orgID string) (*entity.Organization, error) {
	o := &entity.Organization{}
	if err := r.store.FindByID(ctx, organizationsCollection, orgID, o); err != nil {
		return nil, mapErr(err)
	}
	return o, nil
}

func (r *OrganizationRepository) FindByName(ctx context.Context, name string) (*entity.Organization, error) {
	o := &entity.Organization{}
	if err := r.store.FindOne(ctx, organizationsCollection, map[string]any{"name": name}, o); err != nil {
		return nil, mapErr(err)
	}
	return o, nil
}

func (r *OrganizationRepository) List(ctx context.Context, filter map[string]any, limit, skip int) ([]*entity.Organization, error) {
	raws, err := r.store.FindMany(ctx, organizationsCollection, filter, limit, skip)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]*entity.Organization, 0, len(raws))
	for _, raw := range raws {
		o := &entity.Organization{}
		if err := json.Unmarshal(raw, o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (r *OrganizationRepository) Count(ctx context.Context, filter map[string]any) (int64, error) {
	n, err := r.store.Count(ctx, organizationsCollection, filter)
	return n, mapErr(err)
}

func (r *OrganizationRepository) Replace(ctx context.Context, o *entity.Organization) error {
	return mapErr(r.store.Replace(ctx, organizationsCollection, o.OrgID, o))
}

func (r *OrganizationRepository) Delete(ctx context.Context, orgID string) error {
	return mapErr(r.store.Delete(ctx, organizationsCollection, orgID))
}

func (r *OrganizationRepository) AddBusinessUnit(ctx context.Context, orgID, buID string) error {
	return r.appendRef(ctx, orgID, buID, func(o *entity.Organization) *[]string { return &o.BusinessUnits })
}

func (r *OrganizationRepository) RemoveBusinessUnit(ctx context.Context, orgID, buID string) error {
	return r.removeRef(ctx, orgID, buID, func(o *entity.Organization) *[]string { return &o.BusinessUnits })
}

func (r *OrganizationRepository) AddProject(ctx context.Context, orgID, projectID string) error {
	return r.appendRef(ctx, orgID, projectID, func(o *entity.Organization) *[]string { return &o.Projects })
}

func (r *OrganizationRepository) RemoveProject(ctx context.Context, orgID, projectID string) error {
	return r.removeRef(ctx, orgID, projectID, func(o *entity.Organization) *[]string { return &o.Projects })
}

func (r *OrganizationRepository) appendRef(ctx context.Context, orgID, ref string, list func(*entity.Organization) *[]string) error {
	o, err := r.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	refs := list(o)
	for _, existing := range *refs {
		if existing == ref {
			return nil
		}
	}
	*refs = append(*refs, ref)
	return r.Replace(ctx, o)
}

func (r *OrganizationRepository) removeRef(ctx context.Context, orgID, ref string, list func(*entity.Organization) *[]string) error {
	o, err := r.FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	refs := list(o)
	kept := (*refs)[:0]
	for _, existing := range *refs {
		if existing != ref {
			kept = append(kept, existing)
		}
	}
	*refs = kept
	return r.Replace(ctx, o)
}

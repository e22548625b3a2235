package postgres

import (
	"context"
	"encoding/json"

	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/infrastructure/docstore"
)

const businessUnitsCollection = "business_units"

type BusinessUnitRepository struct {
	store *docstore.Store
}

func NewBusinessUnitRepository(store *docstore.Store) *BusinessUnitRepository {
	return &BusinessUnitRepository{store: store}
}

func (r *BusinessUnitRepository) Insert(ctx context.Context, b *entity.BusinessUnit) error {
	return mapErr(r.store.Insert(ctx, businessUnitsCollection, b.BUID, b))
}

func (r *BusinessUnitRepository) FindByID(ctx context.Context, buID string) (*entity.BusinessUnit, error) {
	b := &entity.BusinessUnit{}
	if err := r.store.FindByID(ctx, businessUnitsCollection, buID, b); err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (r *BusinessUnitRepository) FindInOrg(ctx context.Context, buID, orgID string) (*entity.BusinessUnit, error) {
	b := &entity.BusinessUnit{}
	filter := map[string]any{"bu_id": buID, "parent_org": orgID}
	if err := r.store.FindOne(ctx, businessUnitsCollection, filter, b); err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (r *BusinessUnitRepository) FindByName(ctx context.Context, name, orgID string) (*entity.BusinessUnit, error) {
	b := &entity.BusinessUnit{}
	filter := map[string]any{"name": name, "parent_org": orgID}
	if err := r.store.FindOne(ctx, businessUnitsCollection, filter, b); err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func (r *BusinessUnitRepository) List(ctx context.Context, filter map[string]any, limit, skip int) ([]*entity.BusinessUnit, error) {
	raws, err := r.store.FindMany(ctx, businessUnitsCollection, filter, limit, skip)
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]*entity.BusinessUnit, 0, len(raws))
	for _, raw := range raws {
		b := &entity.BusinessUnit{}
		if err := json.Unmarshal(raw, b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *BusinessUnitRepository) Count(ctx context.Context, filter map[string]any) (int64, error) {
	n, err := r.store.Count(ctx, businessUnitsCollection, filter)
	return n, mapErr(err)
}

func (r *BusinessUnitRepository) Replace(ctx context.Context, b *entity.BusinessUnit) error {
	return mapErr(r.store.Replace(ctx, businessUnitsCollection, b.BUID, b))
}

func (r *BusinessUnitRepository) Delete(ctx context.Context, buID string) error {
	return mapErr(r.store.Delete(ctx, businessUnitsCollection, buID))
}

func (r *BusinessUnitRepository) CountChildren(ctx context.Context, buID string) (int64, error) {
	n, err := r.store.Count(ctx, businessUnitsCollection, map[string]any{"parent_bu_id": buID})
	return n, mapErr(err)
}

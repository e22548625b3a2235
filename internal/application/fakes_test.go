package application

import (
	"context"
	"sync"
	"time"

	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/domain/repository"
)

// In-memory repositories backing the service tests. Write counters let
// tests assert which operations touched the store.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*entity.User
	writes int
	err    error
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*entity.User{}}
	for _, u := range users {
		cp := *u
		r.users[u.UserID] = &cp
	}
	return r
}

func (r *fakeUserRepo) get(userID string) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[userID]
}

func (r *fakeUserRepo) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

func (r *fakeUserRepo) Insert(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[u.UserID]; ok {
		return repository.ErrDuplicate
	}
	cp := *u
	r.users[u.UserID] = &cp
	r.writes++
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, userID string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) List(_ context.Context, _ map[string]any, limit, skip int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) Count(_ context.Context, _ map[string]any) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *fakeUserRepo) Replace(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.UserID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	r.users[u.UserID] = &cp
	r.writes++
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[userID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, userID)
	r.writes++
	return nil
}

func (r *fakeUserRepo) MarkLoggedIn(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Security == nil {
		u.Security = &entity.Security{}
	}
	u.Security.LastLogin = &at
	u.IsLoggedIn = true
	u.UpdatedAt = at
	r.writes++
	return nil
}

func (r *fakeUserRepo) MarkLoggedOut(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.IsLoggedIn = false
	u.UpdatedAt = at
	r.writes++
	return nil
}

func (r *fakeUserRepo) SetEmailVerified(_ context.Context, userID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Security == nil {
		u.Security = &entity.Security{}
	}
	u.Security.IsEmailVerified = true
	u.UpdatedAt = at
	r.writes++
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, userID, passwordHash string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.Security == nil {
		u.Security = &entity.Security{}
	}
	u.Security.PasswordHash = passwordHash
	u.UpdatedAt = at
	r.writes++
	return nil
}

type fakeOrgRepo struct {
	mu   sync.Mutex
	orgs map[string]*entity.Organization
}

func newFakeOrgRepo(orgs ...*entity.Organization) *fakeOrgRepo {
	r := &fakeOrgRepo{orgs: map[string]*entity.Organization{}}
	for _, o := range orgs {
		cp := *o
		r.orgs[o.OrgID] = &cp
	}
	return r
}

func (r *fakeOrgRepo) get(orgID string) *entity.Organization {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.orgs[orgID]
}

func (r *fakeOrgRepo) Insert(_ context.Context, o *entity.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[o.OrgID]; ok {
		return repository.ErrDuplicate
	}
	cp := *o
	r.orgs[o.OrgID] = &cp
	return nil
}

func (r *fakeOrgRepo) FindByID(_ context.Context, orgID string) (*entity.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orgs[orgID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrgRepo) FindByName(_ context.Context, name string) (*entity.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orgs {
		if o.Name == name {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeOrgRepo) List(_ context.Context, _ map[string]any, limit, skip int) ([]*entity.Organization, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Organization, 0, len(r.orgs))
	for _, o := range r.orgs {
		cp := *o
		out = append(out, &cp)
	}
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOrgRepo) Count(_ context.Context, _ map[string]any) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orgs)), nil
}

func (r *fakeOrgRepo) Replace(_ context.Context, o *entity.Organization) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[o.OrgID]; !ok {
		return repository.ErrNotFound
	}
	cp := *o
	r.orgs[o.OrgID] = &cp
	return nil
}

func (r *fakeOrgRepo) Delete(_ context.Context, orgID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orgs[orgID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.orgs, orgID)
	return nil
}

func (r *fakeOrgRepo) AddBusinessUnit(_ context.Context, orgID, buID string) error {
	return r.appendRef(orgID, buID, func(o *entity.Organization) *[]string { return &o.BusinessUnits })
}

func (r *fakeOrgRepo) RemoveBusinessUnit(_ context.Context, orgID, buID string) error {
	return r.removeRef(orgID, buID, func(o *entity.Organization) *[]string { return &o.BusinessUnits })
}

func (r *fakeOrgRepo) AddProject(_ context.Context, orgID, projectID string) error {
	return r.appendRef(orgID, projectID, func(o *entity.Organization) *[]string { return &o.Projects })
}

func (r *fakeOrgRepo) RemoveProject(_ context.Context, orgID, projectID string) error {
	return r.removeRef(orgID, projectID, func(o *entity.Organization) *[]string { return &o.Projects })
}

func (r *fakeOrgRepo) appendRef(orgID, id string, list func(*entity.Organization) *[]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orgs[orgID]
	if !ok {
		return repository.ErrNotFound
	}
	refs := list(o)
	for _, existing := range *refs {
		if existing == id {
			return nil
		}
	}
	*refs = append(*refs, id)
	return nil
}

func (r *fakeOrgRepo) removeRef(orgID, id string, list func(*entity.Organization) *[]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orgs[orgID]
	if !ok {
		return repository.ErrNotFound
	}
	refs := list(o)
	kept := (*refs)[:0]
	for _, existing := range *refs {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	*refs = kept
	return nil
}

type fakeBURepo struct {
	mu    sync.Mutex
	units map[string]*entity.BusinessUnit
}

func newFakeBURepo(units ...*entity.BusinessUnit) *fakeBURepo {
	r := &fakeBURepo{units: map[string]*entity.BusinessUnit{}}
	for _, b := range units {
		cp := *b
		r.units[b.BUID] = &cp
	}
	return r
}

func (r *fakeBURepo) Insert(_ context.Context, b *entity.BusinessUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[b.BUID]; ok {
		return repository.ErrDuplicate
	}
	cp := *b
	r.units[b.BUID] = &cp
	return nil
}

func (r *fakeBURepo) FindByID(_ context.Context, buID string) (*entity.BusinessUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.units[buID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBURepo) FindInOrg(_ context.Context, buID, orgID string) (*entity.BusinessUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.units[buID]
	if !ok || b.ParentOrg != orgID {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBURepo) FindByName(_ context.Context, name, orgID string) (*entity.BusinessUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.units {
		if b.Name == name && b.ParentOrg == orgID {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeBURepo) List(_ context.Context, filter map[string]any, limit, skip int) ([]*entity.BusinessUnit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	parentOrg, _ := filter["parent_org"].(string)
	out := make([]*entity.BusinessUnit, 0, len(r.units))
	for _, b := range r.units {
		if parentOrg != "" && b.ParentOrg != parentOrg {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeBURepo) Count(_ context.Context, filter map[string]any) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	parentOrg, _ := filter["parent_org"].(string)
	parentBU, _ := filter["parent_bu_id"].(string)
	var n int64
	for _, b := range r.units {
		if parentOrg != "" && b.ParentOrg != parentOrg {
			continue
		}
		if parentBU != "" && b.ParentBUID != parentBU {
			continue
		}
		n++
	}
	return n, nil
}

func (r *fakeBURepo) Replace(_ context.Context, b *entity.BusinessUnit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[b.BUID]; !ok {
		return repository.ErrNotFound
	}
	cp := *b
	r.units[b.BUID] = &cp
	return nil
}

func (r *fakeBURepo) Delete(_ context.Context, buID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.units[buID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.units, buID)
	return nil
}

func (r *fakeBURepo) CountChildren(_ context.Context, buID string) (int64, error) {
	return r.Count(context.Background(), map[string]any{"parent_bu_id": buID})
}

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[string]*entity.Project
}

func newFakeProjectRepo(projects ...*entity.Project) *fakeProjectRepo {
	r := &fakeProjectRepo{projects: map[string]*entity.Project{}}
	for _, p := range projects {
		cp := *p
		r.projects[p.ProjectID] = &cp
	}
	return r
}

func (r *fakeProjectRepo) Insert(_ context.Context, p *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ProjectID]; ok {
		return repository.ErrDuplicate
	}
	cp := *p
	r.projects[p.ProjectID] = &cp
	return nil
}

func (r *fakeProjectRepo) FindByID(_ context.Context, projectID string) (*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) FindByName(_ context.Context, name string) (*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.projects {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProjectRepo) List(_ context.Context, filter map[string]any, limit, skip int) ([]*entity.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	orgID, _ := filter["org_id"].(string)
	out := make([]*entity.Project, 0, len(r.projects))
	for _, p := range r.projects {
		if orgID != "" && p.OrgID != orgID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProjectRepo) Count(_ context.Context, filter map[string]any) (int64, error) {
	items, err := r.List(context.Background(), filter, 0, 0)
	return int64(len(items)), err
}

func (r *fakeProjectRepo) Replace(_ context.Context, p *entity.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[p.ProjectID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	r.projects[p.ProjectID] = &cp
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.projects[projectID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.projects, projectID)
	return nil
}

func (r *fakeProjectRepo) AddModule(_ context.Context, projectID, moduleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, existing := range p.Modules {
		if existing == moduleID {
			return nil
		}
	}
	p.Modules = append(p.Modules, moduleID)
	return nil
}

func (r *fakeProjectRepo) RemoveModule(_ context.Context, projectID, moduleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := p.Modules[:0]
	for _, existing := range p.Modules {
		if existing != moduleID {
			kept = append(kept, existing)
		}
	}
	p.Modules = kept
	return nil
}

type fakeModuleRepo struct {
	mu      sync.Mutex
	modules map[string]*entity.Module
}

func newFakeModuleRepo(modules ...*entity.Module) *fakeModuleRepo {
	r := &fakeModuleRepo{modules: map[string]*entity.Module{}}
	for _, m := range modules {
		cp := *m
		r.modules[m.ModuleID] = &cp
	}
	return r
}

func (r *fakeModuleRepo) Insert(_ context.Context, m *entity.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[m.ModuleID]; ok {
		return repository.ErrDuplicate
	}
	cp := *m
	r.modules[m.ModuleID] = &cp
	return nil
}

func (r *fakeModuleRepo) FindByID(_ context.Context, moduleID string) (*entity.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[moduleID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeModuleRepo) FindInProject(_ context.Context, moduleID, projectID string) (*entity.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.modules[moduleID]
	if !ok || m.ProjectID != projectID {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeModuleRepo) FindByName(_ context.Context, name, projectID string) (*entity.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.modules {
		if m.Name == name && m.ProjectID == projectID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeModuleRepo) List(_ context.Context, filter map[string]any, limit, skip int) ([]*entity.Module, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	projectID, _ := filter["project_id"].(string)
	out := make([]*entity.Module, 0, len(r.modules))
	for _, m := range r.modules {
		if projectID != "" && m.ProjectID != projectID {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	if skip >= len(out) {
		return nil, nil
	}
	out = out[skip:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeModuleRepo) Count(_ context.Context, filter map[string]any) (int64, error) {
	items, err := r.List(context.Background(), filter, 0, 0)
	return int64(len(items)), err
}

func (r *fakeModuleRepo) Replace(_ context.Context, m *entity.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[m.ModuleID]; !ok {
		return repository.ErrNotFound
	}
	cp := *m
	r.modules[m.ModuleID] = &cp
	return nil
}

func (r *fakeModuleRepo) Delete(_ context.Context, moduleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[moduleID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.modules, moduleID)
	return nil
}

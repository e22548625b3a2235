package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/domain/repository"
	"github.com/automator-io/admin-service/pkg/resterr"
)

// ProjectService owns project and module administration. Projects hang
// off the caller's organization; modules hang off a project. The same
// caller-organization gate as the rest of the admin surface applies.
type ProjectService struct {
	projects repository.ProjectRepository
	modules  repository.ModuleRepository
	orgs     repository.OrganizationRepository
	logger   *logrus.Logger
}

func NewProjectService(projects repository.ProjectRepository, modules repository.ModuleRepository, orgs repository.OrganizationRepository, logger *logrus.Logger) *ProjectService {
	return &ProjectService{projects: projects, modules: modules, orgs: orgs, logger: logger}
}

func (s *ProjectService) CreateProject(ctx context.Context, callerOrgID string, in *entity.Project) (*entity.Project, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, resterr.BadRequest("MISSING_PROJECT_NAME", "Project name is required").WithField("name")
	}

	projectID := strings.TrimSpace(in.ProjectID)
	if projectID == "" {
		projectID = uuid.New().String()
	}

	if _, err := s.projects.FindByID(ctx, projectID); err == nil {
		return nil, resterr.BadRequest("PROJECT_ID_ALREADY_EXISTS", "Project ID already exists").WithField("project_id")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("create project: id lookup failed")
		return nil, errOrgDB
	}
	if _, err := s.projects.FindByName(ctx, name); err == nil {
		return nil, resterr.BadRequest("PROJECT_NAME_ALREADY_EXISTS", "Project name already exists").WithField("name")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("create project: name lookup failed")
		return nil, errOrgDB
	}

	now := time.Now().UTC()
	p := *in
	p.ProjectID = projectID
	p.Name = name
	p.OrgID = callerOrgID
	if p.Status == "" {
		p.Status = entity.StatusActive
	}
	if p.Modules == nil {
		p.Modules = []string{}
	}
	if p.Members == nil {
		p.Members = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Metadata == nil {
		p.Metadata = map[string]any{}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := s.projects.Insert(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, resterr.BadRequest("PROJECT_ID_ALREADY_EXISTS", "Project ID already exists").WithField("project_id")
		}
		s.logger.WithError(err).Error("create project: insert failed")
		return nil, resterr.Internal("DATABASE_INSERT_ERROR", "Database insert operation failed").WithField("database")
	}

	if err := s.orgs.AddProject(ctx, callerOrgID, projectID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"org_id": callerOrgID, "project_id": projectID}).Warn("create project: reverse reference update failed")
	}

	s.logger.WithFields(logrus.Fields{"project_id": projectID, "org_id": callerOrgID}).Info("project created")
	return &p, nil
}

func (s *ProjectService) GetProject(ctx context.Context, callerOrgID, projectID string) (*entity.Project, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, resterr.BadRequest("MISSING_PROJECT_ID", "Project ID is required").WithField("project_id")
	}

	p, err := s.projects.FindByID(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("PROJECT_NOT_FOUND", "Project not found").WithField("project_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("get project: lookup failed")
		return nil, errOrgDB
	}
	return p, nil
}

// ProjectList is the paginated list payload.
type ProjectList struct {
	Projects   []*entity.Project `json:"projects"`
	Pagination Page              `json:"pagination"`
}

func (s *ProjectService) ListProjects(ctx context.Context, callerOrgID string, limit, skip int) (*ProjectList, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	if perr := validatePageParams(limit, skip); perr != nil {
		return nil, perr
	}

	filter := map[string]any{"org_id": callerOrgID}
	total, err := s.projects.Count(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("list projects: count failed")
		return nil, errOrgDB
	}
	projects, err := s.projects.List(ctx, filter, limit, skip)
	if err != nil {
		s.logger.WithError(err).Error("list projects: query failed")
		return nil, errOrgDB
	}

	return &ProjectList{
		Projects:   projects,
		Pagination: newPage(total, len(projects), limit, skip),
	}, nil
}

// ProjectPatch carries the updatable project fields. The identity fields
// (project_id, org_id) and created_at are protected and ignored.
type ProjectPatch struct {
	Name            *string        `json:"name"`
	Description     *string        `json:"description"`
	Status          *string        `json:"status"`
	Owner           *string        `json:"owner"`
	ParentProjectID *string        `json:"parent_project_id"`
	StartDate       *string        `json:"start_date"`
	DueDate         *string        `json:"due_date"`
	CompletedAt     *time.Time     `json:"completed_at"`
	Members         []string       `json:"members"`
	Tags            []string       `json:"tags"`
	Budget          *float64       `json:"budget"`
	Priority        *string        `json:"priority"`
	Metadata        map[string]any `json:"metadata"`
}

var projectPatchFields = map[string]struct{}{
	"project_id": {}, "name": {}, "description": {}, "status": {},
	"owner": {}, "parent_project_id": {}, "org_id": {}, "start_date": {},
	"due_date": {}, "completed_at": {}, "modules": {}, "members": {},
	"tags": {}, "budget": {}, "priority": {}, "created_at": {},
	"updated_at": {}, "metadata": {},
}

func (s *ProjectService) UpdateProject(ctx context.Context, callerOrgID, projectID string, body []byte) (*entity.Project, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, resterr.BadRequest("MISSING_PROJECT_ID", "Project ID is required").WithField("project_id")
	}

	p, err := s.projects.FindByID(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("PROJECT_NOT_FOUND", "Project not found").WithField("project_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("update project: lookup failed")
		return nil, errOrgDB
	}

	var patch ProjectPatch
	if derr := decodePatch(body, projectPatchFields, &patch); derr != nil {
		return nil, derr
	}

	changed := 0
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		other, err := s.projects.FindByName(ctx, name)
		if err == nil && other.ProjectID != projectID {
			return nil, resterr.BadRequest("PROJECT_NAME_ALREADY_EXISTS", "Project name is already taken by another project").WithField("name")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.WithError(err).Error("update project: name lookup failed")
			return nil, errOrgDB
		}
		p.Name = name
		changed++
	}
	if patch.Description != nil {
		p.Description = *patch.Description
		changed++
	}
	if patch.Status != nil {
		p.Status = *patch.Status
		changed++
	}
	if patch.Owner != nil {
		p.Owner = *patch.Owner
		changed++
	}
	if patch.ParentProjectID != nil {
		p.ParentProjectID = *patch.ParentProjectID
		changed++
	}
	if patch.StartDate != nil {
		p.StartDate = *patch.StartDate
		changed++
	}
	if patch.DueDate != nil {
		p.DueDate = *patch.DueDate
		changed++
	}
	if patch.CompletedAt != nil {
		p.CompletedAt = patch.CompletedAt
		changed++
	}
	if patch.Members != nil {
		p.Members = patch.Members
		changed++
	}
	if patch.Tags != nil {
		p.Tags = patch.Tags
		changed++
	}
	if patch.Budget != nil {
		p.Budget = *patch.Budget
		changed++
	}
	if patch.Priority != nil {
		p.Priority = *patch.Priority
		changed++
	}
	if patch.Metadata != nil {
		p.Metadata = patch.Metadata
		changed++
	}

	if changed == 0 {
		return nil, resterr.BadRequest("NO_FIELDS_TO_UPDATE", "No valid fields provided for update").WithField("project_data")
	}

	p.UpdatedAt = time.Now().UTC()
	if err := s.projects.Replace(ctx, p); err != nil {
		s.logger.WithError(err).Error("update project: write failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database update error").WithField("system")
	}

	s.logger.WithFields(logrus.Fields{"project_id": projectID, "fields": changed}).Info("project updated")
	return p, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, callerOrgID, projectID string) (map[string]any, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, resterr.BadRequest("MISSING_PROJECT_ID", "Project ID is required").WithField("project_id")
	}

	p, err := s.projects.FindByID(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("PROJECT_NOT_FOUND", "Project not found").WithField("project_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("delete project: lookup failed")
		return nil, errOrgDB
	}

	dependents, err := s.modules.Count(ctx, map[string]any{"project_id": projectID})
	if err != nil {
		s.logger.WithError(err).Error("delete project: dependency check failed")
		return nil, errOrgDB
	}
	if dependents > 0 {
		return nil, resterr.BadRequest("PROJECT_HAS_DEPENDENCIES", "Cannot delete project with existing modules").WithField("project_id")
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		s.logger.WithError(err).Error("delete project: delete failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Failed to delete project").WithField("system")
	}

	if p.OrgID != "" {
		if err := s.orgs.RemoveProject(ctx, p.OrgID, projectID); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{"org_id": p.OrgID, "project_id": projectID}).Warn("delete project: reverse reference update failed")
		}
	}

	s.logger.WithField("project_id", projectID).Info("project deleted")
	return map[string]any{"project_id": projectID}, nil
}

func (s *ProjectService) CreateModule(ctx context.Context, callerOrgID, projectID string, in *entity.Module) (*entity.Module, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, resterr.BadRequest("MISSING_PROJECT_ID", "Project ID is required").WithField("project_id")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, resterr.BadRequest("MISSING_MODULE_NAME", "Module name is required").WithField("name")
	}

	moduleID := strings.TrimSpace(in.ModuleID)
	if moduleID == "" {
		moduleID = uuid.New().String()
	}

	if _, err := s.projects.FindByID(ctx, projectID); errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("PARENT_PROJECT_NOT_FOUND", "Parent project not found").WithField("project_id")
	} else if err != nil {
		s.logger.WithError(err).Error("create module: parent lookup failed")
		return nil, errOrgDB
	}

	if _, err := s.modules.FindByID(ctx, moduleID); err == nil {
		return nil, resterr.BadRequest("MODULE_ID_ALREADY_EXISTS", "Module ID already exists").WithField("module_id")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("create module: id lookup failed")
		return nil, errOrgDB
	}
	if _, err := s.modules.FindByName(ctx, name, projectID); err == nil {
		return nil, resterr.BadRequest("MODULE_NAME_ALREADY_EXISTS", "Module name already exists in this project").WithField("name")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("create module: name lookup failed")
		return nil, errOrgDB
	}

	now := time.Now().UTC()
	m := *in
	m.ModuleID = moduleID
	m.Name = name
	m.ProjectID = projectID
	if m.Status == "" {
		m.Status = entity.StatusActive
	}
	if m.Members == nil {
		m.Members = []string{}
	}
	if m.Tags == nil {
		m.Tags = []string{}
	}
	if m.Metadata == nil {
		m.Metadata = map[string]any{}
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	if err := s.modules.Insert(ctx, &m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, resterr.BadRequest("MODULE_ID_ALREADY_EXISTS", "Module ID already exists").WithField("module_id")
		}
		s.logger.WithError(err).Error("create module: insert failed")
		return nil, resterr.Internal("DATABASE_INSERT_ERROR", "Database insert operation failed").WithField("database")
	}

	if err := s.projects.AddModule(ctx, projectID, moduleID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"project_id": projectID, "module_id": moduleID}).Warn("create module: reverse reference update failed")
	}

	s.logger.WithFields(logrus.Fields{"module_id": moduleID, "project_id": projectID}).Info("module created")
	return &m, nil
}

func (s *ProjectService) GetModule(ctx context.Context, callerOrgID, projectID, moduleID string) (*entity.Module, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return nil, resterr.BadRequest("MISSING_MODULE_ID", "Module ID is required").WithField("module_id")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, resterr.BadRequest("MISSING_PROJECT_ID", "Project ID is required").WithField("project_id")
	}

	m, err := s.modules.FindInProject(ctx, moduleID, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("MODULE_NOT_FOUND", "Module not found").WithField("module_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("get module: lookup failed")
		return nil, errOrgDB
	}
	return m, nil
}

// ModulePatch carries the updatable module fields. The identity fields
// (module_id, project_id) and created_at are protected and ignored.
type ModulePatch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Owner       *string        `json:"owner"`
	StartDate   *string        `json:"start_date"`
	DueDate     *string        `json:"due_date"`
	CompletedAt *time.Time     `json:"completed_at"`
	Members     []string       `json:"members"`
	Tags        []string       `json:"tags"`
	Priority    *string        `json:"priority"`
	Metadata    map[string]any `json:"metadata"`
}

var modulePatchFields = map[string]struct{}{
	"module_id": {}, "name": {}, "description": {}, "status": {},
	"project_id": {}, "owner": {}, "start_date": {}, "due_date": {},
	"completed_at": {}, "members": {}, "tags": {}, "priority": {},
	"created_at": {}, "updated_at": {}, "metadata": {},
}

func (s *ProjectService) UpdateModule(ctx context.Context, callerOrgID, projectID, moduleID string, body []byte) (*entity.Module, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return nil, resterr.BadRequest("MISSING_MODULE_ID", "Module ID is required").WithField("module_id")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, resterr.BadRequest("MISSING_PROJECT_ID", "Project ID is required").WithField("project_id")
	}

	m, err := s.modules.FindInProject(ctx, moduleID, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("MODULE_NOT_FOUND", "Module not found").WithField("module_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("update module: lookup failed")
		return nil, errOrgDB
	}

	var patch ModulePatch
	if derr := decodePatch(body, modulePatchFields, &patch); derr != nil {
		return nil, derr
	}

	changed := 0
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		other, err := s.modules.FindByName(ctx, name, projectID)
		if err == nil && other.ModuleID != moduleID {
			return nil, resterr.BadRequest("MODULE_NAME_ALREADY_EXISTS", "Module name already exists in this project").WithField("name")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.WithError(err).Error("update module: name lookup failed")
			return nil, errOrgDB
		}
		m.Name = name
		changed++
	}
	if patch.Description != nil {
		m.Description = *patch.Description
		changed++
	}
	if patch.Status != nil {
		m.Status = *patch.Status
		changed++
	}
	if patch.Owner != nil {
		m.Owner = *patch.Owner
		changed++
	}
	if patch.StartDate != nil {
		m.StartDate = *patch.StartDate
		changed++
	}
	if patch.DueDate != nil {
		m.DueDate = *patch.DueDate
		changed++
	}
	if patch.CompletedAt != nil {
		m.CompletedAt = patch.CompletedAt
		changed++
	}
	if patch.Members != nil {
		m.Members = patch.Members
		changed++
	}
	if patch.Tags != nil {
		m.Tags = patch.Tags
		changed++
	}
	if patch.Priority != nil {
		m.Priority = *patch.Priority
		changed++
	}
	if patch.Metadata != nil {
		m.Metadata = patch.Metadata
		changed++
	}

	if changed == 0 {
		return nil, resterr.BadRequest("NO_FIELDS_TO_UPDATE", "No valid fields provided for update").WithField("module_data")
	}

	m.UpdatedAt = time.Now().UTC()
	if err := s.modules.Replace(ctx, m); err != nil {
		s.logger.WithError(err).Error("update module: write failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Failed to update module").WithField("system")
	}

	s.logger.WithFields(logrus.Fields{"module_id": moduleID, "project_id": projectID}).Info("module updated")
	return m, nil
}

func (s *ProjectService) DeleteModule(ctx context.Context, callerOrgID, projectID, moduleID string) (map[string]any, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	moduleID = strings.TrimSpace(moduleID)
	if moduleID == "" {
		return nil, resterr.BadRequest("MISSING_MODULE_ID", "Module ID is required").WithField("module_id")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, resterr.BadRequest("MISSING_PROJECT_ID", "Project ID is required").WithField("project_id")
	}

	if _, err := s.modules.FindInProject(ctx, moduleID, projectID); errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("MODULE_NOT_FOUND", "Module not found").WithField("module_id")
	} else if err != nil {
		s.logger.WithError(err).Error("delete module: lookup failed")
		return nil, errOrgDB
	}

	if err := s.modules.Delete(ctx, moduleID); err != nil {
		s.logger.WithError(err).Error("delete module: delete failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Failed to delete module").WithField("system")
	}

	if err := s.projects.RemoveModule(ctx, projectID, moduleID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"project_id": projectID, "module_id": moduleID}).Warn("delete module: reverse reference update failed")
	}

	s.logger.WithFields(logrus.Fields{"module_id": moduleID, "project_id": projectID}).Info("module deleted")
	return map[string]any{"module_id": moduleID, "project_id": projectID}, nil
}

// ModuleList is the paginated list payload, echoing the parent project.
type ModuleList struct {
	Modules    []*entity.Module `json:"modules"`
	Pagination Page             `json:"pagination"`
	Project    ProjectRef       `json:"project"`
}

// ProjectRef is the short parent reference embedded in scoped list payloads.
type ProjectRef struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}

func (s *ProjectService) ListModules(ctx context.Context, callerOrgID, projectID string, limit, skip int) (*ModuleList, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, resterr.BadRequest("MISSING_PROJECT_ID", "Project ID is required").WithField("project_id")
	}
	if perr := validatePageParams(limit, skip); perr != nil {
		return nil, perr
	}

	parent, err := s.projects.FindByID(ctx, projectID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("PARENT_PROJECT_NOT_FOUND", "Parent project not found").WithField("project_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("list modules: parent lookup failed")
		return nil, errOrgDB
	}

	filter := map[string]any{"project_id": projectID}
	total, err := s.modules.Count(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("list modules: count failed")
		return nil, errOrgDB
	}
	modules, err := s.modules.List(ctx, filter, limit, skip)
	if err != nil {
		s.logger.WithError(err).Error("list modules: query failed")
		return nil, errOrgDB
	}

	return &ModuleList{
		Modules:    modules,
		Pagination: newPage(total, len(modules), limit, skip),
		Project:    ProjectRef{ProjectID: parent.ProjectID, Name: parent.Name},
	}, nil
}

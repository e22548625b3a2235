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

// OrganizationService owns organization and business unit administration.
// Reads and writes on existing records run behind the caller-organization
// gate; creating or listing organizations does not, since a fresh tenant
// has no organization to validate against yet.
type OrganizationService struct {
	orgs   repository.OrganizationRepository
	units  repository.BusinessUnitRepository
	logger *logrus.Logger
}

func NewOrganizationService(orgs repository.OrganizationRepository, units repository.BusinessUnitRepository, logger *logrus.Logger) *OrganizationService {
	return &OrganizationService{orgs: orgs, units: units, logger: logger}
}

var errOrgDB = resterr.Internal("DATABASE_ERROR", "Database connection error").WithField("system")

func (s *OrganizationService) CreateOrganization(ctx context.Context, in *entity.Organization) (*entity.Organization, *resterr.Error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, resterr.BadRequest("MISSING_ORGANIZATION_NAME", "Organization name is required").WithField("name")
	}

	orgID := strings.TrimSpace(in.OrgID)
	if orgID == "" {
		orgID = uuid.New().String()
	}

	if _, err := s.orgs.FindByID(ctx, orgID); err == nil {
		return nil, resterr.BadRequest("ORG_ID_ALREADY_EXISTS", "Organization ID already exists").WithField("org_id")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("create organization: id lookup failed")
		return nil, errOrgDB
	}
	if _, err := s.orgs.FindByName(ctx, name); err == nil {
		return nil, resterr.BadRequest("ORG_NAME_ALREADY_EXISTS", "Organization name already exists").WithField("name")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("create organization: name lookup failed")
		return nil, errOrgDB
	}

	now := time.Now().UTC()
	org := *in
	org.OrgID = orgID
	org.Name = name
	if org.IsActive == nil {
		active := true
		org.IsActive = &active
	}
	if org.Status == "" {
		org.Status = entity.StatusActive
	}
	if org.BusinessUnits == nil {
		org.BusinessUnits = []string{}
	}
	if org.Members == nil {
		org.Members = []string{}
	}
	if org.Projects == nil {
		org.Projects = []string{}
	}
	if org.Metadata == nil {
		org.Metadata = map[string]any{}
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = now
	}
	org.UpdatedAt = now

	if err := s.orgs.Insert(ctx, &org); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, resterr.BadRequest("ORG_ID_ALREADY_EXISTS", "Organization ID already exists").WithField("org_id")
		}
		s.logger.WithError(err).Error("create organization: insert failed")
		return nil, resterr.Internal("DATABASE_INSERT_ERROR", "Database insert operation failed").WithField("database")
	}

	s.logger.WithFields(logrus.Fields{"org_id": orgID, "name": name}).Info("organization created")
	return &org, nil
}

func (s *OrganizationService) GetOrganization(ctx context.Context, callerOrgID, orgID string) (*entity.Organization, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, resterr.BadRequest("MISSING_ORG_ID", "Organization ID is required").WithField("org_id")
	}

	org, err := s.orgs.FindByID(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("ORGANIZATION_NOT_FOUND", "Organization not found").WithField("org_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("get organization: lookup failed")
		return nil, errOrgDB
	}
	return org, nil
}

// OrganizationList is the paginated list payload.
type OrganizationList struct {
	Organizations []*entity.Organization `json:"organizations"`
	Pagination    Page                   `json:"pagination"`
}

func (s *OrganizationService) ListOrganizations(ctx context.Context, limit, skip int) (*OrganizationList, *resterr.Error) {
	if perr := validatePageParams(limit, skip); perr != nil {
		return nil, perr
	}

	total, err := s.orgs.Count(ctx, nil)
	if err != nil {
		s.logger.WithError(err).Error("list organizations: count failed")
		return nil, errOrgDB
	}
	orgs, err := s.orgs.List(ctx, nil, limit, skip)
	if err != nil {
		s.logger.WithError(err).Error("list organizations: query failed")
		return nil, errOrgDB
	}

	return &OrganizationList{
		Organizations: orgs,
		Pagination:    newPage(total, len(orgs), limit, skip),
	}, nil
}

// OrganizationPatch carries the updatable organization fields. Pointers
// distinguish "leave alone" from "set to zero value".
type OrganizationPatch struct {
	Name            *string        `json:"name"`
	IsActive        *bool          `json:"is_active"`
	ShortName       *string        `json:"short_name"`
	Description     *string        `json:"description"`
	PrimaryContact  *string        `json:"primary_contact"`
	Email           *string        `json:"email"`
	Website         *string        `json:"website"`
	Address         any            `json:"address"`
	ParentOrgID     *string        `json:"parent_org_id"`
	Status          *string        `json:"status"`
	Members         []string       `json:"members"`
	Projects        []string       `json:"projects"`
	EstablishedDate *time.Time     `json:"established_date"`
	Metadata        map[string]any `json:"metadata"`
}

// organizationPatchFields mirrors the organization document shape. Keys
// the patch appliers skip (org_id, timestamps, business_units) stay in
// the set so a full record round-tripped by a client is not rejected.
var organizationPatchFields = map[string]struct{}{
	"org_id": {}, "name": {}, "is_active": {}, "short_name": {},
	"description": {}, "primary_contact": {}, "email": {}, "website": {},
	"address": {}, "parent_org_id": {}, "status": {}, "business_units": {},
	"members": {}, "projects": {}, "established_date": {}, "created_at": {},
	"updated_at": {}, "metadata": {},
}

func (s *OrganizationService) UpdateOrganization(ctx context.Context, callerOrgID, orgID string, body []byte) (*entity.Organization, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, resterr.BadRequest("MISSING_ORG_ID", "Organization ID is required").WithField("org_id")
	}

	org, err := s.orgs.FindByID(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("ORGANIZATION_NOT_FOUND", "Organization not found").WithField("org_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("update organization: lookup failed")
		return nil, errOrgDB
	}

	var patch OrganizationPatch
	if derr := decodePatch(body, organizationPatchFields, &patch); derr != nil {
		return nil, derr
	}

	changed := 0
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		other, err := s.orgs.FindByName(ctx, name)
		if err == nil && other.OrgID != orgID {
			return nil, resterr.BadRequest("ORG_NAME_ALREADY_EXISTS", "Organization name is already taken by another organization").WithField("name")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.WithError(err).Error("update organization: name lookup failed")
			return nil, resterr.Internal("DATABASE_ERROR", "Database connection error during name validation").WithField("system")
		}
		org.Name = name
		changed++
	}
	if patch.IsActive != nil {
		org.IsActive = patch.IsActive
		changed++
	}
	if patch.ShortName != nil {
		org.ShortName = *patch.ShortName
		changed++
	}
	if patch.Description != nil {
		org.Description = *patch.Description
		changed++
	}
	if patch.PrimaryContact != nil {
		org.PrimaryContact = *patch.PrimaryContact
		changed++
	}
	if patch.Email != nil {
		org.Email = *patch.Email
		changed++
	}
	if patch.Website != nil {
		org.Website = *patch.Website
		changed++
	}
	if patch.Address != nil {
		org.Address = patch.Address
		changed++
	}
	if patch.ParentOrgID != nil {
		org.ParentOrgID = *patch.ParentOrgID
		changed++
	}
	if patch.Status != nil {
		org.Status = *patch.Status
		changed++
	}
	if patch.Members != nil {
		org.Members = patch.Members
		changed++
	}
	if patch.Projects != nil {
		org.Projects = patch.Projects
		changed++
	}
	if patch.EstablishedDate != nil {
		org.EstablishedDate = patch.EstablishedDate
		changed++
	}
	if patch.Metadata != nil {
		org.Metadata = patch.Metadata
		changed++
	}

	if changed == 0 {
		return nil, resterr.BadRequest("NO_FIELDS_TO_UPDATE", "No valid fields provided for update").WithField("organization_data")
	}

	org.UpdatedAt = time.Now().UTC()
	if err := s.orgs.Replace(ctx, org); err != nil {
		s.logger.WithError(err).Error("update organization: write failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Database update error").WithField("system")
	}

	s.logger.WithFields(logrus.Fields{"org_id": orgID, "fields": changed}).Info("organization updated")
	return org, nil
}

// DeleteOrganization removes an organization with no remaining business
// units. The returned payload echoes the deleted id.
func (s *OrganizationService) DeleteOrganization(ctx context.Context, callerOrgID, orgID string) (map[string]any, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, resterr.BadRequest("MISSING_ORG_ID", "Organization ID is required").WithField("org_id")
	}

	if _, err := s.orgs.FindByID(ctx, orgID); errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("ORGANIZATION_NOT_FOUND", "Organization not found").WithField("org_id")
	} else if err != nil {
		s.logger.WithError(err).Error("delete organization: lookup failed")
		return nil, errOrgDB
	}

	dependents, err := s.units.Count(ctx, map[string]any{"parent_org": orgID})
	if err != nil {
		s.logger.WithError(err).Error("delete organization: dependency check failed")
		return nil, errOrgDB
	}
	if dependents > 0 {
		return nil, resterr.BadRequest("ORGANIZATION_HAS_DEPENDENCIES", "Cannot delete organization with existing business units").WithField("org_id")
	}

	if err := s.orgs.Delete(ctx, orgID); err != nil {
		s.logger.WithError(err).Error("delete organization: delete failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Failed to delete organization").WithField("system")
	}

	s.logger.WithField("org_id", orgID).Info("organization deleted")
	return map[string]any{"org_id": orgID}, nil
}

func (s *OrganizationService) CreateBusinessUnit(ctx context.Context, callerOrgID, orgID string, in *entity.BusinessUnit) (*entity.BusinessUnit, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, resterr.BadRequest("MISSING_ORG_ID", "Organization ID is required").WithField("org_id")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, resterr.BadRequest("MISSING_BUSINESS_UNIT_NAME", "Business unit name is required").WithField("name")
	}

	buID := strings.TrimSpace(in.BUID)
	if buID == "" {
		buID = uuid.New().String()
	}

	if _, err := s.orgs.FindByID(ctx, orgID); errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("PARENT_ORGANIZATION_NOT_FOUND", "Parent organization not found").WithField("org_id")
	} else if err != nil {
		s.logger.WithError(err).Error("create business unit: parent lookup failed")
		return nil, errOrgDB
	}

	if _, err := s.units.FindByID(ctx, buID); err == nil {
		return nil, resterr.BadRequest("BU_ID_ALREADY_EXISTS", "Business unit ID already exists").WithField("bu_id")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("create business unit: id lookup failed")
		return nil, errOrgDB
	}
	if _, err := s.units.FindByName(ctx, name, orgID); err == nil {
		return nil, resterr.BadRequest("BU_NAME_ALREADY_EXISTS", "Business unit name already exists in this organization").WithField("name")
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.WithError(err).Error("create business unit: name lookup failed")
		return nil, errOrgDB
	}

	now := time.Now().UTC()
	bu := *in
	bu.BUID = buID
	bu.Name = name
	bu.ParentOrg = orgID
	if bu.Status == "" {
		bu.Status = entity.StatusActive
	}
	if bu.Members == nil {
		bu.Members = []string{}
	}
	if bu.Projects == nil {
		bu.Projects = []string{}
	}
	if bu.Metadata == nil {
		bu.Metadata = map[string]any{}
	}
	if bu.CreatedAt.IsZero() {
		bu.CreatedAt = now
	}
	bu.UpdatedAt = now

	if err := s.units.Insert(ctx, &bu); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, resterr.BadRequest("BU_ID_ALREADY_EXISTS", "Business unit ID already exists").WithField("bu_id")
		}
		s.logger.WithError(err).Error("create business unit: insert failed")
		return nil, resterr.Internal("DATABASE_INSERT_ERROR", "Database insert operation failed").WithField("database")
	}

	// The parent's reverse reference list is bookkeeping. A failure here
	// is logged, the unit itself is already committed.
	if err := s.orgs.AddBusinessUnit(ctx, orgID, buID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"org_id": orgID, "bu_id": buID}).Warn("create business unit: reverse reference update failed")
	}

	s.logger.WithFields(logrus.Fields{"bu_id": buID, "org_id": orgID}).Info("business unit created")
	return &bu, nil
}

func (s *OrganizationService) GetBusinessUnit(ctx context.Context, callerOrgID, orgID, buID string) (*entity.BusinessUnit, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	buID = strings.TrimSpace(buID)
	if buID == "" {
		return nil, resterr.BadRequest("MISSING_BU_ID", "Business unit ID is required").WithField("bu_id")
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, resterr.BadRequest("MISSING_ORG_ID", "Organization ID is required").WithField("org_id")
	}

	bu, err := s.units.FindInOrg(ctx, buID, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("BUSINESS_UNIT_NOT_FOUND", "Business unit not found").WithField("bu_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("get business unit: lookup failed")
		return nil, errOrgDB
	}
	return bu, nil
}

// BusinessUnitPatch carries the updatable business unit fields. The
// identity fields (bu_id, parent_org) and created_at are protected and
// ignored when present in the payload.
type BusinessUnitPatch struct {
	Name        *string        `json:"name"`
	Description *string        `json:"description"`
	ParentBUID  *string        `json:"parent_bu_id"`
	Head        *string        `json:"head"`
	Members     []string       `json:"members"`
	Projects    []string       `json:"projects"`
	Status      *string        `json:"status"`
	Metadata    map[string]any `json:"metadata"`
}

var businessUnitPatchFields = map[string]struct{}{
	"bu_id": {}, "name": {}, "description": {}, "parent_org": {},
	"parent_bu_id": {}, "head": {}, "members": {}, "projects": {},
	"status": {}, "created_at": {}, "updated_at": {}, "metadata": {},
}

func (s *OrganizationService) UpdateBusinessUnit(ctx context.Context, callerOrgID, callerUserID, orgID, buID string, body []byte) (*entity.BusinessUnit, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	buID = strings.TrimSpace(buID)
	if buID == "" {
		return nil, resterr.BadRequest("MISSING_BU_ID", "Business unit ID is required").WithField("bu_id")
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, resterr.BadRequest("MISSING_ORG_ID", "Organization ID is required").WithField("org_id")
	}

	bu, err := s.units.FindInOrg(ctx, buID, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("BUSINESS_UNIT_NOT_FOUND", "Business unit not found").WithField("bu_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("update business unit: lookup failed")
		return nil, errOrgDB
	}

	var patch BusinessUnitPatch
	if derr := decodePatch(body, businessUnitPatchFields, &patch); derr != nil {
		return nil, derr
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		other, err := s.units.FindByName(ctx, name, orgID)
		if err == nil && other.BUID != buID {
			return nil, resterr.BadRequest("BU_NAME_ALREADY_EXISTS", "Business unit name already exists in this organization").WithField("name")
		}
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.logger.WithError(err).Error("update business unit: name lookup failed")
			return nil, errOrgDB
		}
		bu.Name = name
	}
	if patch.Description != nil {
		bu.Description = *patch.Description
	}
	if patch.ParentBUID != nil {
		bu.ParentBUID = *patch.ParentBUID
	}
	if patch.Head != nil {
		bu.Head = *patch.Head
	}
	if patch.Members != nil {
		bu.Members = patch.Members
	}
	if patch.Projects != nil {
		bu.Projects = patch.Projects
	}
	if patch.Status != nil {
		bu.Status = *patch.Status
	}
	if patch.Metadata != nil {
		bu.Metadata = patch.Metadata
	}

	bu.UpdatedAt = time.Now().UTC()
	bu.UpdatedBy = callerUserID

	if err := s.units.Replace(ctx, bu); err != nil {
		s.logger.WithError(err).Error("update business unit: write failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Failed to update business unit").WithField("system")
	}

	s.logger.WithFields(logrus.Fields{"bu_id": buID, "org_id": orgID}).Info("business unit updated")
	return bu, nil
}

func (s *OrganizationService) DeleteBusinessUnit(ctx context.Context, callerOrgID, orgID, buID string) (map[string]any, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	buID = strings.TrimSpace(buID)
	if buID == "" {
		return nil, resterr.BadRequest("MISSING_BU_ID", "Business unit ID is required").WithField("bu_id")
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, resterr.BadRequest("MISSING_ORG_ID", "Organization ID is required").WithField("org_id")
	}

	if _, err := s.units.FindInOrg(ctx, buID, orgID); errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("BUSINESS_UNIT_NOT_FOUND", "Business unit not found").WithField("bu_id")
	} else if err != nil {
		s.logger.WithError(err).Error("delete business unit: lookup failed")
		return nil, errOrgDB
	}

	children, err := s.units.CountChildren(ctx, buID)
	if err != nil {
		s.logger.WithError(err).Error("delete business unit: dependency check failed")
		return nil, errOrgDB
	}
	if children > 0 {
		return nil, resterr.BadRequest("BUSINESS_UNIT_HAS_DEPENDENCIES", "Cannot delete business unit with existing child business units").WithField("bu_id")
	}

	if err := s.units.Delete(ctx, buID); err != nil {
		s.logger.WithError(err).Error("delete business unit: delete failed")
		return nil, resterr.Internal("DATABASE_ERROR", "Failed to delete business unit").WithField("system")
	}

	if err := s.orgs.RemoveBusinessUnit(ctx, orgID, buID); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"org_id": orgID, "bu_id": buID}).Warn("delete business unit: reverse reference update failed")
	}

	s.logger.WithFields(logrus.Fields{"bu_id": buID, "org_id": orgID}).Info("business unit deleted")
	return map[string]any{"bu_id": buID, "org_id": orgID}, nil
}

// BusinessUnitList is the paginated list payload, echoing the parent
// organization it was scoped to.
type BusinessUnitList struct {
	BusinessUnits []*entity.BusinessUnit `json:"business_units"`
	Pagination    Page                   `json:"pagination"`
	Organization  OrgRef                 `json:"organization"`
}

// OrgRef is the short parent reference embedded in scoped list payloads.
type OrgRef struct {
	OrgID string `json:"org_id"`
	Name  string `json:"name"`
}

func (s *OrganizationService) ListBusinessUnits(ctx context.Context, callerOrgID, orgID string, limit, skip int) (*BusinessUnitList, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, resterr.BadRequest("MISSING_ORG_ID", "Organization ID is required").WithField("org_id")
	}
	if perr := validatePageParams(limit, skip); perr != nil {
		return nil, perr
	}

	parent, err := s.orgs.FindByID(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("PARENT_ORGANIZATION_NOT_FOUND", "Parent organization not found").WithField("org_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("list business units: parent lookup failed")
		return nil, errOrgDB
	}

	filter := map[string]any{"parent_org": orgID}
	total, err := s.units.Count(ctx, filter)
	if err != nil {
		s.logger.WithError(err).Error("list business units: count failed")
		return nil, errOrgDB
	}
	units, err := s.units.List(ctx, filter, limit, skip)
	if err != nil {
		s.logger.WithError(err).Error("list business units: query failed")
		return nil, errOrgDB
	}

	return &BusinessUnitList{
		BusinessUnits: units,
		Pagination:    newPage(total, len(units), limit, skip),
		Organization:  OrgRef{OrgID: parent.OrgID, Name: parent.Name},
	}, nil
}

// GetOrganizationUnits resolves the organization's business_units
// reference list into full unit records. References that point at
// missing units are logged and skipped rather than failing the read.
func (s *OrganizationService) GetOrganizationUnits(ctx context.Context, callerOrgID, orgID string) (*BusinessUnitList, *resterr.Error) {
	if gerr := requireActiveOrg(ctx, s.orgs, s.logger, callerOrgID); gerr != nil {
		return nil, gerr
	}
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return nil, resterr.BadRequest("MISSING_ORG_ID", "Organization ID is required").WithField("org_id")
	}

	org, err := s.orgs.FindByID(ctx, orgID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, resterr.NotFound("ORGANIZATION_NOT_FOUND", "Organization not found").WithField("org_id")
	}
	if err != nil {
		s.logger.WithError(err).Error("get organization units: lookup failed")
		return nil, errOrgDB
	}

	units := make([]*entity.BusinessUnit, 0, len(org.BusinessUnits))
	for _, buID := range org.BusinessUnits {
		bu, err := s.units.FindByID(ctx, buID)
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.WithFields(logrus.Fields{"org_id": orgID, "bu_id": buID}).Warn("get organization units: referenced unit missing")
			continue
		}
		if err != nil {
			s.logger.WithError(err).Error("get organization units: unit lookup failed")
			return nil, resterr.Internal("DATABASE_ERROR", "Error retrieving business units data").WithField("business_units")
		}
		units = append(units, bu)
	}

	return &BusinessUnitList{
		BusinessUnits: units,
		Pagination:    newPage(int64(len(units)), len(units), defaultPageLimit, 0),
		Organization:  OrgRef{OrgID: org.OrgID, Name: org.Name},
	}, nil
}

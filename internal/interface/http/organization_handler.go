package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/internal/application"
	"github.com/automator-io/admin-service/internal/domain/entity"
	"github.com/automator-io/admin-service/internal/interface/middleware"
	"github.com/automator-io/admin-service/pkg/resterr"
)

type OrganizationHandler struct {
	Svc    *application.OrganizationService
	Logger *logrus.Logger
}

func NewOrganizationHandler(svc *application.OrganizationService, logger *logrus.Logger) *OrganizationHandler {
	return &OrganizationHandler{Svc: svc, Logger: logger}
}

// caller resolves the authenticated principal. Authenticate runs before
// every route in this handler, so a missing principal is a 401.
func caller(c *gin.Context) (*middleware.Principal, bool) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		writeErr(c, resterr.Unauthorized("INVALID_TOKEN", "Invalid authentication credentials"))
		return nil, false
	}
	return p, true
}

func (h *OrganizationHandler) Create(c *gin.Context) {
	var org entity.Organization
	if err := c.ShouldBindJSON(&org); err != nil {
		badPayload(c, err)
		return
	}
	out, rerr := h.Svc.CreateOrganization(c.Request.Context(), &org)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	created(c, "Organization created successfully", out)
}

func (h *OrganizationHandler) Get(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	out, rerr := h.Svc.GetOrganization(c.Request.Context(), p.OrgID, c.Param("org_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Organization retrieved", out)
}

func (h *OrganizationHandler) List(c *gin.Context) {
	limit, skip, valid := pageParams(c)
	if !valid {
		return
	}
	out, rerr := h.Svc.ListOrganizations(c.Request.Context(), limit, skip)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Organizations retrieved", out)
}

func (h *OrganizationHandler) Update(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	body, valid := rawBody(c)
	if !valid {
		return
	}
	out, rerr := h.Svc.UpdateOrganization(c.Request.Context(), p.OrgID, c.Param("org_id"), body)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Organization updated successfully", out)
}

func (h *OrganizationHandler) Delete(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	data, rerr := h.Svc.DeleteOrganization(c.Request.Context(), p.OrgID, c.Param("org_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Organization deleted successfully", data)
}

// Units returns the business units referenced by the organization document
// itself, as opposed to the collection-backed listing below.
func (h *OrganizationHandler) Units(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	out, rerr := h.Svc.GetOrganizationUnits(c.Request.Context(), p.OrgID, c.Param("org_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Organization units retrieved", out)
}

func (h *OrganizationHandler) CreateBusinessUnit(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	var bu entity.BusinessUnit
	if err := c.ShouldBindJSON(&bu); err != nil {
		badPayload(c, err)
		return
	}
	out, rerr := h.Svc.CreateBusinessUnit(c.Request.Context(), p.OrgID, c.Param("org_id"), &bu)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	created(c, "Business unit created successfully", out)
}

func (h *OrganizationHandler) GetBusinessUnit(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	out, rerr := h.Svc.GetBusinessUnit(c.Request.Context(), p.OrgID, c.Param("org_id"), c.Param("bu_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Business unit retrieved", out)
}

func (h *OrganizationHandler) ListBusinessUnits(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	limit, skip, valid := pageParams(c)
	if !valid {
		return
	}
	out, rerr := h.Svc.ListBusinessUnits(c.Request.Context(), p.OrgID, c.Param("org_id"), limit, skip)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Business units retrieved", out)
}

func (h *OrganizationHandler) UpdateBusinessUnit(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	body, valid := rawBody(c)
	if !valid {
		return
	}
	out, rerr := h.Svc.UpdateBusinessUnit(c.Request.Context(), p.OrgID, p.UserID, c.Param("org_id"), c.Param("bu_id"), body)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Business unit updated successfully", out)
}

func (h *OrganizationHandler) DeleteBusinessUnit(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	data, rerr := h.Svc.DeleteBusinessUnit(c.Request.Context(), p.OrgID, c.Param("org_id"), c.Param("bu_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Business unit deleted successfully", data)
}

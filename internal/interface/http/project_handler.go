package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/internal/application"
	"github.com/automator-io/admin-service/internal/domain/entity"
)

type ProjectHandler struct {
	Svc    *application.ProjectService
	Logger *logrus.Logger
}

func NewProjectHandler(svc *application.ProjectService, logger *logrus.Logger) *ProjectHandler {
	return &ProjectHandler{Svc: svc, Logger: logger}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	var project entity.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		badPayload(c, err)
		return
	}
	out, rerr := h.Svc.CreateProject(c.Request.Context(), p.OrgID, &project)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	created(c, "Project created successfully", out)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	out, rerr := h.Svc.GetProject(c.Request.Context(), p.OrgID, c.Param("project_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Project retrieved", out)
}

func (h *ProjectHandler) List(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	limit, skip, valid := pageParams(c)
	if !valid {
		return
	}
	out, rerr := h.Svc.ListProjects(c.Request.Context(), p.OrgID, limit, skip)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Projects retrieved", out)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	body, valid := rawBody(c)
	if !valid {
		return
	}
	out, rerr := h.Svc.UpdateProject(c.Request.Context(), p.OrgID, c.Param("project_id"), body)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Project updated successfully", out)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	data, rerr := h.Svc.DeleteProject(c.Request.Context(), p.OrgID, c.Param("project_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Project deleted successfully", data)
}

func (h *ProjectHandler) CreateModule(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	var mod entity.Module
	if err := c.ShouldBindJSON(&mod); err != nil {
		badPayload(c, err)
		return
	}
	out, rerr := h.Svc.CreateModule(c.Request.Context(), p.OrgID, c.Param("project_id"), &mod)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	created(c, "Module created successfully", out)
}

func (h *ProjectHandler) GetModule(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	out, rerr := h.Svc.GetModule(c.Request.Context(), p.OrgID, c.Param("project_id"), c.Param("module_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Module retrieved", out)
}

func (h *ProjectHandler) ListModules(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	limit, skip, valid := pageParams(c)
	if !valid {
		return
	}
	out, rerr := h.Svc.ListModules(c.Request.Context(), p.OrgID, c.Param("project_id"), limit, skip)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Modules retrieved", out)
}

func (h *ProjectHandler) UpdateModule(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	body, valid := rawBody(c)
	if !valid {
		return
	}
	out, rerr := h.Svc.UpdateModule(c.Request.Context(), p.OrgID, c.Param("project_id"), c.Param("module_id"), body)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Module updated successfully", out)
}

func (h *ProjectHandler) DeleteModule(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	data, rerr := h.Svc.DeleteModule(c.Request.Context(), p.OrgID, c.Param("project_id"), c.Param("module_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Module deleted successfully", data)
}

package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/internal/application"
	"github.com/automator-io/admin-service/pkg/resterr"
)

type UserHandler struct {
	Svc    *application.UserAdminService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserAdminService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

func (h *UserHandler) Create(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	var req application.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	out, rerr := h.Svc.CreateUser(c.Request.Context(), p.OrgID, &req)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	created(c, "User created successfully", out)
}

func (h *UserHandler) Get(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	out, rerr := h.Svc.GetUser(c.Request.Context(), p.OrgID, c.Param("user_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "User retrieved", out)
}

func (h *UserHandler) List(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	limit, skip, valid := pageParams(c)
	if !valid {
		return
	}
	out, rerr := h.Svc.ListUsers(c.Request.Context(), p.OrgID, limit, skip)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Users retrieved", out)
}

func (h *UserHandler) Update(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	body, valid := rawBody(c)
	if !valid {
		return
	}
	out, rerr := h.Svc.UpdateUser(c.Request.Context(), p.OrgID, c.Param("user_id"), body)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "User updated successfully", out)
}

func (h *UserHandler) Delete(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	data, rerr := h.Svc.DeleteUser(c.Request.Context(), p.OrgID, c.Param("user_id"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "User deleted successfully", data)
}

type searchQuery struct {
	Q    string `form:"q" json:"q" binding:"required"`
	Size int    `form:"size" json:"size" binding:"omitempty,gte=1,lte=100"`
}

// Search queries the Elasticsearch index, not the document store.
func (h *UserHandler) Search(c *gin.Context) {
	if _, authed := caller(c); !authed {
		return
	}
	var query searchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		badPayload(c, err)
		return
	}
	if query.Size == 0 {
		query.Size = 10
	}
	hits, rerr := h.Svc.SearchUsers(c.Request.Context(), query.Q, query.Size)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Search results", gin.H{"results": hits, "count": len(hits)})
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	p, authed := caller(c)
	if !authed {
		return
	}
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		writeErr(c, resterr.BadRequest("MISSING_AVATAR_FILE", "Avatar file is required").WithField("avatar"))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		h.Logger.WithError(err).Error("avatar upload: open failed")
		writeErr(c, resterr.Internal("STORAGE_UPLOAD_ERROR", "Avatar upload failed").WithField("avatar"))
		return
	}
	defer f.Close()

	url, rerr := h.Svc.UploadAvatar(c.Request.Context(), p.OrgID, c.Param("user_id"), f, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Avatar uploaded successfully", gin.H{"user_id": c.Param("user_id"), "avatar_url": url})
}

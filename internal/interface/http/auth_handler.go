package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/internal/application"
	"github.com/automator-io/admin-service/internal/interface/middleware"
	"github.com/automator-io/admin-service/pkg/response"
	"github.com/automator-io/admin-service/pkg/resterr"
)

type AuthHandler struct {
	Auth         *application.AuthService
	Verification *application.VerificationService
	Logger       *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, verification *application.VerificationService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Verification: verification, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	pair, rerr := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Login successful", pair)
}

// Refresh reads the refresh token from the Authorization header. Clients
// that cannot set headers may send it in the body instead.
func (h *AuthHandler) Refresh(c *gin.Context) {
	tok := middleware.BearerToken(c)
	if tok == "" {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.ShouldBindJSON(&req); err == nil {
			tok = req.RefreshToken
		}
	}
	if tok == "" {
		writeErr(c, resterr.Unauthorized("INVALID_TOKEN", "Invalid authentication credentials"))
		return
	}
	pair, rerr := h.Auth.Refresh(c.Request.Context(), tok)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Token refreshed", pair)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req application.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	user, rerr := h.Auth.Register(c.Request.Context(), &req)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	created(c, "User registered successfully", user)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		writeErr(c, resterr.Unauthorized("INVALID_TOKEN", "Invalid authentication credentials"))
		return
	}
	result, rerr := h.Auth.Logout(c.Request.Context(), p.UserID)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	h.Logger.WithFields(logrus.Fields{"user_id": result.UserID, "status": result.Status}).Info("logout")
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		writeErr(c, resterr.Unauthorized("INVALID_TOKEN", "Invalid authentication credentials"))
		return
	}
	user, rerr := h.Auth.Me(c.Request.Context(), p.UserID)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "User profile retrieved", user)
}

func (h *AuthHandler) VerifyInit(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if p == nil {
		writeErr(c, resterr.Unauthorized("INVALID_TOKEN", "Invalid authentication credentials"))
		return
	}
	data, rerr := h.Verification.InitVerification(c.Request.Context(), p.UserID)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Verification email queued", data)
}

func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	data, rerr := h.Verification.ConfirmVerification(c.Request.Context(), req.Token)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Email verified", data)
}

func (h *AuthHandler) ResetInit(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	data, rerr := h.Verification.InitPasswordReset(c.Request.Context(), req.Email)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Password reset requested", data)
}

func (h *AuthHandler) ResetConfirm(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,pwd"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	data, rerr := h.Verification.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword)
	if rerr != nil {
		writeErr(c, rerr)
		return
	}
	ok(c, "Password reset", data)
}

// Health is the unauthenticated liveness probe.
func Health(c *gin.Context) {
	response.Success(c, http.StatusOK, "ok", gin.H{"status": "healthy"})
}

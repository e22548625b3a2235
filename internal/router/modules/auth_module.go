package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/automator-io/admin-service/internal/container"
	handlers "github.com/automator-io/admin-service/internal/interface/http"
	"github.com/automator-io/admin-service/internal/interface/middleware"
	"github.com/automator-io/admin-service/pkg/token"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
	Codec   *token.Codec
}

func NewAuthModule(h *handlers.AuthHandler, codec *token.Codec) *AuthModule {
	return &AuthModule{Handler: h, Codec: codec}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/login", m.Handler.Login)
	rg.POST("/auth/refresh", m.Handler.Refresh)
	rg.POST("/auth/register", m.Handler.Register)
	rg.POST("/auth/verify/confirm", m.Handler.VerifyConfirm)
	rg.POST("/auth/reset/init", m.Handler.ResetInit)
	rg.POST("/auth/reset/confirm", m.Handler.ResetConfirm)

	// Endpoints that need a verified access token.
	auth := rg.Group("/")
	auth.Use(middleware.Authenticate(m.Codec, container.GetLogger()))
	{
		auth.DELETE("/auth/logout", m.Handler.Logout)
		auth.GET("/auth/me", m.Handler.Me)
		auth.POST("/auth/verify/init", m.Handler.VerifyInit)
	}
}

package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/automator-io/admin-service/internal/container"
	handlers "github.com/automator-io/admin-service/internal/interface/http"
	"github.com/automator-io/admin-service/internal/interface/middleware"
	"github.com/automator-io/admin-service/pkg/token"
)

type UserModule struct {
	Handler *handlers.UserHandler
	Codec   *token.Codec
}

func NewUserModule(h *handlers.UserHandler, codec *token.Codec) *UserModule {
	return &UserModule{Handler: h, Codec: codec}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Authenticate(m.Codec, container.GetLogger()))
	{
		users.POST("", m.Handler.Create)
		users.GET("", m.Handler.List)
		users.GET("/search", m.Handler.Search)
		users.GET("/:user_id", m.Handler.Get)
		users.PUT("/:user_id", m.Handler.Update)
		users.DELETE("/:user_id", m.Handler.Delete)
		users.POST("/:user_id/avatar", m.Handler.UploadAvatar)
	}
}

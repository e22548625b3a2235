package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/automator-io/admin-service/internal/container"
	handlers "github.com/automator-io/admin-service/internal/interface/http"
	"github.com/automator-io/admin-service/internal/interface/middleware"
	"github.com/automator-io/admin-service/pkg/token"
)

type ProjectModule struct {
	Handler *handlers.ProjectHandler
	Codec   *token.Codec
}

func NewProjectModule(h *handlers.ProjectHandler, codec *token.Codec) *ProjectModule {
	return &ProjectModule{Handler: h, Codec: codec}
}

func (m *ProjectModule) Register(rg *gin.RouterGroup) {
	projects := rg.Group("/projects")
	projects.Use(middleware.Authenticate(m.Codec, container.GetLogger()))
	{
		projects.POST("", m.Handler.Create)
		projects.GET("", m.Handler.List)
		projects.GET("/:project_id", m.Handler.Get)
		projects.PUT("/:project_id", m.Handler.Update)
		projects.DELETE("/:project_id", m.Handler.Delete)

		projects.POST("/:project_id/modules", m.Handler.CreateModule)
		projects.GET("/:project_id/modules", m.Handler.ListModules)
		projects.GET("/:project_id/modules/:module_id", m.Handler.GetModule)
		projects.PUT("/:project_id/modules/:module_id", m.Handler.UpdateModule)
		projects.DELETE("/:project_id/modules/:module_id", m.Handler.DeleteModule)
	}
}

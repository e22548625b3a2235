package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/automator-io/admin-service/internal/container"
	handlers "github.com/automator-io/admin-service/internal/interface/http"
	"github.com/automator-io/admin-service/internal/interface/middleware"
	"github.com/automator-io/admin-service/pkg/token"
)

type OrganizationModule struct {
	Handler *handlers.OrganizationHandler
	Codec   *token.Codec
}

func NewOrganizationModule(h *handlers.OrganizationHandler, codec *token.Codec) *OrganizationModule {
	return &OrganizationModule{Handler: h, Codec: codec}
}

func (m *OrganizationModule) Register(rg *gin.RouterGroup) {
	orgs := rg.Group("/organizations")
	orgs.Use(middleware.Authenticate(m.Codec, container.GetLogger()))
	{
		orgs.POST("", m.Handler.Create)
		orgs.GET("", m.Handler.List)
		orgs.GET("/:org_id", m.Handler.Get)
		orgs.PUT("/:org_id", m.Handler.Update)
		orgs.DELETE("/:org_id", m.Handler.Delete)

		orgs.GET("/:org_id/units", m.Handler.Units)

		orgs.POST("/:org_id/business-units", m.Handler.CreateBusinessUnit)
		orgs.GET("/:org_id/business-units", m.Handler.ListBusinessUnits)
		orgs.GET("/:org_id/business-units/:bu_id", m.Handler.GetBusinessUnit)
		orgs.PUT("/:org_id/business-units/:bu_id", m.Handler.UpdateBusinessUnit)
		orgs.DELETE("/:org_id/business-units/:bu_id", m.Handler.DeleteBusinessUnit)
	}
}

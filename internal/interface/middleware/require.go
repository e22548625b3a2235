package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/automator-io/admin-service/pkg/response"
)

// Authorization predicates. Each runs after Authenticate and either lets
// the request through or rejects with 403. Clients only see the generic
// message, never which check failed.

func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil || !p.HasAnyRole(roles...) {
			rejectForbidden(c, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func RequireOrganization(orgID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil || p.OrgID == "" || p.OrgID != orgID {
			rejectForbidden(c, "Access denied: wrong organization")
			return
		}
		c.Next()
	}
}

func RequireBusinessUnits(buIDs ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil || len(p.BusinessUnits) == 0 || !p.InAnyBusinessUnit(buIDs...) {
			rejectForbidden(c, "Access denied: wrong business units")
			return
		}
		c.Next()
	}
}

// RequireOrgAndRoles checks the organization first, then the roles.
func RequireOrgAndRoles(orgID string, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil || p.OrgID == "" || p.OrgID != orgID {
			rejectForbidden(c, "Access denied: wrong organization")
			return
		}
		if !p.HasAnyRole(roles...) {
			rejectForbidden(c, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentPrincipal(c)
		if p == nil || !p.HasAnyRole("admin") {
			rejectForbidden(c, "Admin access required")
			return
		}
		c.Next()
	}
}

func rejectForbidden(c *gin.Context, message string) {
	response.AbortError(c, http.StatusForbidden, message,
		response.ErrorDetail{Code: "FORBIDDEN", Message: message})
}

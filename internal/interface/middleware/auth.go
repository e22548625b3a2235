package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/automator-io/admin-service/pkg/response"
	"github.com/automator-io/admin-service/pkg/token"
)

const CtxPrincipalKey = "principal"

// Principal is the authenticated identity for one request, rebuilt from
// a verified access token.
type Principal struct {
	UserID        string
	Roles         []string
	OrgID         string
	BusinessUnits []string
	Claims        map[string]any
}

func (p *Principal) HasAnyRole(required ...string) bool {
	for _, want := range required {
		for _, have := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

func (p *Principal) InAnyBusinessUnit(required ...string) bool {
	for _, want := range required {
		for _, have := range p.BusinessUnits {
			if have == want {
				return true
			}
		}
	}
	return false
}

// CurrentPrincipal returns the principal set by Authenticate, or nil when
// the request is anonymous.
func CurrentPrincipal(c *gin.Context) *Principal {
	if v, ok := c.Get(CtxPrincipalKey); ok {
		if p, ok := v.(*Principal); ok {
			return p
		}
	}
	return nil
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate validates the bearer access token and stores the Principal
// on the context. Every failure produces the same 401 envelope so callers
// cannot tell a missing header from an expired or forged token; the real
// cause is only logged.
func Authenticate(codec *token.Codec, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)
		if raw == "" {
			logger.WithField("path", c.FullPath()).Warn("auth failed: missing bearer token")
			rejectUnauthorized(c)
			return
		}
		claims, err := codec.DecodeAccess(raw)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"path":   c.FullPath(),
				"reason": authFailureReason(err),
			}).Warn("auth failed")
			rejectUnauthorized(c)
			return
		}
		c.Set(CtxPrincipalKey, principalFromClaims(claims))
		c.Next()
	}
}

// OptionalAuthenticate is the anonymous-tolerant variant: a missing or
// invalid token leaves the request unauthenticated instead of rejecting it.
func OptionalAuthenticate(codec *token.Codec, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := BearerToken(c)
		if raw == "" {
			c.Next()
			return
		}
		claims, err := codec.DecodeAccess(raw)
		if err != nil {
			logger.WithField("reason", authFailureReason(err)).Debug("optional auth failed")
			c.Next()
			return
		}
		c.Set(CtxPrincipalKey, principalFromClaims(claims))
		c.Next()
	}
}

func principalFromClaims(claims *token.Claims) *Principal {
	return &Principal{
		UserID:        claims.UserID,
		Roles:         claims.Roles,
		OrgID:         claims.OrgID,
		BusinessUnits: claims.BusinessUnits,
		Claims:        claims.Raw,
	}
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return "token expired"
	case errors.Is(err, token.ErrWrongType):
		return "wrong token type"
	default:
		return "invalid token"
	}
}

func rejectUnauthorized(c *gin.Context) {
	response.AbortError(c, http.StatusUnauthorized, "Invalid authentication credentials",
		response.ErrorDetail{Code: "INVALID_TOKEN", Message: "Invalid or expired token"})
}

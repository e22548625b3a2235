package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP resolves the originating client address and stores it in the
// context under "real_ip". CF-Connecting-IP wins over the left-most
// X-Forwarded-For entry; the socket peer is the fallback.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", clientAddr(c))
		c.Next()
	}
}

func clientAddr(c *gin.Context) string {
	if ip := parseAddr(c.GetHeader("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := parseAddr(first); ip != "" {
			return ip
		}
	}
	return c.ClientIP()
}

func parseAddr(raw string) string {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return ""
	}
	return ip.String()
}

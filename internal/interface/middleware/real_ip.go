package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-auth-service/internal/application"
)

const realIPKey = "real_ip"

// RealIP stores the client IP under "real_ip" and attaches it, with the
// user agent, to the request context for audit events.
// Priority: CF-Connecting-IP, left-most X-Forwarded-For, c.ClientIP().
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := clientIP(c)
		c.Set(realIPKey, ip)
		c.Request = c.Request.WithContext(application.WithClient(c.Request.Context(), ip, c.Request.UserAgent()))
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
		if ip := net.ParseIP(cf); ip != nil {
			return ip.String()
		}
	}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}

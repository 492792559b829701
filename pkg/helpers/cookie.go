package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	RefreshCookieName = "refreshToken"
	AccessCookieName  = "accessToken"
)

// Manager writes the refresh-token cookie. Set and Clear share every
// attribute except max-age; browsers ignore a clear whose attributes differ.
type Manager struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

func NewCookie(domain string, secure bool, maxAge time.Duration) *Manager {
	return &Manager{Domain: domain, Secure: secure, MaxAge: maxAge}
}

// SetRefresh stores the refresh token as an HttpOnly, SameSite=Strict cookie.
func (m *Manager) SetRefresh(c *gin.Context, refresh string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, refresh, int(m.MaxAge.Seconds()), "/", m.Domain, m.Secure, true)
}

// ClearRefresh expires the refresh cookie with the attributes used by SetRefresh.
func (m *Manager) ClearRefresh(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(RefreshCookieName, "", -1, "/", m.Domain, m.Secure, true)
}

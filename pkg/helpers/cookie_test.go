package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordCookie(t *testing.T, fn func(c *gin.Context)) *http.Cookie {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(c)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSetRefreshCookieAttributes(t *testing.T) {
	m := NewCookie("example.com", true, 7*24*time.Hour)
	ck := recordCookie(t, func(c *gin.Context) { m.SetRefresh(c, "tok") })

	assert.Equal(t, RefreshCookieName, ck.Name)
	assert.Equal(t, "tok", ck.Value)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.Equal(t, 7*24*60*60, ck.MaxAge)
	assert.Equal(t, "/", ck.Path)
}

func TestClearRefreshMatchesSetAttributes(t *testing.T) {
	m := NewCookie("example.com", false, 7*24*time.Hour)
	set := recordCookie(t, func(c *gin.Context) { m.SetRefresh(c, "tok") })
	clear := recordCookie(t, func(c *gin.Context) { m.ClearRefresh(c) })

	assert.Equal(t, set.Name, clear.Name)
	assert.Empty(t, clear.Value)
	assert.Equal(t, set.HttpOnly, clear.HttpOnly)
	assert.Equal(t, set.Secure, clear.Secure)
	assert.Equal(t, set.SameSite, clear.SameSite)
	assert.Equal(t, set.Path, clear.Path)
	assert.Equal(t, set.Domain, clear.Domain)
	assert.Less(t, clear.MaxAge, 0)
}

package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/go-auth-service/internal/interface/http"
	"github.com/oksasatya/go-auth-service/internal/interface/middleware"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

// AuthLimits are requests per minute per client. Zero disables a limit.
type AuthLimits struct {
	Login   int
	Refresh int
	Email   int
}

// AuthModule mounts the auth routes under /auth.
// Public: register, login, refresh-token, verifyemail, resend-verification,
// forgot-password, reset-password. Protected: logout, me.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
	Redis   *redis.Client
	Logger  *logrus.Logger
	Limits  AuthLimits
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, limits AuthLimits) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt, Redis: rdb, Logger: logger, Limits: limits}
}

func (m *AuthModule) limit(max int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(m.Redis, m.Logger, max, time.Minute, key, nil)
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	byIP := middleware.KeyByIPAndPath()
	loginLimiter := m.limit(m.Limits.Login, byIP)
	refreshLimiter := m.limit(m.Limits.Refresh, byIP)
	emailLimiter := m.limit(m.Limits.Email, byIP)

	auth := rg.Group("/auth")
	auth.POST("/register", emailLimiter, m.Handler.Register)
	auth.POST("/login", loginLimiter, m.Handler.Login)
	auth.POST("/refresh-token", refreshLimiter, m.Handler.Refresh)
	auth.GET("/verifyemail", loginLimiter, m.Handler.VerifyEmail)
	auth.POST("/resend-verification", emailLimiter, m.Handler.ResendVerification)
	auth.POST("/forgot-password", emailLimiter, m.Handler.ForgotPassword)
	auth.POST("/reset-password", loginLimiter, m.Handler.ResetPassword)

	protected := auth.Group("")
	protected.Use(middleware.Auth(m.JWT))
	protected.Use(m.limit(m.Limits.Refresh, middleware.KeyByUserID()))
	{
		protected.POST("/logout", m.Handler.Logout)
		protected.GET("/me", m.Handler.Me)
	}
}

package router

import (
	"github.com/oksasatya/go-auth-service/internal/container"
	"github.com/oksasatya/go-auth-service/internal/router/modules"
)

// InitModules registers every feature module built from c.
func InitModules(r *Registry, c *container.Container) {
	cfg := c.Config
	r.Add(modules.NewAuthModule(c.AuthHandler, c.JWT, c.Redis, c.Logger, modules.AuthLimits{
		Login:   cfg.LoginRateLimit,
		Refresh: cfg.RefreshRateLimit,
		Email:   cfg.EmailRateLimit,
	}))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}

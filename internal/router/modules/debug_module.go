package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-auth-service/internal/interface/middleware"
)

// DebugModule exposes expvar counters to private networks only.
type DebugModule struct{}

func NewDebugModule() *DebugModule { return &DebugModule{} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/debug/vars", middleware.RequireAllowed(middleware.AllowPrivateIP()), gin.WrapH(expvar.Handler()))
}

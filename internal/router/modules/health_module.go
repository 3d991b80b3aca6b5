package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-course-marketplace/internal/interface/http"
	"github.com/oksasatya/go-course-marketplace/internal/interface/middleware"
)

type HealthModule struct {
	Handler *handlers.HealthHandler
	Limiter *middleware.Limiter
}

func NewHealthModule(h *handlers.HealthHandler, limiter *middleware.Limiter) *HealthModule {
	return &HealthModule{Handler: h, Limiter: limiter}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.Handler.Health)
	// expvar counters, open to the cluster, rate-limited for everyone else
	rl := m.Limiter.Handler(120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}

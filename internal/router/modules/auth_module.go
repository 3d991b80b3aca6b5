package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-course-marketplace/internal/interface/http"
	"github.com/oksasatya/go-course-marketplace/internal/interface/middleware"
)

// AuthModule: public register/login, authenticated account deletion.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   middleware.Authenticator
	Limiter *middleware.Limiter
}

func NewAuthModule(h *handlers.AuthHandler, guard middleware.Authenticator, limiter *middleware.Limiter) *AuthModule {
	return &AuthModule{Handler: h, Guard: guard, Limiter: limiter}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	registerLimiter := m.Limiter.Handler(10, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := m.Limiter.Handler(10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", registerLimiter, m.Handler.Register)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)

	auth := rg.Group("/auth")
	auth.Use(middleware.Auth(m.Guard))
	{
		auth.DELETE("/me", m.Limiter.Handler(5, time.Minute, middleware.KeyByUserID(), nil), m.Handler.DeleteMe)
	}
}

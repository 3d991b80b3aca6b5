package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	handlers "github.com/oksasatya/go-course-marketplace/internal/interface/http"
	"github.com/oksasatya/go-course-marketplace/internal/interface/middleware"
)

// CourseModule: public catalog, instructor-only writes, enrollment for any
// signed-in user.
type CourseModule struct {
	Handler *handlers.CourseHandler
	Guard   middleware.Authenticator
	Limiter *middleware.Limiter
}

func NewCourseModule(h *handlers.CourseHandler, guard middleware.Authenticator, limiter *middleware.Limiter) *CourseModule {
	return &CourseModule{Handler: h, Guard: guard, Limiter: limiter}
}

func (m *CourseModule) Register(rg *gin.RouterGroup) {
	rg.GET("/courses", m.Limiter.Handler(300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()), m.Handler.List)

	auth := rg.Group("/courses")
	auth.Use(
		middleware.Auth(m.Guard),
		m.Limiter.Handler(120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.POST("/:id/enroll", m.Handler.Enroll)

		instructor := auth.Group("")
		instructor.Use(middleware.RequireRole(entity.RoleInstructor))
		instructor.POST("", m.Handler.Create)
		instructor.PUT("/:id", m.Handler.Update)
		instructor.DELETE("/:id", m.Handler.Delete)
	}
}

package router

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-marketplace/internal/application"
	"github.com/oksasatya/go-course-marketplace/internal/container"
	repo "github.com/oksasatya/go-course-marketplace/internal/domain/repository"
	handlers "github.com/oksasatya/go-course-marketplace/internal/interface/http"
	"github.com/oksasatya/go-course-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-course-marketplace/internal/router/modules"
	"github.com/oksasatya/go-course-marketplace/pkg/helpers"
	mailtpl "github.com/oksasatya/go-course-marketplace/pkg/mailer/templates"
)

// Deps are the infrastructure pieces the HTTP modules are built from.
type Deps struct {
	Store     repo.Store
	JWT       *helpers.JWTManager
	Publisher application.Publisher // nil disables notifications
	Branding  mailtpl.Branding
	Limiter   *middleware.Limiter // nil disables rate limiting
	Logger    *logrus.Logger
}

// Services groups the application services behind the modules.
type Services struct {
	Guard    *application.Guard
	Auth     *application.AuthService
	Courses  *application.CourseService
	Accounts *application.AccountService
}

func BuildServices(d Deps) Services {
	notifier := application.NewNotifier(d.Publisher, d.Branding, d.Logger)
	sessions := application.NewSessionIssuer(d.Store.Users(), d.JWT, d.Logger)
	return Services{
		Guard:    application.NewGuard(sessions),
		Auth:     application.NewAuthService(d.Store, sessions, notifier, d.Logger),
		Courses:  application.NewCourseService(d.Store, notifier, d.Logger),
		Accounts: application.NewAccountService(d.Store, notifier, d.Logger),
	}
}

// Modules builds every feature module.
func Modules(d Deps) []Module {
	svc := BuildServices(d)
	var pinger handlers.Pinger
	if p, ok := d.Store.(handlers.Pinger); ok {
		pinger = p
	}
	return []Module{
		modules.NewHealthModule(handlers.NewHealthHandler(pinger, d.Logger), d.Limiter),
		modules.NewAuthModule(handlers.NewAuthHandler(svc.Auth, svc.Accounts, d.Logger), svc.Guard, d.Limiter),
		modules.NewCourseModule(handlers.NewCourseHandler(svc.Courses, d.Logger), svc.Guard, d.Limiter),
	}
}

func depsFromContainer() Deps {
	cfg := container.GetConfig()
	d := Deps{
		Store:  container.GetStore(),
		JWT:    container.GetJWT(),
		Logger: container.GetLogger(),
		Branding: mailtpl.Branding{
			AppName:     cfg.AppName,
			CompanyName: cfg.CompanyName,
			SupportURL:  cfg.SupportURL,
		},
	}
	// a typed nil would make the notifier think publishing is enabled
	if pub := container.GetRabbitPub(); pub != nil {
		d.Publisher = pub
	}
	if rdb := container.GetRedis(); rdb != nil && cfg.RateLimitEnabled {
		d.Limiter = &middleware.Limiter{RDB: rdb, Logger: d.Logger, Prefix: cfg.AppName + ":"}
	}
	return d
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	r.Add(Modules(depsFromContainer())...)
}

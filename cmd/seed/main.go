package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-marketplace/config"
	"github.com/oksasatya/go-course-marketplace/internal/application"
	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	pginfra "github.com/oksasatya/go-course-marketplace/internal/infrastructure/postgres"
	"github.com/oksasatya/go-course-marketplace/pkg/helpers"
)

const demoPassword = "password123"

// seed creates a demo instructor, a demo student and one course through the
// services, so every invariant applies. Re-running it is harmless.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()
	store := pginfra.NewStore(pool)

	sessions := application.NewSessionIssuer(store.Users(), helpers.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL), logger)
	auth := application.NewAuthService(store, sessions, nil, logger)
	courses := application.NewCourseService(store, nil, logger)

	instructor := ensureUser(ctx, auth, logger, application.RegisterInput{
		Name: "Demo Instructor", Email: "instructor@example.com", Password: demoPassword, Role: entity.RoleInstructor,
	})
	student := ensureUser(ctx, auth, logger, application.RegisterInput{
		Name: "Demo Student", Email: "student@example.com", Password: demoPassword, Role: entity.RoleStudent,
	})

	views, err := courses.List(ctx)
	if err != nil {
		log.Fatalf("list courses: %v", err)
	}
	for _, v := range views {
		if v.Course.InstructorID == instructor.UserID {
			logger.WithField("course_id", v.Course.ID).Info("demo course already present")
			return
		}
	}

	lessons := 4
	c, err := courses.Create(ctx, instructor, application.CourseInput{
		Title:         "Go for Backend Developers",
		Description:   "Build HTTP services with gin, pgx and friends.",
		Price:         0,
		Tags:          []string{"go", "backend"},
		DurationLabel: "2h 30m",
		LessonCount:   &lessons,
		Materials: []entity.Material{
			{Name: "Welcome video", Kind: entity.MaterialYouTube, URL: "https://www.youtube.com/watch?v=demo"},
			{Name: "Slides", Kind: entity.MaterialDrive, URL: "https://drive.google.com/file/d/demo"},
		},
	})
	if err != nil {
		log.Fatalf("create course: %v", err)
	}
	if _, err := courses.Enroll(ctx, student, c.ID); err != nil {
		log.Fatalf("enroll: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"course_id": c.ID,
		"password":  demoPassword,
	}).Info("seeded demo instructor, student and course")
}

func ensureUser(ctx context.Context, auth *application.AuthService, logger *logrus.Logger, in application.RegisterInput) *application.Principal {
	sess, err := auth.Register(ctx, in)
	if errors.Is(err, apperr.ErrEmailTaken) {
		sess, err = auth.Login(ctx, in.Email, in.Password)
	}
	if err != nil {
		log.Fatalf("seed %s: %v", in.Email, err)
	}
	logger.WithFields(logrus.Fields{"email": sess.User.Email, "role": sess.User.Role}).Info("seed user ready")
	return &application.Principal{UserID: sess.User.ID, Role: sess.User.Role}
}

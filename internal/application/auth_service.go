package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-course-marketplace/internal/domain/repository"
	"github.com/oksasatya/go-course-marketplace/pkg/helpers"
)

const minPasswordLen = 8

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     entity.Role
}

// AuthService covers registration and login.
type AuthService struct {
	Store    repo.Store
	Sessions *SessionIssuer
	Notifier *Notifier
	Logger   *logrus.Logger
	Now      func() time.Time
}

func NewAuthService(store repo.Store, sessions *SessionIssuer, notifier *Notifier, logger *logrus.Logger) *AuthService {
	return &AuthService{Store: store, Sessions: sessions, Notifier: notifier, Logger: logger, Now: time.Now}
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (in RegisterInput) normalize() (RegisterInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = entity.NormalizeEmail(in.Email)
	switch {
	case in.Name == "":
		return in, apperr.New(apperr.KindInvalidInput, "name is required")
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		return in, apperr.New(apperr.KindInvalidInput, "email must be a valid email")
	case len(in.Password) < minPasswordLen:
		return in, apperr.New(apperr.KindInvalidInput, "password must be at least 8 characters long")
	case !in.Role.Valid():
		return in, apperr.New(apperr.KindInvalidInput, "role must be instructor or student")
	}
	return in, nil
}

// Register creates the user and signs them in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Wrap(apperr.KindInvalidInput, err, "password must be at most 72 bytes")
		}
		return nil, apperr.Wrap(apperr.KindStorageUnavailable, err, "hash password")
	}
	u := &entity.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    s.now(),
	}
	if err := s.Store.Users().Create(ctx, u); err != nil {
		if !errors.Is(err, apperr.ErrEmailTaken) {
			helpers.LogError(s.Logger, "create user failed", err, logrus.Fields{"email": u.Email})
		}
		return nil, err
	}
	sess, err := s.Sessions.issue(u)
	if err != nil {
		return nil, err
	}
	helpers.LogInfo(s.Logger, "user registered", logrus.Fields{"user_id": u.ID, "role": u.Role.String()})
	s.Notifier.Welcome(ctx, u)
	return sess, nil
}

// Login is IssueSession under the service's name.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	sess, err := s.Sessions.IssueSession(ctx, email, password)
	if err != nil {
		if s.Logger != nil && errors.Is(err, apperr.ErrInvalidCredentials) {
			s.Logger.WithField("email", entity.NormalizeEmail(email)).Debug("login rejected")
		}
		return nil, err
	}
	return sess, nil
}

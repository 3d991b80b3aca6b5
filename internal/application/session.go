package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	repo "github.com/oksasatya/go-course-marketplace/internal/domain/repository"
	"github.com/oksasatya/go-course-marketplace/pkg/helpers"
)

// Principal is the authenticated caller derived from a session token.
type Principal struct {
	UserID string
	Role   entity.Role
}

// Session is what a successful login or registration hands back.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *entity.User
}

// SessionIssuer checks credentials and mints/verifies stateless tokens.
type SessionIssuer struct {
	Users  repo.UserRepository
	JWT    *helpers.JWTManager
	Logger *logrus.Logger
}

func NewSessionIssuer(users repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *SessionIssuer {
	return &SessionIssuer{Users: users, JWT: jwt, Logger: logger}
}

func errInvalidCredentials() error {
	return apperr.New(apperr.KindInvalidCredentials, "invalid email or password")
}

// IssueSession authenticates email/password. Unknown email and wrong password
// fail the same way, and both pay for one bcrypt comparison.
func (s *SessionIssuer) IssueSession(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.Users.GetByEmail(ctx, entity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			helpers.CompareDummy(password)
			return nil, errInvalidCredentials()
		}
		return nil, err
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, errInvalidCredentials()
	}
	return s.issue(u)
}

func (s *SessionIssuer) issue(u *entity.User) (*Session, error) {
	tok, exp, err := s.JWT.Generate(u.ID, u.Role.String())
	if err != nil {
		helpers.LogError(s.Logger, "sign session token failed", err, logrus.Fields{"user_id": u.ID})
		return nil, apperr.Wrap(apperr.KindStorageUnavailable, err, "could not issue session")
	}
	return &Session{Token: tok, ExpiresAt: exp, User: u}, nil
}

// ValidateSession verifies signature and expiry only; it never touches storage.
func (s *SessionIssuer) ValidateSession(token string) (Principal, error) {
	claims, err := s.JWT.Parse(token)
	if err != nil {
		if errors.Is(err, helpers.ErrTokenExpired) {
			return Principal{}, apperr.Wrap(apperr.KindExpiredToken, err, "session expired")
		}
		return Principal{}, apperr.Wrap(apperr.KindInvalidToken, err, "invalid session token")
	}
	role := entity.Role(claims.Role)
	if claims.UserID == "" || !role.Valid() {
		return Principal{}, apperr.New(apperr.KindInvalidToken, "invalid session token")
	}
	return Principal{UserID: claims.UserID, Role: role}, nil
}

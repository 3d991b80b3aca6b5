package application

import (
	"fmt"
	"slices"
	"strings"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
)

// Check is a single authorization predicate over an authenticated caller.
type Check func(p *Principal) error

// Authenticated fails for an anonymous caller.
func Authenticated() Check {
	return func(p *Principal) error {
		if p == nil || p.UserID == "" {
			return apperr.New(apperr.KindUnauthorized, "authentication required")
		}
		return nil
	}
}

// RoleIs passes when the caller holds one of roles.
func RoleIs(roles ...entity.Role) Check {
	return func(p *Principal) error {
		switch p.Role {
		case entity.RoleInstructor, entity.RoleStudent:
			if slices.Contains(roles, p.Role) {
				return nil
			}
		default:
			return apperr.New(apperr.KindForbidden, "unknown role")
		}
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = r.String()
		}
		return apperr.New(apperr.KindForbidden, fmt.Sprintf("requires role %s", strings.Join(names, " or ")))
	}
}

// Owns passes when the caller is ownerID.
func Owns(ownerID string) Check {
	return func(p *Principal) error {
		if p.UserID != ownerID {
			return apperr.New(apperr.KindForbidden, "only the course instructor may modify this course")
		}
		return nil
	}
}

// Authorize runs Authenticated and then checks in order, stopping at the
// first failure.
func Authorize(p *Principal, checks ...Check) error {
	if err := Authenticated()(p); err != nil {
		return err
	}
	for _, check := range checks {
		if err := check(p); err != nil {
			return err
		}
	}
	return nil
}

// Guard turns a bearer token into a Principal.
type Guard struct {
	Sessions *SessionIssuer
}

func NewGuard(sessions *SessionIssuer) *Guard {
	return &Guard{Sessions: sessions}
}

// Authenticate fails with Unauthorized for a missing token and wraps the
// InvalidToken/ExpiredToken cause otherwise.
func (g *Guard) Authenticate(token string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "missing bearer token")
	}
	p, err := g.Sessions.ValidateSession(token)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, err, apperr.MessageOf(err))
	}
	return &p, nil
}

package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-course-marketplace/internal/application"
	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-course-marketplace/pkg/response"
)

const (
	CtxPrincipalKey = "principal"
	CtxUserIDKey    = "userID"
)

// Authenticator resolves a bearer token to a caller.
type Authenticator interface {
	Authenticate(token string) (*application.Principal, error)
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(tok)
}

// Auth rejects the request with 401 unless it carries a valid bearer token.
// On success the Principal and its user id are stored in the Gin context.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.Authenticate(bearerToken(c))
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, apperr.MessageOf(err), gin.H{"code": causeKind(err)})
			return
		}
		c.Set(CtxPrincipalKey, p)
		c.Set(CtxUserIDKey, p.UserID)
		c.Next()
	}
}

// causeKind reports expired/invalid token causes instead of the generic
// unauthorized wrapper so clients know whether to re-login.
func causeKind(err error) apperr.Kind {
	switch {
	case errors.Is(err, apperr.ErrExpiredToken):
		return apperr.KindExpiredToken
	case errors.Is(err, apperr.ErrInvalidToken):
		return apperr.KindInvalidToken
	default:
		return apperr.KindUnauthorized
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := application.Authorize(PrincipalFrom(c), application.RoleIs(roles...)); err != nil {
			status := http.StatusForbidden
			if apperr.KindOf(err) == apperr.KindUnauthorized {
				status = http.StatusUnauthorized
			}
			response.Error[any](c, status, apperr.MessageOf(err), gin.H{"code": apperr.KindOf(err)})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the caller set by Auth, or nil.
func PrincipalFrom(c *gin.Context) *application.Principal {
	v, ok := c.Get(CtxPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*application.Principal)
	return p
}

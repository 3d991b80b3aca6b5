package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
)

func TestSessionIssuer_IssueAndValidate(t *testing.T) {
	e := newEnv(t)
	p := e.register(t, "Ines", "ines@example.com", entity.RoleInstructor)

	sess, err := e.sessions.IssueSession(context.Background(), "  INES@Example.com ", "password123")
	require.NoError(t, err)
	assert.Equal(t, epoch.Add(time.Hour), sess.ExpiresAt)
	assert.Equal(t, p.UserID, sess.User.ID)

	got, err := e.sessions.ValidateSession(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: p.UserID, Role: entity.RoleInstructor}, got)
}

func TestSessionIssuer_UniformCredentialFailure(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Sam", "sam@example.com", entity.RoleStudent)
	ctx := context.Background()

	_, wrongPw := e.sessions.IssueSession(ctx, "sam@example.com", "nope-nope")
	_, unknown := e.sessions.IssueSession(ctx, "ghost@example.com", "password123")

	assert.ErrorIs(t, wrongPw, apperr.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, apperr.ErrInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestSessionIssuer_Expiry(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Sam", "sam@example.com", entity.RoleStudent)
	sess, err := e.sessions.IssueSession(context.Background(), "sam@example.com", "password123")
	require.NoError(t, err)

	e.jwt.Now = func() time.Time { return epoch.Add(time.Hour - time.Second) }
	_, err = e.sessions.ValidateSession(sess.Token)
	assert.NoError(t, err)

	e.jwt.Now = func() time.Time { return epoch.Add(time.Hour + time.Second) }
	_, err = e.sessions.ValidateSession(sess.Token)
	assert.ErrorIs(t, err, apperr.ErrExpiredToken)
}

func TestSessionIssuer_MalformedTokens(t *testing.T) {
	e := newEnv(t)
	for _, tok := range []string{"", "abc", "a.b.c", "eyJhbGciOiJIUzI1NiJ9..", "\x00\xff"} {
		_, err := e.sessions.ValidateSession(tok)
		assert.ErrorIs(t, err, apperr.ErrInvalidToken, "token %q", tok)
	}
}

func TestSessionIssuer_UnknownRoleClaim(t *testing.T) {
	e := newEnv(t)
	tok, _, err := e.jwt.Generate("u1", "admin")
	require.NoError(t, err)

	_, err = e.sessions.ValidateSession(tok)
	assert.ErrorIs(t, err, apperr.ErrInvalidToken)
}

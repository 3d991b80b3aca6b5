package application

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-course-marketplace/internal/domain/apperr"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-course-marketplace/pkg/mailer"
)

func TestAuthService_Register(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sess, err := e.auth.Register(ctx, RegisterInput{Name: " Ana ", Email: " Ana@Example.COM", Password: "password123", Role: entity.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "Ana", sess.User.Name)
	assert.Equal(t, "ana@example.com", sess.User.Email)
	assert.NotEqual(t, "password123", sess.User.PasswordHash)
	assert.NotEmpty(t, sess.Token)

	require.Equal(t, 1, e.pub.count())
	job := e.pub.jobs[0].(mailer.EmailJob)
	assert.Equal(t, "welcome", job.Template)
	assert.Equal(t, "ana@example.com", job.To)

	_, err = e.auth.Register(ctx, RegisterInput{Name: "Other", Email: "ANA@example.com", Password: "password123", Role: entity.RoleInstructor})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
	assert.Equal(t, 1, e.pub.count())
}

func TestAuthService_RegisterInvalid(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	valid := RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "password123", Role: entity.RoleStudent}

	cases := map[string]func(in *RegisterInput){
		"blank name":     func(in *RegisterInput) { in.Name = "  " },
		"bad email":      func(in *RegisterInput) { in.Email = "ana" },
		"short password": func(in *RegisterInput) { in.Password = "short" },
		"long password":  func(in *RegisterInput) { in.Password = strings.Repeat("x", 80) },
		"bad role":       func(in *RegisterInput) { in.Role = "admin" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			mutate(&in)
			_, err := e.auth.Register(ctx, in)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	e := newEnv(t)
	e.register(t, "Ana", "ana@example.com", entity.RoleStudent)

	sess, err := e.auth.Login(context.Background(), "ANA@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStudent, sess.User.Role)

	_, err = e.auth.Login(context.Background(), "ana@example.com", "password124")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

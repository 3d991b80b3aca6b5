package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-course-marketplace/internal/infrastructure/memory"
	"github.com/oksasatya/go-course-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-course-marketplace/pkg/helpers"
	"github.com/oksasatya/go-course-marketplace/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	helpers.PasswordCost = bcrypt.MinCost
	validation.Init()
	os.Exit(m.Run())
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type api struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T) *api {
	t.Helper()
	engine := gin.New()
	require.NoError(t, middleware.TrustProxies(engine, nil, ""))
	engine.Use(middleware.RequestIDMiddleware())
	reg := NewRegistry(engine, "")
	reg.Use(middleware.RealIP())
	reg.Add(Modules(Deps{
		Store:  memory.NewStore(),
		JWT:    helpers.NewJWTManager("router-secret", time.Hour),
		Logger: helpers.NewDiscardLogger(),
	})...)
	reg.RegisterAll()
	return &api{t: t, engine: engine}
}

func (a *api) call(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(a.t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

type session struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Token string `json:"token"`
}

func (a *api) register(name, email, role string) session {
	a.t.Helper()
	code, env := a.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "password123", "role": role,
	})
	require.Equal(a.t, http.StatusCreated, code, env.Message)
	var s session
	require.NoError(a.t, json.Unmarshal(env.Data, &s))
	return s
}

type course struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Price              float64  `json:"price"`
	LessonCount        int      `json:"lesson_count"`
	Tags               []string `json:"tags"`
	EnrolledCount      int      `json:"enrolled_count"`
	EnrolledStudentIDs []string `json:"enrolled_student_ids"`
	IsEnrolled         *bool    `json:"is_enrolled"`
	Instructor         *struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"instructor"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	if len(raw) == 0 { // omitted by the envelope when empty
		return v
	}
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestAuthRoutes(t *testing.T) {
	a := newAPI(t)
	s := a.register("Ana", "Ana@Example.com", "Student")
	assert.Equal(t, "ana@example.com", s.Email)
	assert.Equal(t, "student", s.Role)
	assert.NotEmpty(t, s.Token)

	code, env := a.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Other", "email": "ANA@example.com", "password": "password123", "role": "instructor",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "email_taken", env.Error.Code)

	code, env = a.call(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "X", "email": "not-an-email", "password": "short", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_input", env.Error.Code)
	assert.Contains(t, env.Error.Details, "email")
	assert.Contains(t, env.Error.Details, "password")
	assert.Contains(t, env.Error.Details, "role")

	code, env = a.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@EXAMPLE.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, s.ID, decode[session](t, env.Data).ID)

	code, env = a.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid_credentials", env.Error.Code)

	code, _ = a.call(http.MethodPost, "/api/auth/login", "", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, code)

	for _, body := range []gin.H{
		{"email": "not-an-email", "password": "password123"},
		{"email": "ana@example.com"},
		{},
	} {
		code, env = a.call(http.MethodPost, "/api/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, code, body)
		assert.Equal(t, "invalid_credentials", env.Error.Code, body)
	}
}

func TestCourseRoutes(t *testing.T) {
	a := newAPI(t)
	ines := a.register("Ines", "ines@example.com", "instructor")
	omar := a.register("Omar", "omar@example.com", "instructor")
	sam := a.register("Sam", "sam@example.com", "student")

	code, _ := a.call(http.MethodPost, "/api/courses", "", gin.H{"title": "Go"})
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = a.call(http.MethodPost, "/api/courses", sam.Token, gin.H{"title": "Go"})
	assert.Equal(t, http.StatusForbidden, code)
	code, env := a.call(http.MethodPost, "/api/courses", ines.Token, gin.H{"title": "Go", "price": -3})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Details, "price")
	code, env = a.call(http.MethodPost, "/api/courses", ines.Token, `{"title":"Go","price":"free"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "must be a number", env.Error.Details["price"])

	code, env = a.call(http.MethodPost, "/api/courses", ines.Token, gin.H{
		"title": "Go", "lesson_count": 4, "tags": []string{"go", "go"},
		"materials": []gin.H{{"name": "intro", "kind": "youtube", "url": "https://youtu.be/x"}},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	created := decode[course](t, env.Data)
	assert.Equal(t, 4, created.LessonCount)
	assert.Zero(t, created.Price)
	assert.Equal(t, []string{"go", "go"}, created.Tags)

	code, env = a.call(http.MethodPost, "/api/courses/"+created.ID+"/enroll", sam.Token, nil)
	require.Equal(t, http.StatusOK, code, env.Message)
	enrolled := decode[course](t, env.Data)
	require.NotNil(t, enrolled.IsEnrolled)
	assert.True(t, *enrolled.IsEnrolled)
	assert.Empty(t, enrolled.EnrolledStudentIDs, "roster is only shown to the owner")

	code, env = a.call(http.MethodPost, "/api/courses/"+created.ID+"/enroll", sam.Token, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "already_enrolled", env.Error.Code)

	code, _ = a.call(http.MethodPost, "/api/courses/nope/enroll", sam.Token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.call(http.MethodPut, "/api/courses/"+created.ID, omar.Token, gin.H{"title": "Mine"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.call(http.MethodDelete, "/api/courses/"+created.ID, omar.Token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = a.call(http.MethodPut, "/api/courses/missing", ines.Token, gin.H{"title": "x"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = a.call(http.MethodPut, "/api/courses/"+created.ID, ines.Token, gin.H{
		"materials": []gin.H{{"name": "", "kind": "file"}},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, env.Error.Details, "materials[0].name")
	code, env = a.call(http.MethodPut, "/api/courses/"+created.ID, ines.Token, gin.H{"price": 9.999})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_input", env.Error.Code)

	code, env = a.call(http.MethodPut, "/api/courses/"+created.ID, ines.Token, gin.H{"price": 19.99})
	require.Equal(t, http.StatusOK, code, env.Message)
	updated := decode[course](t, env.Data)
	assert.Equal(t, "Go", updated.Title)
	assert.Equal(t, 19.99, updated.Price)
	assert.Equal(t, []string{sam.ID}, updated.EnrolledStudentIDs)

	code, env = a.call(http.MethodGet, "/api/courses", "", nil)
	require.Equal(t, http.StatusOK, code)
	list := decode[[]course](t, env.Data)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Instructor)
	assert.Equal(t, "ines@example.com", list[0].Instructor.Email)
	assert.Equal(t, 1, list[0].EnrolledCount)
	assert.Empty(t, list[0].EnrolledStudentIDs)

	code, _ = a.call(http.MethodDelete, "/api/courses/"+created.ID, ines.Token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.call(http.MethodDelete, "/api/courses/"+created.ID, ines.Token, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDeleteAccountRoute(t *testing.T) {
	a := newAPI(t)
	ines := a.register("Ines", "ines@example.com", "instructor")
	sam := a.register("Sam", "sam@example.com", "student")
	code, env := a.call(http.MethodPost, "/api/courses", ines.Token, gin.H{"title": "Go"})
	require.Equal(t, http.StatusCreated, code)
	c := decode[course](t, env.Data)
	code, _ = a.call(http.MethodPost, "/api/courses/"+c.ID+"/enroll", sam.Token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.call(http.MethodDelete, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = a.call(http.MethodDelete, "/api/auth/me", ines.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	_, env = a.call(http.MethodGet, "/api/courses", "", nil)
	assert.Empty(t, decode[[]course](t, env.Data))

	code, _ = a.call(http.MethodDelete, "/api/auth/me", ines.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, code, "a token for a deleted account no longer works")

	code, _ = a.call(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ines@example.com", "password": "password123"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestHealthRoute(t *testing.T) {
	a := newAPI(t)
	code, env := a.call(http.MethodGet, "/api/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

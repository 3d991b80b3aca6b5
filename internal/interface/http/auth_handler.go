package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-course-marketplace/internal/application"
	"github.com/oksasatya/go-course-marketplace/internal/domain/entity"
	"github.com/oksasatya/go-course-marketplace/internal/interface/middleware"
	"github.com/oksasatya/go-course-marketplace/pkg/response"
)

type AuthHandler struct {
	Auth     *application.AuthService
	Accounts *application.AccountService
	Logger   *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, accounts *application.AccountService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Accounts: accounts, Logger: logger}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"required,role"`
}

// loginRequest carries no field rules: any bad pair is reported as
// invalid credentials.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toSessionResponse(s *application.Session) sessionResponse {
	return sessionResponse{
		ID:        s.User.ID,
		Name:      s.User.Name,
		Email:     s.User.Email,
		Role:      s.User.Role.String(),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	role, err := entity.ParseRole(req.Role)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	sess, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toSessionResponse(sess), "registered", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toSessionResponse(sess), "login successful", nil)
}

// DeleteMe DELETE /api/auth/me
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	if err := h.Accounts.DeleteAccount(c.Request.Context(), middleware.PrincipalFrom(c)); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "account deleted", nil)
}

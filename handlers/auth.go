package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gotodo/todo-service/internal/models"
	"github.com/gotodo/todo-service/pkg/apperrors"
	"github.com/gotodo/todo-service/pkg/logger"
	"github.com/gotodo/todo-service/pkg/metrics"
)

// Credentials is the body of both /auth/register and /auth/login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned after a successful register or login.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// AccountService is the part of the credential store the handlers need.
type AccountService interface {
	Register(ctx context.Context, username, password string) (*models.Account, error)
	Authenticate(ctx context.Context, username, password string) (*models.Account, error)
}

// TokenIssuer signs access tokens for an account.
type TokenIssuer interface {
	Issue(a *models.Account) (string, error)
}

// AuthHandler holds dependencies
type AuthHandler struct {
	accounts AccountService
	issuer   TokenIssuer
}

func NewAuthHandler(accounts AccountService, issuer TokenIssuer) *AuthHandler {
	return &AuthHandler{accounts: accounts, issuer: issuer}
}

// RegisterRoutes mounts the handlers under /auth. mw runs before every auth route.
func (h *AuthHandler) RegisterRoutes(rg gin.IRouter, mw ...gin.HandlerFunc) {
	a := rg.Group("/auth", mw...)
	a.POST("/register", h.Register)
	a.POST("/login", h.Login)
}

// Register creates an account and returns a token for it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AuthAttempts.WithLabelValues("register", "invalid").Inc()
		respondError(c, errInvalidBody)
		return
	}
	a, err := h.accounts.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("register", outcome(err)).Inc()
		respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, "register", a)
}

// Login verifies credentials and returns a fresh token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		respondError(c, errInvalidBody)
		return
	}
	a, err := h.accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues("login", outcome(err)).Inc()
		respondError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, "login", a)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, action string, a *models.Account) {
	token, err := h.issuer.Issue(a)
	if err != nil {
		metrics.AuthAttempts.WithLabelValues(action, "error").Inc()
		respondError(c, apperrors.Internal(err))
		return
	}
	metrics.AuthAttempts.WithLabelValues(action, "success").Inc()
	logger.Debugf("auth: %s succeeded for user %s", action, a.ID)
	c.JSON(status, AuthResponse{Token: token, UserID: a.ID, Username: a.Username})
}

// outcome buckets service errors into a small label set.
func outcome(err error) string {
	switch apperrors.From(err).Code {
	case apperrors.CodeValidation:
		return "invalid"
	case apperrors.CodeDuplicateIdentity:
		return "duplicate"
	case apperrors.CodeInvalidCredentials:
		return "rejected"
	default:
		return "error"
	}
}

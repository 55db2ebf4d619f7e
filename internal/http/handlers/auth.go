package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/corvid89/taskhub/internal/auth"
	"github.com/corvid89/taskhub/internal/config"
	"github.com/corvid89/taskhub/internal/domain/user"
	"github.com/corvid89/taskhub/internal/http/middlewares"
	"github.com/corvid89/taskhub/internal/repo/postgres"
	"github.com/corvid89/taskhub/internal/security"
	"github.com/gin-gonic/gin"
)

type UsersRepository interface {
	Create(ctx context.Context, name, email, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthHandler struct {
	users UsersRepository
	jwt   *auth.Manager
}

func NewAuthHandler(users UsersRepository, jwtManager *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwtManager,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Server error during registration")
		return
	}

	u, err := h.users.Create(cctx, req.Name, req.Email, hash)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			RespondValidation(ctx, "Email is already in use", []FieldError{
				{Field: "email", Message: "is already registered"},
			})
			return
		}

		RespondInternal(ctx, "Server error during registration")
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, u.Email)

	if err != nil {
		RespondInternal(ctx, "Server error during registration")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user":    u,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		// unknown email and wrong password answer identically
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(foundUser.ID, foundUser.Email)

	if err != nil {
		RespondInternal(ctx, "Server error during login")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    foundUser,
	})
}

func (h *AuthHandler) Profile(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authorized, authentication failed")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    u,
	})
}

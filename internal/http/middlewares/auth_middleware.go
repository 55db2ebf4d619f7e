package middlewares

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/corvid89/taskhub/internal/auth"
	"github.com/corvid89/taskhub/internal/config"
	"github.com/corvid89/taskhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserGetter
}

func NewAuthMiddleware(jwt TokenVerifier, users UserGetter) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// RequireAuth resolves the bearer token to a live user record and stashes it
// on the context. A valid token whose subject no longer exists is rejected
// the same way as a missing or bad token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthenticated(c)
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthenticated(c)
			return
		}

		claims, err := m.jwt.VerifyToken(raw)
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		u, err := m.users.GetByID(cctx, claims.UserID)
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		SetUser(c, u)

		c.Next()
	}
}

// SetUser attaches the authenticated user to the request context. Exposed
// so handler tests can skip the token round trip.
func SetUser(c *gin.Context, u user.User) {
	c.Set(ctxUserKey, u)
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"message": "Not authorized, authentication failed",
	})
}

// Helpers so handlers don't need to know the magic keys.

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

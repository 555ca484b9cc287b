package httpserver

import (
	"context"
	"net/http"
	"strings"

	"garud-store/internal/domain"
	"github.com/gin-gonic/gin"
)

type ctxKey string

const (
	userCtxKey  ctxKey = "user"
	tokenCtxKey ctxKey = "token"
)

// authMiddleware resolves the bearer token to a user and stores both in the
// request context. Requests without a valid token stop with 401.
func authMiddleware(accounts accountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure("unauthorized"))
			return
		}
		user, err := accounts.LookupByToken(c.Request.Context(), token)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, failure("unauthorized"))
			return
		}
		ctx := context.WithValue(c.Request.Context(), userCtxKey, user)
		ctx = context.WithValue(ctx, tokenCtxKey, token)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireAdmin must run after authMiddleware.
func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userFromContext(c.Request.Context())
		if !ok || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, failure("forbidden"))
			return
		}
		c.Next()
	}
}

func userFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*domain.User)
	return u, ok
}

func tokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(tokenCtxKey).(string)
	return t
}

func bearerToken(header string) string {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simplelender/backend/internal/apperror"
	"github.com/simplelender/backend/internal/db"
)

type UserResolver interface {
	ResolveCurrentUser(ctx context.Context, token string) (*db.User, error)
}

// RequireAuth resolves the Authorization bearer token to a stored user.
func RequireAuth(resolver UserResolver) gin.HandlerFunc {
	return requireAuth(resolver, false)
}

// RequireAuthForUpgrade also accepts a token query parameter, since browsers
// cannot set headers on websocket upgrades. Use it only on the upgrade route.
func RequireAuthForUpgrade(resolver UserResolver) gin.HandlerFunc {
	return requireAuth(resolver, true)
}

func requireAuth(resolver UserResolver, allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" && allowQueryToken {
			token = strings.TrimSpace(c.Query("token"))
		}

		user, err := resolver.ResolveCurrentUser(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			code, message := "unauthorized", "Could not validate credentials"
			if e := apperror.From(err); e != nil {
				code, message = e.Code, e.Message
				if e.Kind == apperror.KindInternal {
					status = http.StatusInternalServerError
				}
			}
			c.AbortWithStatusJSON(status, gin.H{"status": status, "message": message, "error": code})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user_email", user.Email)
		c.Set("user", user)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefront-chat/internal/services"
	"storefront-chat/internal/transport/httpdto"
	"storefront-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthMiddleware resolves the bearer token to an Identity. Websocket
// clients can pass the token as a query parameter instead, since browsers
// cannot set headers on websocket dials.
func AuthMiddleware(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearer(c)
		if token == "" {
			token = c.Query("token")
		}

		identity, err := auth.ParseToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		ctx := context.WithValue(c.Request.Context(), logger.UserKey, identity.Email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AdminOnly rejects non-admin identities. Must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := IdentityFrom(c)
		if !ok || !identity.IsAdmin {
			c.JSON(http.StatusForbidden, httpdto.NewErrorResponse("forbidden", "FORBIDDEN"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (services.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return services.Identity{}, false
	}
	identity, ok := v.(services.Identity)
	return identity, ok
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

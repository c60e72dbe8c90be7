package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	chat "go-roomcast/internal/pkg/chat/domain"

	authport "go-roomcast/internal/infrastructure/auth/port"
)

const identityContextKey = "identity"

// RequireAuth validates the Bearer token and stores the resolved identity in
// the request context.
func RequireAuth(auth authport.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		identity, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// IdentityFrom returns the authenticated identity stored by RequireAuth.
func IdentityFrom(c *gin.Context) (chat.Identity, bool) {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return chat.Identity{}, false
	}
	identity, ok := v.(chat.Identity)
	return identity, ok
}

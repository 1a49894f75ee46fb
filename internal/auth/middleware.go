package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Daya1222/Real-time-chat-app/internal/model"
)

const identityKey = "identity"

// Authorize rejects requests without a valid Bearer token and stores the
// verified identity on the gin context.
func Authorize(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "No token provided"})
			return
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "token malformed"})
			return
		}

		identity, err := verifier.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// AdminOnly allows only identities carrying the admin role. Must run after
// Authorize.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if identity == nil || identity.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity stored by Authorize, or nil.
func IdentityFrom(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, ok := v.(*Identity)
	if !ok {
		return nil
	}
	return identity
}

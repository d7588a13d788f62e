package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Token exposes the claims of a verified bearer token.
type Token interface {
	Claims(v interface{}) error
}

// Verifier checks a raw bearer token and returns it in verified form.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// RevocationCheck reports whether a bearer token has been revoked. The
// composition root wires it to the session blacklist; when nil, revocation
// is not checked.
var RevocationCheck func(ctx context.Context, token string) (bool, error)

// AuthMiddleware rejects requests without a valid Bearer token and stores the
// verified claims in the context under the "claims" key.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		if RevocationCheck != nil {
			revoked, err := RevocationCheck(c.Request.Context(), token)
			if err == nil && revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
				return
			}
		}

		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

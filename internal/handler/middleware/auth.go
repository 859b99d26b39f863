package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	jwtpkg "dynqr/redirector/pkg/jwt"
	"dynqr/redirector/pkg/response"
)

const ContextKeyOwnerClaims = "owner_claims"

// JWTAuth accepts bearer access tokens whose subject is the owner id.
func JWTAuth(jwtManager *jwtpkg.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization format")
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		if _, err := claims.OwnerID(); err != nil {
			response.Unauthorized(c, "invalid owner id")
			c.Abort()
			return
		}

		c.Set(ContextKeyOwnerClaims, claims)
		c.Next()
	}
}

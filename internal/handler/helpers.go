package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"dynqr/redirector/internal/handler/middleware"
	jwtpkg "dynqr/redirector/pkg/jwt"
)

func getOwnerIDFromContext(c *gin.Context) (uuid.UUID, error) {
	claimsVal, exists := c.Get(middleware.ContextKeyOwnerClaims)
	if !exists {
		return uuid.Nil, ErrNoClaims
	}
	claims, ok := claimsVal.(*jwtpkg.Claims)
	if !ok {
		return uuid.Nil, ErrNoClaims
	}
	return claims.OwnerID()
}

var ErrNoClaims = errors.New("claims not found in context")

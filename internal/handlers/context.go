package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	iauth "github.com/talenthr/talenthr/internal/auth"
	"github.com/talenthr/talenthr/internal/middleware"
	"github.com/talenthr/talenthr/internal/services"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// currentClaims returns the JWT claims placed in context by the auth middleware.
func currentClaims(c *gin.Context) (*iauth.Claims, bool) {
	v, ok := c.Get(middleware.CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*iauth.Claims)
	return claims, ok
}

// currentActor derives the service-layer actor from the authenticated claims.
func currentActor(c *gin.Context) (services.Actor, bool) {
	claims, ok := currentClaims(c)
	if !ok {
		return services.Actor{}, false
	}
	return services.Actor{
		UserID:    claims.UserID,
		CompanyID: claims.CompanyID,
		Role:      claims.Role,
	}, true
}

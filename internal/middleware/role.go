package middleware

import (
	"github.com/gin-gonic/gin"

	iauth "github.com/talenthr/talenthr/internal/auth"
	"github.com/talenthr/talenthr/internal/models"
	"github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/metrics"
	"github.com/talenthr/talenthr/pkg/response"
)

// RequireRole gates a route to the listed roles. It must run after Auth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		v, ok := c.Get(CtxClaimsKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims, ok := v.(*iauth.Claims)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			metrics.RoleChecks.WithLabelValues("denied").Inc()
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		metrics.RoleChecks.WithLabelValues("allowed").Inc()
		c.Next()
	}
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/talenthr/talenthr/internal/auth"
	"github.com/talenthr/talenthr/pkg/errors"
	"github.com/talenthr/talenthr/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxUserIDKey    = "userID"
	CtxSessionIDKey = "sessionID"
	CtxCompanyIDKey = "companyID"
	CtxRoleKey      = "role"
)

// Auth authenticates requests from the access token cookie. Browsers never
// send a bearer header; the HttpOnly cookie is the only token transport.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(iauth.AccessTokenCookie)
		if err != nil || strings.TrimSpace(token) == "" {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			// Normalise all validation failures to 401
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxCompanyIDKey, claims.CompanyID)
		c.Set(CtxRoleKey, string(claims.Role))
		if claims.SessionID != "" {
			c.Set(CtxSessionIDKey, claims.SessionID)
		}

		c.Next()
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	iauth "github.com/talenthr/talenthr/internal/auth"
	"github.com/talenthr/talenthr/internal/models"
)

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "secret",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/admin-only",
		Auth(jwtSvc),
		RequireRole(models.RoleAdmin, models.RoleHRManager),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	request := func(role models.Role) int {
		token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{
			UserID: "user-123",
			Role:   role,
		})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
		req.AddCookie(&http.Cookie{Name: iauth.AccessTokenCookie, Value: token})
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, request(models.RoleAdmin))
	require.Equal(t, http.StatusOK, request(models.RoleHRManager))
	require.Equal(t, http.StatusForbidden, request(models.RoleEmployee))
	require.Equal(t, http.StatusForbidden, request(models.RoleManager))

	// Unauthenticated requests never reach the role gate.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

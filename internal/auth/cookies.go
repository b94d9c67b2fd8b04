package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// AccessTokenCookie carries the short-lived JWT on every API request.
	AccessTokenCookie = "accessToken"
	// RefreshTokenCookie carries the renewal credential; scoped to the refresh path.
	RefreshTokenCookie = "refreshToken"

	refreshCookiePath = "/api/auth"
)

// CookieWriter issues and clears the authentication cookie pair. Browser
// clients never see tokens outside these HttpOnly cookies.
type CookieWriter struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Write sets both cookies for the supplied token pair.
func (w CookieWriter) Write(c *gin.Context, pair TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, pair.AccessToken, int(w.AccessTTL.Seconds()), "/", "", w.Secure, true)
	c.SetCookie(RefreshTokenCookie, pair.RefreshToken, int(w.RefreshTTL.Seconds()), refreshCookiePath, "", w.Secure, true)
}

// Clear removes both cookies; used on logout and on any refresh failure.
func (w CookieWriter) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", w.Secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, refreshCookiePath, "", w.Secure, true)
}

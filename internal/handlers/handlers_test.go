package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/talenthr/talenthr/internal/auth"
	"github.com/talenthr/talenthr/internal/database/testutil"
	"github.com/talenthr/talenthr/internal/middleware"
	"github.com/talenthr/talenthr/internal/services"
)

// testEnv bundles a wired router plus the services behind it so tests can
// reach into state directly when needed.
type testEnv struct {
	db        *gorm.DB
	router    *gin.Engine
	jwt       *iauth.JWTService
	sessions  *iauth.SessionService
	companies *services.CompanyService
	users     *services.UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "handler-test-secret",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)

	sessions, err := iauth.NewSessionService(db, jwtSvc, iauth.SessionConfig{})
	require.NoError(t, err)

	credentials, err := iauth.NewCredentialService(db, iauth.CredentialConfig{})
	require.NoError(t, err)

	companies, err := services.NewCompanyService(db)
	require.NoError(t, err)

	users, err := services.NewUserService(db, sessions)
	require.NoError(t, err)

	attendance, err := services.NewAttendanceService(db, companies)
	require.NoError(t, err)

	cookies := iauth.CookieWriter{
		AccessTTL:  jwtSvc.AccessTokenTTL(),
		RefreshTTL: sessions.RefreshTokenTTL(),
	}

	authHandler := NewAuthHandler(credentials, sessions, companies, users, cookies)
	attendanceHandler := NewAttendanceHandler(attendance)

	r := gin.New()
	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)
	r.POST("/api/auth/refresh", authHandler.Refresh)
	r.POST("/api/auth/logout", middleware.Auth(jwtSvc), authHandler.Logout)
	r.GET("/api/auth/me", middleware.Auth(jwtSvc), authHandler.Me)
	r.POST("/api/attendance/clock-in", middleware.Auth(jwtSvc), attendanceHandler.ClockIn)
	r.POST("/api/attendance/clock-out", middleware.Auth(jwtSvc), attendanceHandler.ClockOut)

	return &testEnv{
		db:        db,
		router:    r,
		jwt:       jwtSvc,
		sessions:  sessions,
		companies: companies,
		users:     users,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func cookieByName(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %s not present in response", name)
	return nil
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

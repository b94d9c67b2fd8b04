package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	iauth "github.com/talenthr/talenthr/internal/auth"
)

func TestClockInTwiceConflicts(t *testing.T) {
	env := newTestEnv(t)
	registerCompany(t, env, "admin@acme.test")

	login := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "admin@acme.test",
		"password": "sup3r-secret",
	})
	require.Equal(t, http.StatusOK, login.Code)
	access := cookieByName(t, login, iauth.AccessTokenCookie)
	session := &http.Cookie{Name: iauth.AccessTokenCookie, Value: access.Value}

	first := env.do(t, http.MethodPost, "/api/attendance/clock-in", nil, session)
	require.Equal(t, http.StatusCreated, first.Code)

	second := env.do(t, http.MethodPost, "/api/attendance/clock-in", nil, session)
	require.Equal(t, http.StatusConflict, second.Code)

	out := env.do(t, http.MethodPost, "/api/attendance/clock-out", nil, session)
	require.Equal(t, http.StatusOK, out.Code)

	payload := decodeBody(t, out)
	require.Equal(t, true, payload["success"])
}

func TestClockOutWithoutClockIn(t *testing.T) {
	env := newTestEnv(t)
	registerCompany(t, env, "admin@acme.test")

	login := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "admin@acme.test",
		"password": "sup3r-secret",
	})
	access := cookieByName(t, login, iauth.AccessTokenCookie)

	w := env.do(t, http.MethodPost, "/api/attendance/clock-out", nil, &http.Cookie{
		Name:  iauth.AccessTokenCookie,
		Value: access.Value,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

package routes

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendas-backend/models"
)

func TestRegisterIssuesTokenPair(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodPost, "/auth/register", map[string]string{
		"username":   "ana",
		"password":   "s3cret-pass",
		"email":      "ana@example.com",
		"first_name": "Ana",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "s3cret-pass")
	assert.NotContains(t, w.Body.String(), `"password"`)

	got := decode[authPayload](t, w)
	assert.NotEmpty(t, got.Access)
	assert.NotEmpty(t, got.Refresh)
	assert.Equal(t, "ana", got.User.Username)
	assert.Equal(t, models.RoleSeller, got.User.Role)

	var stored models.User
	require.NoError(t, s.db.First(&stored, "username = ?", "ana").Error)
	assert.NotEqual(t, "s3cret-pass", stored.Password)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	s := newTestServer(t, false)
	s.register("ana")

	w := s.do(http.MethodPost, "/auth/register", map[string]string{
		"username": "ana",
		"password": "another-pass",
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NotContains(t, w.Body.String(), "access")
	assert.NotContains(t, w.Body.String(), "refresh")

	var count int64
	s.db.Model(&models.User{}).Where("username = ?", "ana").Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRegisterMissingCredentials(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(http.MethodPost, "/auth/register", map[string]string{"username": "ana"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/auth/register", map[string]string{"password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, false)
	s.register("bruno")

	w := s.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "bruno",
		"password": "s3cret-pass",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[authPayload](t, w)
	assert.NotEmpty(t, got.Access)
	assert.NotEmpty(t, got.Refresh)

	var user models.User
	require.NoError(t, s.db.First(&user, "username = ?", "bruno").Error)
	assert.NotNil(t, user.LastLogin)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t, false)
	s.register("bruno")

	w := s.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "bruno",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotContains(t, w.Body.String(), "access")

	w = s.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "nobody",
		"password": "s3cret-pass",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/auth/login", map[string]string{"username": "bruno"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	s := newTestServer(t, false)
	s.register("carla")
	require.NoError(t, s.db.Model(&models.User{}).Where("username = ?", "carla").Update("is_active", false).Error)

	w := s.do(http.MethodPost, "/auth/login", map[string]string{
		"username": "carla",
		"password": "s3cret-pass",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPIRequiresAccessToken(t *testing.T) {
	s := newTestServer(t, false)
	pair := s.register("ana")

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/clients", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/clients", nil, "garbage").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/clients", nil, pair.Refresh).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/clients", nil, pair.Access).Code)
}

func TestMe(t *testing.T) {
	s := newTestServer(t, false)
	pair := s.register("ana")

	w := s.do(http.MethodGet, "/auth/me", nil, pair.Access)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.User](t, w)
	assert.Equal(t, "ana", me.Username)
}

func TestRefreshRotatesAndRevokes(t *testing.T) {
	s := newTestServer(t, false)
	pair := s.register("ana")

	w := s.do(http.MethodPost, "/auth/refresh", map[string]string{"refresh": pair.Refresh}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := decode[authPayload](t, w)
	assert.NotEqual(t, pair.Refresh, rotated.Refresh)

	// the old refresh token was revoked by the rotation
	w = s.do(http.MethodPost, "/auth/refresh", map[string]string{"refresh": pair.Refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// access tokens are not accepted as refresh tokens
	w = s.do(http.MethodPost, "/auth/refresh", map[string]string{"refresh": rotated.Access}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	s := newTestServer(t, false)
	pair := s.register("ana")

	w := s.do(http.MethodPost, "/auth/logout", map[string]string{"refresh": pair.Refresh}, pair.Access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/auth/refresh", map[string]string{"refresh": pair.Refresh}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRejectsAnotherUsersToken(t *testing.T) {
	s := newTestServer(t, false)
	ana := s.register("ana")
	bruno := s.register("bruno")

	w := s.do(http.MethodPost, "/auth/logout", map[string]string{"refresh": bruno.Refresh}, ana.Access)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLivenessEndpoints(t *testing.T) {
	s := newTestServer(t, false)

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/health", nil, "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/auth/test", nil, "").Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/auth/test", nil, "").Code)

	w := s.do(http.MethodGet, "/metrics", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

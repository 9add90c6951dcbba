package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vendas-backend/config"
	"vendas-backend/services"
	"vendas-backend/utils"
)

type fakeStorage struct {
	keys []string
	body []byte
}

func (f *fakeStorage) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	f.body = data
	return "https://files.example.com/" + key, nil
}

func (f *fakeStorage) Delete(_ context.Context, _ string) error { return nil }

type testServer struct {
	t       *testing.T
	db      *gorm.DB
	router  *gin.Engine
	storage *fakeStorage
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	config.DB = db
	return db
}

func newTestServer(t *testing.T, withStorage bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.BcryptCost = bcrypt.MinCost
	utils.ConfigureJWT(utils.JWTSettings{Secret: "test-secret", Issuer: "vendas-test"})

	db := setupTestDB(t)
	s := &testServer{t: t, db: db}

	deps := Dependencies{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens: services.NewTokenStore(db, nil),
	}
	if withStorage {
		s.storage = &fakeStorage{}
		deps.Storage = s.storage
	}
	s.router = SetupRouter(deps)
	return s
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type authPayload struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

// register signs up username and returns its token pair.
func (s *testServer) register(username string) authPayload {
	s.t.Helper()
	w := s.do(http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"password": "s3cret-pass",
	}, "")
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[authPayload](s.t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// create POSTs body and returns the decoded 201 response.
func create[T any](s *testServer, path string, body interface{}, token string) T {
	s.t.Helper()
	w := s.do(http.MethodPost, path, body, token)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[T](s.t, w)
}

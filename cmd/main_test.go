package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-food-api/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, environment string) *config.Config {
	t.Helper()
	return &config.Config{
		Environment:            environment,
		DBDriver:               "sqlite",
		DBPath:                 ":memory:",
		JWTSecret:              "test-jwt-secret-key-32-characters",
		ExtraModifierSurcharge: 25,
		DeliveryFee:            50,
		CatalogSeedFile:        "../seed/menu.yaml",
		ReceiptDir:             t.TempDir(),
		NotifyTransport:        config.TransportDirect,
	}
}

func testRouter(t *testing.T, environment string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	conf := testConfig(t, environment)
	application := wireApplication(context.Background(), conf, setupDatabase(conf))
	t.Cleanup(application.close)
	return setupRouter(application)
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOperationalEndpoints(t *testing.T) {
	router := testRouter(t, "development")

	w := get(router, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = get(router, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "food_api_http_requests_total")
}

func TestSeededMenuIsServed(t *testing.T) {
	router := testRouter(t, "development")

	w := get(router, "/api/v1/public/menu", "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	assert.NotEmpty(t, items)

	w = get(router, "/api/v1/public/menu/b1", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTestTokenReachesProtectedRoutes(t *testing.T) {
	router := testRouter(t, "development")

	w := get(router, "/test-token?user=admin", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "admin", body.Role)

	assert.Equal(t, http.StatusUnauthorized, get(router, "/api/v1/protected/admin/stats", "").Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/v1/protected/admin/stats", body.Token).Code)
	assert.Equal(t, http.StatusOK, get(router, "/api/v1/protected/notifications", body.Token).Code)
}

func TestTestTokenHiddenInProduction(t *testing.T) {
	router := testRouter(t, "production")

	assert.Equal(t, http.StatusNotFound, get(router, "/test-token", "").Code)
	assert.Equal(t, http.StatusOK, get(router, "/health", "").Code)
}

func TestHelpChatWithoutAPIKey(t *testing.T) {
	router := testRouter(t, "development")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai-help/chat", strings.NewReader(`{"prompt": "hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

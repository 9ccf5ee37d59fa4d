package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/distrisur/pedidos-go/internal/dialogue"
	"github.com/distrisur/pedidos-go/internal/domain"
	"github.com/distrisur/pedidos-go/internal/handler"
	"github.com/distrisur/pedidos-go/internal/infra/memstore"
	"github.com/distrisur/pedidos-go/internal/infra/observability"
	"github.com/distrisur/pedidos-go/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()

	catalog := memstore.NewDemoCatalog(domain.PricingTiers)
	sink := memstore.NewOrderSink("seq")
	sessions := memstore.NewSessionStore()
	engine := dialogue.NewEngine(catalog, sink, sessions, dialogue.Options{}, metrics, logger)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	authSvc := service.NewAuthService("admin", string(hash), "test-secret", time.Hour, logger)
	adminSvc := service.NewAdminService(catalog, sink, sessions, metrics, logger)

	return handler.NewRouter(handler.Deps{
		Chat:    handler.NewChatHandler(engine, logger),
		Auth:    handler.NewAuthHandler(authSvc, logger),
		Admin:   handler.NewAdminHandler(adminSvc, catalog, logger),
		AuthMW:  handler.JWTAuthMiddleware(authSvc, logger),
		Catalog: catalog,
		Metrics: metrics,
		Logger:  logger,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/ping"} {
		rec := doJSON(t, router, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestChatEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/chat", map[string]string{"text": "hola"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UserID  string          `json:"user_id"`
		Text    string          `json:"text"`
		Choices []domain.Choice `json:"choices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.UserID, "a fresh conversation must get a generated user id")
	assert.Contains(t, resp.Text, "cliente")

	// Second turn carries the id and continues the same session.
	rec = doJSON(t, router, http.MethodPost, "/v1/chat",
		map[string]string{"user_id": resp.UserID, "text": "mario"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Almacén Don Mario")
}

func TestChatEndpoint_BadRequest(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/chat", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/chat", bytes.NewBufferString("{not json"))
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
}

func TestAdminRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/admin/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/admin/stats", nil,
		map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginAndAdminAccess(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login",
		map[string]string{"user": "admin", "password": "s3cret"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	require.NotEmpty(t, login.AccessToken)

	auth := map[string]string{"Authorization": "Bearer " + login.AccessToken}

	rec = doJSON(t, router, http.MethodGet, "/v1/admin/orders", nil, auth)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/admin/clients", nil, auth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Almacén Don Mario")

	rec = doJSON(t, router, http.MethodGet, "/v1/admin/products?active=true", nil, auth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Gaseosa cola", "inactive products filtered out")

	rec = doJSON(t, router, http.MethodGet, "/v1/admin/stats", nil, auth)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "total_orders")
}

func TestLogin_BadCredentials(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login",
		map[string]string{"user": "admin", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOrderNotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/login",
		map[string]string{"user": "admin", "password": "s3cret"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))

	rec = doJSON(t, router, http.MethodGet, "/v1/admin/orders/ORD999", nil,
		map[string]string{"Authorization": "Bearer " + login.AccessToken})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gogotex/docserve/internal/config"
	"github.com/gogotex/docserve/internal/document/handler"
	"github.com/gogotex/docserve/internal/document/serve"
	"github.com/gogotex/docserve/internal/storage"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Storage: storage.Config{Backend: storage.BackendFilesystem, LocalRoot: t.TempDir(), BaseURL: "http://media.example.com"},
		Documents: config.DocumentsConfig{
			InlineContentTypes: []string{"application/pdf"},
		},
	}
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestBuild_MemoryOnly(t *testing.T) {
	ctx := context.Background()
	a, err := Build(ctx, testConfig(t))
	require.NoError(t, err)
	defer a.Close(ctx)
	require.Nil(t, a.Redis)
	require.Nil(t, a.Verifier)

	r := a.Router()
	require.Equal(t, http.StatusOK, get(r, "/health").Code)
	require.Equal(t, http.StatusOK, get(r, "/ready").Code)
	require.Equal(t, http.StatusOK, get(r, "/metrics").Code)
	require.Equal(t, http.StatusOK, get(r, "/swagger/doc.json").Code)

	doc, err := a.Service.Upload(ctx, "", "report.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	w := get(r, handler.ServeURL(doc))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestBuild_WithRedisCountsDeliveries(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	host, port, err := net.SplitHostPort(m.Addr())
	require.NoError(t, err)

	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Redis = config.RedisConfig{Host: host, Port: port}
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, UseRedis: true, RPS: 100, Burst: 100, WindowSeconds: 1}
	a, err := Build(ctx, cfg)
	require.NoError(t, err)
	defer a.Close(ctx)
	require.NotNil(t, a.Redis)

	r := a.Router()
	doc, err := a.Service.Upload(ctx, "", "report.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, get(r, handler.ServeURL(doc)).Code)

	w := get(r, "/api/documents/"+doc.ID+"/stats")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, float64(1), body["served"])

	w = get(r, "/ready")
	require.Equal(t, http.StatusOK, w.Code)

	m.Close()
	w = get(r, "/ready")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestBuild_UnknownServeMethodStillStarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Documents.ServeMethod = serve.ServeMethod("invalido")
	a, err := Build(ctx, cfg)
	require.NoError(t, err)

	doc, err := a.Service.Upload(ctx, "", "report.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, get(a.Router(), handler.ServeURL(doc)).Code)
}

func TestBuild_UnsetMethodWithoutBaseURLIsNotFound(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Storage.BaseURL = ""
	a, err := Build(ctx, cfg)
	require.NoError(t, err)

	doc, err := a.Service.Upload(ctx, "", "report.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, get(a.Router(), handler.ServeURL(doc)).Code)
}

func TestBuild_InsecureVerifierProtectsManagementAPI(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Keycloak.AllowInsecure = true
	a, err := Build(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, a.Verifier)

	require.Equal(t, http.StatusUnauthorized, get(a.Router(), "/api/documents").Code)
}

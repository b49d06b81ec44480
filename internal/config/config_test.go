package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogotex/docserve/internal/document/serve"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// viper treats empty env values as unset
	t.Setenv("DOCS_SERVE_METHOD", "")
	t.Setenv("DOCS_INLINE_CONTENT_TYPES", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "5010", cfg.Server.Port)
	require.Equal(t, serve.MethodUnset, cfg.Documents.ServeMethod)
	require.Equal(t, []string{"application/pdf", "text/plain"}, cfg.Documents.InlineContentTypes)
	require.True(t, cfg.Documents.BlockEmbeddedContent)
	require.Equal(t, "filesystem", cfg.Storage.Backend)
	require.Equal(t, time.Hour, cfg.Storage.PresignTTL)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/testdb")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("DOCS_SERVE_METHOD", " Redirect ")
	t.Setenv("DOCS_INLINE_CONTENT_TYPES", "application/pdf, image/png")
	t.Setenv("STORAGE_BACKEND", "MINIO")
	t.Setenv("MINIO_USE_SSL", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017/testdb", cfg.MongoDB.URI)
	require.Equal(t, "localhost", cfg.Redis.Host)
	require.Equal(t, serve.MethodRedirect, cfg.Documents.ServeMethod)
	require.Equal(t, []string{"application/pdf", "image/png"}, cfg.Documents.InlineContentTypes)
	require.Equal(t, "minio", cfg.Storage.Backend)
	require.True(t, cfg.Storage.MinIO.UseSSL)
}

func TestLoadConfig_ConfigFile(t *testing.T) {
	f := filepath.Join(t.TempDir(), "docserve.yaml")
	require.NoError(t, os.WriteFile(f, []byte("DOCS_SERVE_METHOD: direct\nSERVER_PORT: \"9000\"\n"), 0o644))
	t.Setenv("DOCSERVE_CONFIG", f)
	t.Setenv("DOCS_SERVE_METHOD", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, serve.MethodDirect, cfg.Documents.ServeMethod)
	require.Equal(t, "9000", cfg.Server.Port)
}

func TestLoadConfig_MissingConfigFile(t *testing.T) {
	t.Setenv("DOCSERVE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadConfig()
	require.Error(t, err)
}

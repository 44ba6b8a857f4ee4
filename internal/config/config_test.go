package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example, https://admin.example ,")
	t.Setenv("STORAGE_BACKEND", "GCS")
	t.Setenv("STORAGE_PUBLIC_BASE_URL", "https://cdn.example/")
	t.Setenv("CATALOG_SNAPSHOT_TTL", "90s")

	cfg := Load()

	require.Equal(t, "9090", cfg.Server.Port)
	require.False(t, cfg.IsDevelopment())
	require.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.Server.AllowedOrigins)
	require.Equal(t, "gcs", cfg.Storage.Backend)
	require.Equal(t, "https://cdn.example", cfg.Storage.PublicBaseURL)
	require.Equal(t, 90*time.Second, cfg.Catalog.SnapshotTTL)
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	require.Equal(t, "5432", cfg.Database.Port)
	require.Equal(t, 4, cfg.Catalog.UploadConcurrency)
	require.Equal(t, int64(32<<20), cfg.Catalog.MaxUploadBytes)
	require.Equal(t, time.Minute, cfg.RateLimit.Window)
}

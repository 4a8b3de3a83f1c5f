package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"catalogadmin/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")

	cfg := config.LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.BackendHTTP, cfg.CatalogBackend)
	assert.Equal(t, "instagramimages", cfg.UploadPreset)
	assert.Equal(t, 10*time.Second, cfg.CatalogAPITimeout)
	assert.Equal(t, 60*time.Minute, cfg.TokenExpiry)
	assert.Equal(t, int64(10<<20), cfg.UploadMaxBytes)
	assert.Equal(t, 50, cfg.NotificationBuffer)
}

func TestLoadConfig_PostgresBackend(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("CATALOG_BACKEND", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://admin@localhost/catalog?sslmode=disable")
	t.Setenv("DB_TIMEOUT_SEC", "abc") // inválido: usa o padrão

	cfg := config.LoadConfig()

	assert.Equal(t, config.BackendPostgres, cfg.CatalogBackend)
	assert.Equal(t, "postgres://admin@localhost/catalog?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
}

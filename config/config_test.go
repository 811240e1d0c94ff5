package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("MAX_WORKERS", "5")
	t.Setenv("HEADLESS", "false")
	t.Setenv("LISTING_TTL", "72h")

	cfg := Load()
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 5, cfg.MaxWorkers)
	assert.False(t, cfg.Headless)
	assert.Equal(t, 72*time.Hour, cfg.ListingTTL)

	// untouched keys keep their defaults
	assert.Equal(t, 50, cfg.MaxPages)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoadIgnoresBadValues(t *testing.T) {
	t.Setenv("MAX_PAGES", "lots")
	t.Setenv("LISTING_TTL", "two days")

	cfg := Load()
	assert.Equal(t, 50, cfg.MaxPages)
	assert.Equal(t, 48*time.Hour, cfg.ListingTTL)
}

func TestDatabaseURL(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.DBUser = "scraper"
	cfg.DBPassword = "pw"
	cfg.DBHost = "localhost"
	cfg.DBPort = 5433
	cfg.DBName = "cars"

	assert.Equal(t, "postgres://scraper:pw@localhost:5433/cars?sslmode=disable", cfg.DatabaseURL())
}

func TestLocationFallback(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

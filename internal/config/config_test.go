package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "DB_DRIVER", "PAGE_SIZE", "JWT_TTL_HOURS", "TRUSTED_PROXIES", "CACHE_TTL_SECONDS"} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"127.0.0.1"}, cfg.TrustedProxies)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("IS_PROD", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.2")

	cfg := LoadConfig()

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 25, cfg.PageSize)
	assert.True(t, cfg.IsProd)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.TrustedProxies)
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", DBUser: "u", DBPassword: "p", DBHost: "db", DBName: "yamdb"}
	assert.Equal(t, "u:p@tcp(db:3306)/yamdb?parseTime=true", cfg.DSN())

	cfg.DBDriver = "postgres"
	assert.Equal(t, "host=db user=u password=p dbname=yamdb port=5432 sslmode=disable", cfg.DSN())

	cfg.DBDriver = "sqlite"
	cfg.DBPath = "file::memory:"
	assert.Equal(t, "file::memory:", cfg.DSN())
}

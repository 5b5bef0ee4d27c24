package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "MONGO_URI", "MEDIA_ROOT", "SESSION_TTL", "INDEX_CACHE_TTL", "DB_MAX_OPEN_CONNS"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "", cfg.MongoURI)
	assert.Equal(t, "media", cfg.MediaRoot)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 20*time.Second, cfg.IndexCacheTTL)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
}

func TestLoadOverridesAndBadValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("INDEX_CACHE_TTL", "1m")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")
	t.Setenv("SESSION_TTL", "forever")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, time.Minute, cfg.IndexCacheTTL)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
}

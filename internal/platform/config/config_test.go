package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GARAGEHUB_ENV", "development")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, DefaultUploadMaxBytes, cfg.UploadMaxBytes)
	assert.Equal(t, 10*time.Minute, cfg.Redis.RecordTTL)
	assert.NotEmpty(t, cfg.JWTSigningKey)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.S3.Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("GARAGEHUB_ADDR", ":9090")
	t.Setenv("UPLOAD_MAX_BYTES", "1024")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, int64(1024), cfg.UploadMaxBytes)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "****", cfg.Redacted().Redis.URL)
}

func TestLoadRejectsMissingSigningKeyInProduction(t *testing.T) {
	t.Setenv("GARAGEHUB_ENV", "production")
	t.Setenv("JWT_SIGNING_KEY", "")

	_, err := Load(t.TempDir())
	require.Error(t, err)
}

func TestLoadRequiresPublicURLForBucket(t *testing.T) {
	t.Setenv("S3_BUCKET", "kyc-docs")
	t.Setenv("S3_PUBLIC_BASE_URL", "")

	_, err := Load(t.TempDir())
	require.Error(t, err)
}

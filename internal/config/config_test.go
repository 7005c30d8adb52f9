package config

import (
	"testing"
	"time"

	"github.com/Yzairi/CDA/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "estate-service", cfg.ServiceName)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, int64(32), cfg.UploadMaxMemoryMB)
	assert.Equal(t, 30, cfg.RateLimitPerMinute)
	assert.False(t, cfg.AuthAllowAdminRegistration)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MONGO")
	t.Setenv("MONGO_DATABASE", "estate_test")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("AUTH_ALLOW_ADMIN_REGISTRATION", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("BLOB_BACKEND", "none")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.StorageDriver)
	assert.Equal(t, "estate_test", cfg.MongoDatabase)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.True(t, cfg.AuthAllowAdminRegistration)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "none", cfg.BlobBackend)
	assert.Equal(t, "debug", cfg.LoggerConfig().Level)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "sqlite")
	_, err := LoadConfig(logger.NewNop())
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			StorageDriver:      "postgres",
			PostgresDSN:        "postgres://x",
			BlobBackend:        "minio",
			BlobBucket:         "b",
			JWTSecret:          "s",
			JWTTTL:             time.Hour,
			RateLimitPerMinute: 10,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing dsn", func(c *Config) { c.PostgresDSN = "" }, "POSTGRES_DSN"},
		{"mongo without uri", func(c *Config) { c.StorageDriver = "mongo" }, "MONGO_URI"},
		{"unknown blob backend", func(c *Config) { c.BlobBackend = "ftp" }, "BLOB_BACKEND"},
		{"s3 without bucket", func(c *Config) { c.BlobBackend = "s3"; c.BlobBucket = "" }, "BLOB_BUCKET"},
		{"blob disabled", func(c *Config) { c.BlobBackend = "none"; c.BlobBucket = "" }, ""},
		{"empty secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"zero ttl", func(c *Config) { c.JWTTTL = 0 }, "JWT_TTL"},
		{"zero rate limit", func(c *Config) { c.RateLimitPerMinute = 0 }, "RATE_LIMIT_PER_MINUTE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestBootLoggerConfig(t *testing.T) {
	cfg := BootLoggerConfig()
	assert.Equal(t, &logger.LoggerConfig{Level: "info", Format: "json", OutputFile: "stdout"}, cfg)

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("LOG_OUTPUT_FILE", "stderr")
	assert.Equal(t, &logger.LoggerConfig{Level: "debug", Format: "console", OutputFile: "stderr"}, BootLoggerConfig())
}

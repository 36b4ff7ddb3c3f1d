package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func validConfig() *Config {
	return &Config{
		Env:                 "development",
		DBDriver:            "postgres",
		DBHost:              "localhost",
		DBName:              "warbler",
		DBPassword:          "secure-password",
		DBSSLMode:           "require",
		BcryptCost:          bcrypt.DefaultCost,
		MessageMaxLength:    MaxMessageLength,
		TracingSamplerRatio: 1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid development", func(*Config) {}, false},
		{"Unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"Sqlite without path", func(c *Config) { c.DBDriver = "sqlite"; c.DBPath = "" }, true},
		{"Sqlite with path", func(c *Config) { c.DBDriver = "sqlite"; c.DBPath = ":memory:" }, false},
		{"Bcrypt cost too low", func(c *Config) { c.BcryptCost = 1 }, true},
		{"Message length zero", func(c *Config) { c.MessageMaxLength = 0 }, true},
		{"Message length wider than column", func(c *Config) { c.MessageMaxLength = MaxMessageLength + 1 }, true},
		{"Sampler ratio above one", func(c *Config) { c.TracingSamplerRatio = 1.5 }, true},
		{"Negative pool size", func(c *Config) { c.DBMaxOpenConns = -1 }, true},
		{"Production with disable SSL mode", func(c *Config) { c.Env = "production"; c.DBSSLMode = "disable" }, true},
		{"Production with default password", func(c *Config) { c.Env = "prod"; c.DBPassword = "password" }, true},
		{"Production with sqlite", func(c *Config) { c.Env = "production"; c.DBDriver = "sqlite"; c.DBPath = "x.db" }, true},
		{"Production with cheap bcrypt", func(c *Config) { c.Env = "production"; c.BcryptCost = bcrypt.MinCost }, true},
		{"Production with require SSL mode", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, bcrypt.DefaultCost, c.BcryptCost)
	assert.Equal(t, MaxMessageLength, c.MessageMaxLength)
	assert.Equal(t, 25, c.DBMaxOpenConns)
	assert.False(t, c.TracingEnabled)
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("MESSAGE_MAX_LENGTH", "100")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, ":memory:", c.DBPath)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, 4, c.BcryptCost)
	assert.Equal(t, 100, c.MessageMaxLength)
}

func TestLoadConfig_ProductionRequiresProfileFile(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := LoadConfig()
	assert.Error(t, err)
}

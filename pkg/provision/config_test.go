package provision

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/suitedb/pkg/database"
)

func validSettings() map[string]interface{} {
	return map[string]interface{}{
		"host":     "localhost",
		"user":     "postgres",
		"password": "postgres",
		"attempts": 3,
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(validSettings(), DatabaseRequiredKeys...)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, 3, cfg.Attempts)
	assert.Equal(t, database.DriverPGX, cfg.Driver)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, "postgres", cfg.Database)
}

func TestParseConfig_WeaklyTyped(t *testing.T) {
	raw := map[string]interface{}{
		"host":     "db",
		"port":     "6543",
		"user":     "ci",
		"password": 1234,
		"attempts": "5",
		"driver":   "postgres",
	}

	cfg, err := ParseConfig(raw, DatabaseRequiredKeys...)
	require.NoError(t, err)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "1234", cfg.Password)
	assert.Equal(t, 5, cfg.Attempts)
	assert.Equal(t, database.DriverPQ, cfg.Driver)
}

func TestParseConfig_MissingKeys(t *testing.T) {
	tests := []struct {
		name    string
		remove  []string
		missing []string
	}{
		{"password and attempts", []string{"password", "attempts"}, []string{"password", "attempts"}},
		{"host only", []string{"host"}, []string{"host"}},
		{"everything", []string{"host", "user", "password", "attempts"}, []string{"host", "user", "password", "attempts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validSettings()
			for _, k := range tt.remove {
				delete(raw, k)
			}

			_, err := ParseConfig(raw, DatabaseRequiredKeys...)
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.missing, cfgErr.Missing)
		})
	}
}

func TestParseConfig_MissingKeysMessage(t *testing.T) {
	raw := validSettings()
	delete(raw, "password")
	delete(raw, "attempts")

	_, err := ParseConfig(raw, DatabaseRequiredKeys...)
	require.Error(t, err)
	assert.Equal(t, "missing required database configuration: password, attempts", err.Error())
}

func TestParseConfig_EmptyPasswordIsPresent(t *testing.T) {
	raw := validSettings()
	raw["password"] = ""

	_, err := ParseConfig(raw, DatabaseRequiredKeys...)
	assert.NoError(t, err)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   interface{}
		wantErr string
	}{
		{"negative attempts", "attempts", -1, "attempts"},
		{"unknown driver", "driver", "mysql", "driver"},
		{"port out of range", "port", 70000, "port"},
		{"blank host", "host", "", "host"},
		{"unknown key", "atempts", 3, "atempts"},
		{"bad sslmode", "sslmode", "sometimes", "sslmode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validSettings()
			raw[tt.key] = tt.value

			_, err := ParseConfig(raw, DatabaseRequiredKeys...)
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Empty(t, cfgErr.Missing)
			assert.Contains(t, err.Error(), "invalid database configuration")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStaticConfigCopies(t *testing.T) {
	settings := validSettings()
	provider := StaticConfig(settings)

	raw, err := provider()
	require.NoError(t, err)
	raw["host"] = "changed"

	again, err := provider()
	require.NoError(t, err)
	assert.Equal(t, "localhost", again["host"])
}

func TestEnvConfig(t *testing.T) {
	t.Setenv("SUITEDB_TEST_HOST", "db.internal")
	t.Setenv("SUITEDB_TEST_USER", "ci")
	t.Setenv("SUITEDB_TEST_ATTEMPTS", "7")

	raw, err := EnvConfig("SUITEDB_TEST_")()
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"host":     "db.internal",
		"user":     "ci",
		"attempts": "7",
	}, raw)

	_, err = ParseConfig(raw, DatabaseRequiredKeys...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestConfigDatabaseConfig(t *testing.T) {
	cfg, err := ParseConfig(validSettings(), DatabaseRequiredKeys...)
	require.NoError(t, err)

	maintenance := cfg.DatabaseConfig("")
	assert.Equal(t, "postgres", maintenance.DBName)
	assert.Equal(t, "localhost", maintenance.Host)

	suite := cfg.DatabaseConfig("acme_sample_pkg")
	assert.Equal(t, "acme_sample_pkg", suite.DBName)
	assert.Equal(t, 5432, suite.Port)
}

package provision

import (
	"fmt"
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mitchellh/mapstructure"

	"github.com/hashicorp-forge/suitedb/pkg/database"
)

// ConfigProvider returns the raw connection settings. It is called once, the
// first time an interceptor needs a connection.
type ConfigProvider func() (map[string]interface{}, error)

// Required keys per interceptor.
var (
	DatabaseRequiredKeys = []string{"host", "user", "password", "attempts"}
	SchemaRequiredKeys   = []string{"host", "user", "password", "source"}
)

// configKeys lists every key a provider may return.
var configKeys = []string{
	"host", "port", "user", "password", "attempts",
	"driver", "sslmode", "database", "source",
}

// Config is the decoded connection configuration.
type Config struct {
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	User     string `mapstructure:"user" json:"user"`
	Password string `mapstructure:"password" json:"password"`

	// Attempts is the number of retries after the first connection attempt.
	Attempts int `mapstructure:"attempts" json:"attempts"`

	// Driver selects the connection layer: "pgx" (default) or "postgres".
	Driver  string `mapstructure:"driver" json:"driver"`
	SSLMode string `mapstructure:"sslmode" json:"sslmode"`

	// Database is the maintenance database used to issue CREATE/DROP
	// statements (default: "postgres").
	Database string `mapstructure:"database" json:"database"`

	// Source is the golang-migrate source URL applied by SchemaInterceptor.
	Source string `mapstructure:"source" json:"source"`
}

// StaticConfig returns a provider for a fixed settings map.
func StaticConfig(settings map[string]interface{}) ConfigProvider {
	return func() (map[string]interface{}, error) {
		out := make(map[string]interface{}, len(settings))
		for k, v := range settings {
			out[k] = v
		}
		return out, nil
	}
}

// EnvConfig returns a provider reading <prefix><KEY> environment variables,
// e.g. SUITEDB_DB_HOST for prefix "SUITEDB_DB_". Unset variables are left out
// so that missing required keys are reported.
func EnvConfig(prefix string) ConfigProvider {
	return func() (map[string]interface{}, error) {
		out := make(map[string]interface{})
		for _, key := range configKeys {
			if v, ok := os.LookupEnv(prefix + strings.ToUpper(key)); ok {
				out[key] = v
			}
		}
		return out, nil
	}
}

// ParseConfig checks that every required key is present, decodes raw and
// applies defaults.
func ParseConfig(raw map[string]interface{}, required ...string) (*Config, error) {
	var missing []string
	for _, key := range required {
		if _, ok := raw[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.Driver == "" {
		cfg.Driver = database.DriverPGX
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.Database == "" {
		cfg.Database = "postgres"
	}

	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}

	return &cfg, nil
}

// Validate checks the decoded values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.User, validation.Required),
		validation.Field(&c.Attempts, validation.Min(0)),
		validation.Field(&c.Port, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.Driver, validation.In(database.DriverPGX, database.DriverPQ)),
		validation.Field(&c.SSLMode, validation.In("disable", "allow", "prefer", "require", "verify-ca", "verify-full")),
	)
}

// DatabaseConfig returns the connection settings for dbName. An empty dbName
// selects the maintenance database.
func (c *Config) DatabaseConfig(dbName string) database.Config {
	if dbName == "" {
		dbName = c.Database
	}
	return database.Config{
		Driver:   c.Driver,
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		DBName:   dbName,
		SSLMode:  c.SSLMode,
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("%s@%s:%d/%s (%s)", c.User, c.Host, c.Port, c.Database, c.Driver)
}

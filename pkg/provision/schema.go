package provision

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/suitedb/internal/migrate"
	"github.com/hashicorp-forge/suitedb/pkg/database"
	"github.com/hashicorp-forge/suitedb/pkg/interceptor"
)

// SchemaInterceptor applies golang-migrate migrations to the database
// provisioned for the suite. It must run after DatabaseInterceptor.
type SchemaInterceptor struct {
	logger   hclog.Logger
	provider ConfigProvider
	cfg      *Config

	openDB        func(ctx context.Context, cfg database.Config) (*sql.DB, error)
	migrateDriver string
}

var _ interceptor.Interceptor = (*SchemaInterceptor)(nil)

// NewSchemaInterceptor creates a schema interceptor. Migrations always run
// over lib/pq, so WithLogger is the only supported option.
func NewSchemaInterceptor(provider ConfigProvider, opts ...Option) (*SchemaInterceptor, error) {
	logger, err := loggerOption("schema", opts)
	if err != nil {
		return nil, err
	}

	return &SchemaInterceptor{
		logger:        logger,
		provider:      provider,
		openDB:        database.OpenSQL,
		migrateDriver: "postgres",
	}, nil
}

// Name implements interceptor.Named.
func (s *SchemaInterceptor) Name() string {
	return "schema"
}

// OnEnter migrates the suite's database to the latest version.
func (s *SchemaInterceptor) OnEnter(ctx context.Context, suite interceptor.Suite) error {
	if !suite.HasPackage() {
		return nil
	}

	cfg, err := s.config()
	if err != nil {
		return err
	}

	name := DatabaseName(suite.Package.Name)
	db, err := s.openDB(ctx, cfg.DatabaseConfig(name))
	if err != nil {
		return fmt.Errorf("failed to connect to database %s: %w", name, err)
	}
	defer db.Close()

	s.logger.Info("applying migrations", "database", name, "source", cfg.Source)
	version, err := migrate.Up(db, s.migrateDriver, cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to migrate database %s: %w", name, err)
	}
	s.logger.Info("migrations applied", "database", name, "version", version)

	return nil
}

// OnLeave does nothing; the database is dropped by DatabaseInterceptor.
func (s *SchemaInterceptor) OnLeave(ctx context.Context, suite interceptor.Suite) error {
	return nil
}

func (s *SchemaInterceptor) config() (*Config, error) {
	if s.cfg != nil {
		return s.cfg, nil
	}

	raw, err := s.provider()
	if err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("failed to load configuration: %w", err)}
	}
	cfg, err := ParseConfig(raw, SchemaRequiredKeys...)
	if err != nil {
		return nil, err
	}
	s.cfg = cfg
	return cfg, nil
}

package migrate

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// sources
	"github.com/hashicorp/go-multierror"
)

// Up applies all pending migrations from sourceURL (e.g. "file://migrations")
// to db and returns the resulting schema version. The migration instance owns
// db afterwards and closes it, so the provisioned database has no connection
// left open once Up returns.
func Up(db *sql.DB, driver, sourceURL string) (version uint, err error) {
	m, err := newMigrate(db, driver, sourceURL)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = closeMigrate(m, err)
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migration failed: %w", err)
	}

	version, _, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}
	return version, nil
}

func newMigrate(db *sql.DB, driver, sourceURL string) (*migrate.Migrate, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("migration source is required")
	}

	var databaseDriver database.Driver
	var err error
	switch driver {
	case "postgres":
		databaseDriver, err = postgres.WithInstance(db, &postgres.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres driver: %w", err)
		}
	case "sqlite":
		databaseDriver, err = sqlite.WithInstance(db, &sqlite.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, sqlite)", driver)
	}

	m, err := migrate.NewWithDatabaseInstance(sourceURL, driver, databaseDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}

	return m, nil
}

func closeMigrate(m *migrate.Migrate, err error) error {
	var result *multierror.Error
	if err != nil {
		result = multierror.Append(result, err)
	}

	srcErr, dbErr := m.Close()
	if srcErr != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close migration source: %w", srcErr))
	}
	if dbErr != nil {
		result = multierror.Append(result, fmt.Errorf("failed to close migration database: %w", dbErr))
	}

	if result == nil {
		return nil
	}
	if len(result.Errors) == 1 {
		return result.Errors[0]
	}
	return result
}

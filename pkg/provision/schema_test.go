package provision

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/suitedb/pkg/database"
	"github.com/hashicorp-forge/suitedb/pkg/interceptor"
)

// newSQLiteSchemaInterceptor points the interceptor at per-database SQLite
// files so migrations run without a PostgreSQL server.
func newSQLiteSchemaInterceptor(t *testing.T, settings map[string]interface{}, opts ...Option) (*SchemaInterceptor, string, *[]string) {
	t.Helper()

	dataDir := t.TempDir()
	var opened []string

	s, err := NewSchemaInterceptor(StaticConfig(settings), opts...)
	require.NoError(t, err)
	s.migrateDriver = "sqlite"
	s.openDB = func(ctx context.Context, cfg database.Config) (*sql.DB, error) {
		opened = append(opened, cfg.DBName)
		return sql.Open("sqlite", filepath.Join(dataDir, cfg.DBName+".db"))
	}

	return s, dataDir, &opened
}

func migrationSource(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "000001_create_accounts.up.sql"),
		[]byte("CREATE TABLE accounts (id INTEGER PRIMARY KEY, email TEXT NOT NULL);"),
		0o644,
	))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "000001_create_accounts.down.sql"),
		[]byte("DROP TABLE accounts;"),
		0o644,
	))
	return "file://" + dir
}

func schemaSettings(source string) map[string]interface{} {
	return map[string]interface{}{
		"host":     "localhost",
		"user":     "postgres",
		"password": "postgres",
		"source":   source,
	}
}

func TestSchemaInterceptor_AppliesMigrations(t *testing.T) {
	var logs bytes.Buffer
	logger := hclog.New(&hclog.LoggerOptions{Output: &logs, Level: hclog.Info})
	s, dataDir, opened := newSQLiteSchemaInterceptor(t, schemaSettings(migrationSource(t)), WithLogger(logger))

	suite := interceptor.Suite{Package: interceptor.Package{Name: "acme/sample-pkg"}}
	require.NoError(t, s.OnEnter(context.Background(), suite))
	require.NoError(t, s.OnLeave(context.Background(), suite))

	assert.Equal(t, []string{"acme_sample_pkg"}, *opened)

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "acme_sample_pkg.db"))
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("INSERT INTO accounts (email) VALUES ('dev@example.com')")
	require.NoError(t, err)

	assert.Contains(t, logs.String(), "schema: migrations applied")
	assert.Contains(t, logs.String(), "version=1")
}

func TestNewSchemaInterceptor_RejectsConnectionOptions(t *testing.T) {
	s, err := NewSchemaInterceptor(StaticConfig(schemaSettings("file:///tmp")),
		WithLogger(hclog.NewNullLogger()),
		WithReporter(func(Event, EventArgs) error { return nil }),
		WithBackOff(zeroBackOff),
	)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.Contains(t, err.Error(), "schema interceptor does not support WithReporter, WithBackOff")

	_, err = NewSchemaInterceptor(StaticConfig(schemaSettings("file:///tmp")), WithConnector(&fakeConnector{}))
	assert.EqualError(t, err, "schema interceptor does not support WithConnector")

	_, err = NewSchemaInterceptor(StaticConfig(schemaSettings("file:///tmp")), WithLogger(hclog.NewNullLogger()))
	assert.NoError(t, err)
}

func TestSchemaInterceptor_NoPackageName(t *testing.T) {
	s, _, opened := newSQLiteSchemaInterceptor(t, map[string]interface{}{})

	require.NoError(t, s.OnEnter(context.Background(), interceptor.Suite{Dir: "/src"}))
	assert.Empty(t, *opened)
}

func TestSchemaInterceptor_MissingSource(t *testing.T) {
	settings := schemaSettings("")
	delete(settings, "source")
	s, _, opened := newSQLiteSchemaInterceptor(t, settings)

	err := s.OnEnter(context.Background(), interceptor.Suite{Package: interceptor.Package{Name: "acme/x"}})
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"source"}, cfgErr.Missing)
	assert.Empty(t, *opened)
}

func TestSchemaInterceptor_MigrationFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000001_broken.up.sql"), []byte("CREATE TABLE ("), 0o644))
	s, _, _ := newSQLiteSchemaInterceptor(t, schemaSettings("file://"+dir))

	err := s.OnEnter(context.Background(), interceptor.Suite{Package: interceptor.Package{Name: "acme/broken"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to migrate database acme_broken")
}

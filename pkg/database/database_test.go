package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func TestConfigDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "defaults",
			cfg:  Config{Host: "localhost", User: "postgres", Password: "secret"},
			want: "host=localhost port=5432 user=postgres password=secret dbname=postgres sslmode=disable connect_timeout=5",
		},
		{
			name: "explicit values",
			cfg: Config{
				Host:           "db.internal",
				Port:           6543,
				User:           "ci",
				Password:       "pw",
				DBName:         "acme_sample_pkg",
				SSLMode:        "require",
				ConnectTimeout: 10 * time.Second,
			},
			want: "host=db.internal port=6543 user=ci password=pw dbname=acme_sample_pkg sslmode=require connect_timeout=10",
		},
		{
			name: "quoted password",
			cfg:  Config{Host: "localhost", User: "postgres", Password: `it's a pass`},
			want: `host=localhost port=5432 user=postgres password='it\'s a pass' dbname=postgres sslmode=disable connect_timeout=5`,
		},
		{
			name: "empty password",
			cfg:  Config{Host: "localhost", User: "postgres"},
			want: "host=localhost port=5432 user=postgres password='' dbname=postgres sslmode=disable connect_timeout=5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DSN())
		})
	}
}

// TestOpenAppliesPoolDefaults uses SQLite so no external database is needed.
func TestOpenAppliesPoolDefaults(t *testing.T) {
	db, err := open(sqlite.Open(":memory:"), Config{}, hclog.NewNullLogger())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	assert.Equal(t, 2, sqlDB.Stats().MaxOpenConnections)
	require.NoError(t, db.Exec("SELECT 1").Error)
}

func TestOpenCustomPool(t *testing.T) {
	db, err := open(sqlite.Open(":memory:"), Config{MaxOpenConns: 7}, nil)
	require.NoError(t, err)

	stats, err := GetPoolStats(db)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.MaxOpenConnections)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle, "open = in-use + idle")
}

func TestOpenSQLUnreachableServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := OpenSQL(ctx, Config{
		Host:           "127.0.0.1",
		Port:           1,
		User:           "postgres",
		ConnectTimeout: time.Second,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ping database")
}

func TestSQLState(t *testing.T) {
	pgxDup := &pgconn.PgError{Code: CodeDuplicateDatabase, Message: `database "x" already exists`}
	pqMissing := &pq.Error{Code: CodeInvalidCatalog, Message: `database "x" does not exist`}

	assert.Equal(t, CodeDuplicateDatabase, SQLState(pgxDup))
	assert.Equal(t, CodeDuplicateDatabase, SQLState(fmt.Errorf("create: %w", pgxDup)))
	assert.Equal(t, CodeInvalidCatalog, SQLState(pqMissing))
	assert.Empty(t, SQLState(errors.New("connection refused")))

	assert.True(t, IsDuplicateDatabase(fmt.Errorf("wrapped: %w", pgxDup)))
	assert.False(t, IsDuplicateDatabase(pqMissing))
	assert.True(t, IsMissingDatabase(pqMissing))
	assert.False(t, IsMissingDatabase(nil))
}

func TestGormLoggerLogMode(t *testing.T) {
	l := NewGormLogger(hclog.NewNullLogger())
	silent := l.LogMode(logger.Silent)

	// Trace must not call the SQL callback when silenced.
	called := false
	silent.Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "", 0
	}, nil)
	assert.False(t, called)

	l.Trace(context.Background(), time.Now(), func() (string, int64) {
		called = true
		return "CREATE DATABASE x", 0
	}, errors.New("boom"))
	assert.True(t, called)
}

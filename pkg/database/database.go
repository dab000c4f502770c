package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	_ "github.com/lib/pq" // registers the "postgres" database/sql driver
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	// DriverPGX connects through GORM and pgx.
	DriverPGX = "pgx"

	// DriverPQ connects through database/sql and lib/pq.
	DriverPQ = "postgres"
)

// Config holds configuration for database connection.
type Config struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// ConnectTimeout bounds a single connection attempt (default: 5 seconds).
	ConnectTimeout time.Duration

	// Provisioning issues one statement at a time, so the pool stays small.
	MaxIdleConns    int           // default: 1
	MaxOpenConns    int           // default: 2
	ConnMaxLifetime time.Duration // default: 30 minutes
}

// DSN returns the key/value connection string understood by both pgx and
// lib/pq.
func (c Config) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	dbName := c.DBName
	if dbName == "" {
		dbName = "postgres"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	timeout := c.ConnectTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		quoteValue(c.Host),
		port,
		quoteValue(c.User),
		quoteValue(c.Password),
		quoteValue(dbName),
		sslMode,
		int(timeout.Seconds()),
	)
}

// quoteValue quotes a DSN value when it is empty or holds spaces or quotes.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// Connect establishes a GORM connection over pgx using the provided
// configuration. GORM pings the server while opening, so an unreachable
// server fails here.
func Connect(cfg Config, log hclog.Logger) (*gorm.DB, error) {
	return open(postgres.Open(cfg.DSN()), cfg, log)
}

func open(dialector gorm.Dialector, cfg Config, log hclog.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	if log != nil {
		gormConfig.Logger = NewGormLogger(log.Named("gorm"))
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}
	configurePool(sqlDB, cfg)

	if log != nil {
		log.Debug("connected to database",
			"driver", DriverPGX,
			"host", cfg.Host,
			"database", cfg.DBName,
		)
	}

	return db, nil
}

// OpenSQL opens a database/sql connection through lib/pq and verifies it with
// a ping.
func OpenSQL(ctx context.Context, cfg Config) (*sql.DB, error) {
	sqlDB, err := sql.Open(DriverPQ, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	configurePool(sqlDB, cfg)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return sqlDB, nil
}

func configurePool(sqlDB *sql.DB, cfg Config) {
	maxIdleConns := cfg.MaxIdleConns
	if maxIdleConns == 0 {
		maxIdleConns = 1
	}
	sqlDB.SetMaxIdleConns(maxIdleConns)

	maxOpenConns := cfg.MaxOpenConns
	if maxOpenConns == 0 {
		maxOpenConns = 2
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = 30 * time.Minute
	}
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
}

// PoolStats holds database connection pool statistics.
type PoolStats struct {
	MaxOpenConnections int   // Maximum number of open connections to the database
	OpenConnections    int   // The number of established connections both in use and idle
	InUse              int   // The number of connections currently in use
	Idle               int   // The number of idle connections
	WaitCount          int64 // The total number of connections waited for
}

// GetPoolStats returns connection pool statistics from a GORM DB instance.
func GetPoolStats(db *gorm.DB) (*PoolStats, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying SQL DB: %w", err)
	}

	stats := sqlDB.Stats()
	return &PoolStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
	}, nil
}

package provision

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/hashicorp-forge/suitedb/pkg/database"
)

// Conn executes statements outside of any transaction.
type Conn interface {
	Exec(ctx context.Context, statement string) error
	Close() error
}

// Connector opens a connection to the maintenance database described by cfg.
type Connector interface {
	Connect(ctx context.Context, cfg *Config) (Conn, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context, cfg *Config) (Conn, error)

// Connect implements Connector.
func (f ConnectorFunc) Connect(ctx context.Context, cfg *Config) (Conn, error) {
	return f(ctx, cfg)
}

// SQLConnector connects through pkg/database, using GORM over pgx or
// database/sql over lib/pq depending on Config.Driver.
type SQLConnector struct {
	Logger hclog.Logger
}

// Connect implements Connector.
func (c SQLConnector) Connect(ctx context.Context, cfg *Config) (Conn, error) {
	dbCfg := cfg.DatabaseConfig("")

	switch cfg.Driver {
	case database.DriverPQ:
		db, err := database.OpenSQL(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		return &sqlConn{db: db}, nil

	case database.DriverPGX, "":
		db, err := database.Connect(dbCfg, c.Logger)
		if err != nil {
			return nil, err
		}
		return &gormConn{db: db, logger: c.Logger}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

type gormConn struct {
	db     *gorm.DB
	logger hclog.Logger
}

func (g *gormConn) Exec(ctx context.Context, statement string) error {
	return g.db.WithContext(ctx).Exec(statement).Error
}

func (g *gormConn) Close() error {
	if g.logger != nil {
		if stats, err := database.GetPoolStats(g.db); err == nil {
			g.logger.Debug("closing connection pool",
				"open_connections", stats.OpenConnections,
				"in_use", stats.InUse,
				"idle", stats.Idle,
				"wait_count", stats.WaitCount,
			)
		}
	}

	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type sqlConn struct {
	db *sql.DB
}

func (s *sqlConn) Exec(ctx context.Context, statement string) error {
	_, err := s.db.ExecContext(ctx, statement)
	return err
}

func (s *sqlConn) Close() error {
	return s.db.Close()
}

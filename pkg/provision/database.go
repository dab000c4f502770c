package provision

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"

	"github.com/hashicorp-forge/suitedb/pkg/interceptor"
)

// DatabaseInterceptor creates a database named after the suite's package
// before the suite runs and drops it afterwards.
//
// The connection is opened on first use and reused for every later suite in
// the same process. It is not safe for concurrent use.
type DatabaseInterceptor struct {
	settings
	provider ConfigProvider
	conn     Conn
}

var _ interceptor.Interceptor = (*DatabaseInterceptor)(nil)

// NewDatabaseInterceptor creates a provisioning interceptor reading its
// connection settings from provider.
func NewDatabaseInterceptor(provider ConfigProvider, opts ...Option) *DatabaseInterceptor {
	return &DatabaseInterceptor{
		settings: newSettings("database", opts),
		provider: provider,
	}
}

// Name implements interceptor.Named.
func (d *DatabaseInterceptor) Name() string {
	return "database"
}

// OnEnter issues CREATE DATABASE for the suite's package. An existing
// database is not checked for; the statement fails instead.
func (d *DatabaseInterceptor) OnEnter(ctx context.Context, suite interceptor.Suite) error {
	if !suite.HasPackage() {
		return nil
	}
	return d.exec(ctx, "CREATE DATABASE "+DatabaseName(suite.Package.Name))
}

// OnLeave issues DROP DATABASE for the suite's package.
func (d *DatabaseInterceptor) OnLeave(ctx context.Context, suite interceptor.Suite) error {
	if !suite.HasPackage() {
		return nil
	}
	return d.exec(ctx, "DROP DATABASE "+DatabaseName(suite.Package.Name))
}

// Close closes the connection, if one was opened.
func (d *DatabaseInterceptor) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	return err
}

func (d *DatabaseInterceptor) exec(ctx context.Context, statement string) error {
	conn, err := d.connection(ctx)
	if err != nil {
		return err
	}

	d.logger.Info("executing statement", "statement", statement)
	if err := conn.Exec(ctx, statement); err != nil {
		return &StatementError{Statement: statement, Err: err}
	}
	return nil
}

// connection returns the open connection, establishing it on first use.
func (d *DatabaseInterceptor) connection(ctx context.Context) (Conn, error) {
	if d.conn != nil {
		return d.conn, nil
	}

	raw, err := d.provider()
	if err != nil {
		return nil, &ConfigurationError{Err: fmt.Errorf("failed to load configuration: %w", err)}
	}
	cfg, err := ParseConfig(raw, DatabaseRequiredKeys...)
	if err != nil {
		return nil, err
	}

	conn, err := d.connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.conn = conn
	return conn, nil
}

// connect tries to open a connection cfg.Attempts+1 times. Failed attempts
// that will be retried are reported as EventFirstAttempt (first failure
// only) and EventProgressIncrease; the final failure is reported as
// EventDBFail.
func (d *DatabaseInterceptor) connect(ctx context.Context, cfg *Config) (Conn, error) {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(d.newBackOff(), uint64(cfg.Attempts)),
		ctx,
	)

	var (
		attempt int
		conn    Conn
		lastErr error
		aborted error
	)

	operation := func() error {
		current := attempt
		attempt++

		c, err := d.connector.Connect(ctx, cfg)
		if err == nil {
			conn = c
			return nil
		}
		lastErr = err

		d.logger.Debug("connection attempt failed",
			"attempt", current,
			"max_attempts", cfg.Attempts,
			"target", cfg.String(),
			"error", err,
		)

		if current >= cfg.Attempts {
			return backoff.Permanent(err)
		}

		if current == 0 {
			if rerr := d.report(EventFirstAttempt, nil); rerr != nil {
				aborted = rerr
				return backoff.Permanent(rerr)
			}
		}
		if rerr := d.report(EventProgressIncrease, nil); rerr != nil {
			aborted = rerr
			return backoff.Permanent(rerr)
		}

		return err
	}

	err := backoff.Retry(operation, policy)
	if err == nil {
		if rerr := d.report(EventConnected, nil); rerr != nil {
			if cerr := conn.Close(); cerr != nil {
				return nil, multierror.Append(rerr, fmt.Errorf("error closing connection: %w", cerr))
			}
			return nil, rerr
		}
		d.logger.Info("connected to database", "target", cfg.String(), "attempts", attempt)
		return conn, nil
	}

	if aborted != nil {
		return nil, aborted
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("connecting to database: %w", ctxErr)
	}

	connErr := &ConnectionError{Attempts: attempt, Err: lastErr}
	d.logger.Error("giving up connecting to database", "target", cfg.String(), "attempts", attempt, "error", lastErr)
	if rerr := d.report(EventDBFail, EventArgs{ArgError: connErr}); rerr != nil {
		return nil, rerr
	}
	return nil, connErr
}

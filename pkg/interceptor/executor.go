package interceptor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
)

// Executor fans suite lifecycle calls out to an ordered list of interceptors.
type Executor struct {
	interceptors []Interceptor
	logger       hclog.Logger
}

// ExecutorConfig holds configuration for the executor.
type ExecutorConfig struct {
	// Interceptors are invoked in this order on both enter and leave.
	Interceptors []Interceptor
	Logger       hclog.Logger
}

// NewExecutor creates a new interceptor executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	interceptors := make([]Interceptor, len(cfg.Interceptors))
	copy(interceptors, cfg.Interceptors)

	return &Executor{
		interceptors: interceptors,
		logger:       cfg.Logger.Named("executor"),
	}
}

// Interceptors returns the configured interceptors in invocation order.
func (e *Executor) Interceptors() []Interceptor {
	out := make([]Interceptor, len(e.interceptors))
	copy(out, e.interceptors)
	return out
}

// HandleSuiteStart calls OnEnter on every interceptor in configured order.
// The first error aborts the remaining interceptors and is returned.
func (e *Executor) HandleSuiteStart(ctx context.Context, suite Suite) error {
	return e.run(ctx, suite, "enter", func(i Interceptor) error {
		return i.OnEnter(ctx, suite)
	})
}

// HandleSuiteEnd calls OnLeave on every interceptor in configured order (the
// same order as HandleSuiteStart, not reversed).
func (e *Executor) HandleSuiteEnd(ctx context.Context, suite Suite) error {
	return e.run(ctx, suite, "leave", func(i Interceptor) error {
		return i.OnLeave(ctx, suite)
	})
}

func (e *Executor) run(ctx context.Context, suite Suite, hook string, call func(Interceptor) error) error {
	if !suite.HasPackage() {
		e.logger.Debug("suite has no package name, skipping interceptors",
			"hook", hook,
			"dir", suite.Dir,
		)
		return nil
	}

	for _, i := range e.interceptors {
		name := NameOf(i)
		start := time.Now()

		if err := call(i); err != nil {
			e.logger.Error("interceptor failed",
				"interceptor", name,
				"hook", hook,
				"package", suite.Package.Name,
				"error", err,
			)
			return fmt.Errorf("interceptor %s failed on %s: %w", name, hook, err)
		}

		e.logger.Debug("interceptor completed",
			"interceptor", name,
			"hook", hook,
			"package", suite.Package.Name,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}

	return nil
}

// Close releases resources held by interceptors that implement io.Closer.
// Every closer is called; failures are aggregated.
func (e *Executor) Close() error {
	var result *multierror.Error
	for _, i := range e.interceptors {
		c, ok := i.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			result = multierror.Append(result,
				fmt.Errorf("error closing interceptor %s: %w", NameOf(i), err))
		}
	}
	return result.ErrorOrNil()
}

package provision

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-hclog"
)

// DefaultRetryInterval is the pause between connection attempts.
const DefaultRetryInterval = time.Second

type settings struct {
	connector  Connector
	report     ReportFunc
	newBackOff func() backoff.BackOff
	logger     hclog.Logger
}

// Option configures an interceptor.
type Option func(*settings)

// WithConnector replaces the default SQLConnector.
func WithConnector(c Connector) Option {
	return func(s *settings) {
		s.connector = c
	}
}

// WithReporter replaces the console reporter.
func WithReporter(r ReportFunc) Option {
	return func(s *settings) {
		s.report = r
	}
}

// WithBackOff sets the policy used between connection attempts. The
// function is called once per connection sequence; the attempt budget from
// the configuration is applied on top of it.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(s *settings) {
		s.newBackOff = f
	}
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

func applyOptions(name string, opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	if s.logger == nil {
		s.logger = hclog.NewNullLogger()
	}
	s.logger = s.logger.Named(name)
	return s
}

func newSettings(name string, opts []Option) settings {
	s := applyOptions(name, opts)

	if s.report == nil {
		s.report = ConsoleReporter(os.Stdout)
	}
	if s.newBackOff == nil {
		s.newBackOff = func() backoff.BackOff {
			return backoff.NewConstantBackOff(DefaultRetryInterval)
		}
	}
	if s.connector == nil {
		s.connector = SQLConnector{Logger: s.logger}
	}

	return s
}

// loggerOption returns the logger configured by opts. Interceptors that do
// not connect through a Connector reject the connection options.
func loggerOption(name string, opts []Option) (hclog.Logger, error) {
	s := applyOptions(name, opts)

	var unsupported []string
	if s.connector != nil {
		unsupported = append(unsupported, "WithConnector")
	}
	if s.report != nil {
		unsupported = append(unsupported, "WithReporter")
	}
	if s.newBackOff != nil {
		unsupported = append(unsupported, "WithBackOff")
	}
	if len(unsupported) > 0 {
		return nil, fmt.Errorf("%s interceptor does not support %s", name, strings.Join(unsupported, ", "))
	}

	return s.logger, nil
}

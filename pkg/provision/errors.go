package provision

import (
	"fmt"
	"strings"
)

// ConfigurationError reports missing or invalid connection settings. It is
// never retried.
type ConfigurationError struct {
	// Missing lists the required keys the provider did not return, in the
	// order they are required.
	Missing []string
	Err     error
}

func (e *ConfigurationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required database configuration: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid database configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ConnectionError is returned once the retry budget is spent.
type ConnectionError struct {
	// Attempts is the number of connection attempts made, including the first.
	Attempts int
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to database after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StatementError reports a failed CREATE or DROP statement.
type StatementError struct {
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("statement %q failed: %v", e.Statement, e.Err)
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

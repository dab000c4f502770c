package interceptor

import (
	"context"
	"fmt"
)

// Interceptor runs setup and teardown actions around a test suite boundary.
type Interceptor interface {
	// OnEnter is called before the suite runs.
	OnEnter(ctx context.Context, suite Suite) error

	// OnLeave is called after the suite finished.
	OnLeave(ctx context.Context, suite Suite) error
}

// Named is implemented by interceptors that want a stable name in logs and
// errors. Interceptors without a name are identified by their Go type.
type Named interface {
	Name() string
}

// Package describes the package a test suite belongs to.
type Package struct {
	// Name is the package identifier (e.g., "acme/foo-bar"). An empty name
	// means the suite is not tied to a package and interceptors are skipped.
	Name string

	// Metadata holds additional descriptor fields (module path, go version).
	Metadata map[string]string
}

// Suite is the context handed to every interceptor for one suite boundary.
// It is built once per suite and must be treated as read-only.
type Suite struct {
	Dir     string
	Package Package
}

// HasPackage reports whether the suite is tied to a named package.
func (s Suite) HasPackage() bool {
	return s.Package.Name != ""
}

// Hooks adapts a pair of functions to the Interceptor interface. Nil
// functions are no-ops.
type Hooks struct {
	HookName  string
	EnterFunc func(ctx context.Context, suite Suite) error
	LeaveFunc func(ctx context.Context, suite Suite) error
}

// Name implements Named.
func (h Hooks) Name() string {
	if h.HookName == "" {
		return "hooks"
	}
	return h.HookName
}

// OnEnter implements Interceptor.
func (h Hooks) OnEnter(ctx context.Context, suite Suite) error {
	if h.EnterFunc == nil {
		return nil
	}
	return h.EnterFunc(ctx, suite)
}

// OnLeave implements Interceptor.
func (h Hooks) OnLeave(ctx context.Context, suite Suite) error {
	if h.LeaveFunc == nil {
		return nil
	}
	return h.LeaveFunc(ctx, suite)
}

// NameOf returns the name used to identify an interceptor.
func NameOf(i Interceptor) string {
	if n, ok := i.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", i)
}

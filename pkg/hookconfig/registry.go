package hookconfig

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/suitedb/pkg/interceptor"
	"github.com/hashicorp-forge/suitedb/pkg/provision"
)

// Factory builds an interceptor from its config file settings.
type Factory func(settings map[string]interface{}, logger hclog.Logger) (interceptor.Interceptor, error)

// Registry maps interceptor types to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the built-in "database" and
// "schema" interceptors.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("database", func(settings map[string]interface{}, logger hclog.Logger) (interceptor.Interceptor, error) {
		return provision.NewDatabaseInterceptor(provision.StaticConfig(settings), provision.WithLogger(logger)), nil
	})
	r.Register("schema", func(settings map[string]interface{}, logger hclog.Logger) (interceptor.Interceptor, error) {
		s, err := provision.NewSchemaInterceptor(provision.StaticConfig(settings), provision.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return s, nil
	})
	return r
}

// Register adds or replaces the factory for kind.
func (r *Registry) Register(kind string, f Factory) {
	r.factories[kind] = f
}

// Kinds returns the registered types, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Build creates an interceptor of the given kind.
func (r *Registry) Build(kind string, settings map[string]interface{}, logger hclog.Logger) (interceptor.Interceptor, error) {
	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("unknown interceptor type %q (known: %s)", kind, strings.Join(r.Kinds(), ", "))
	}
	return f(settings, logger)
}

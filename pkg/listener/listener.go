package listener

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/suitedb/pkg/descriptor"
	"github.com/hashicorp-forge/suitedb/pkg/hookconfig"
	"github.com/hashicorp-forge/suitedb/pkg/interceptor"
)

// Runner runs a test binary's tests. *testing.M implements it.
type Runner interface {
	Run() int
}

type options struct {
	dir          string
	pkg          *interceptor.Package
	interceptors []interceptor.Interceptor
	configFile   string
	registry     *hookconfig.Registry
	logger       hclog.Logger
	fs           afero.Fs
}

// Option configures Main.
type Option func(*options)

// WithDir sets the suite directory (default: the working directory, which
// go test sets to the package directory).
func WithDir(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithPackage sets the package descriptor instead of discovering it from
// go.mod.
func WithPackage(pkg interceptor.Package) Option {
	return func(o *options) { o.pkg = &pkg }
}

// WithInterceptors sets the interceptors instead of loading a config file.
func WithInterceptors(interceptors ...interceptor.Interceptor) Option {
	return func(o *options) { o.interceptors = interceptors }
}

// WithConfigFile loads interceptors from path instead of searching for a
// config file.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithRegistry sets the registry used to build interceptors from the config
// file.
func WithRegistry(r *hookconfig.Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithFs sets the filesystem used for discovery.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// Main runs m between HandleSuiteStart and HandleSuiteEnd. Use it from
// TestMain:
//
//	func TestMain(m *testing.M) {
//		os.Exit(listener.Main(m))
//	}
//
// A failing enter hook stops the run before any test executes; a failing
// leave hook turns a passing run into a failing one.
func Main(m Runner, opts ...Option) int {
	o := newOptions(opts)
	logger := o.logger

	suite, executor, err := prepare(o)
	if err != nil {
		logger.Error("error preparing test suite", "error", err)
		return 1
	}
	defer func() {
		if err := executor.Close(); err != nil {
			logger.Warn("error closing interceptors", "error", err)
		}
	}()

	ctx := context.Background()
	if err := executor.HandleSuiteStart(ctx, suite); err != nil {
		logger.Error("suite setup failed, tests were not run", "package", suite.Package.Name, "error", err)
		return 1
	}

	code := m.Run()

	if err := executor.HandleSuiteEnd(ctx, suite); err != nil {
		logger.Error("suite teardown failed", "package", suite.Package.Name, "error", err)
		if code == 0 {
			code = 1
		}
	}

	return code
}

// Prepare resolves the suite and builds its executor the same way Main does,
// for callers that drive the hooks themselves. The caller must Close the
// executor.
func Prepare(opts ...Option) (interceptor.Suite, *interceptor.Executor, error) {
	return prepare(newOptions(opts))
}

func newOptions(opts []Option) options {
	o := options{
		registry: hookconfig.DefaultRegistry(),
		fs:       afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = hclog.New(&hclog.LoggerOptions{
			Name:   "suitedb",
			Level:  hclog.LevelFromString(os.Getenv("SUITEDB_LOG_LEVEL")),
			Output: os.Stderr,
		})
	}
	return o
}

func prepare(o options) (interceptor.Suite, *interceptor.Executor, error) {
	dir := o.dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return interceptor.Suite{}, nil, err
		}
		dir = wd
	}

	suite := interceptor.Suite{Dir: dir}
	if o.pkg != nil {
		suite.Package = *o.pkg
	} else {
		pkg, err := descriptor.Discover(o.fs, dir)
		if err != nil {
			return suite, nil, fmt.Errorf("error discovering package: %w", err)
		}
		suite.Package = pkg
	}

	interceptors, err := loadInterceptors(o, dir)
	if err != nil {
		return suite, nil, err
	}

	executor := interceptor.NewExecutor(interceptor.ExecutorConfig{
		Interceptors: interceptors,
		Logger:       o.logger,
	})

	var names []string
	for _, i := range executor.Interceptors() {
		names = append(names, interceptor.NameOf(i))
	}
	o.logger.Debug("suite prepared",
		"dir", suite.Dir,
		"package", suite.Package.Name,
		"interceptors", names,
	)

	return suite, executor, nil
}

func loadInterceptors(o options, dir string) ([]interceptor.Interceptor, error) {
	if o.interceptors != nil {
		return o.interceptors, nil
	}

	path := o.configFile
	if path == "" {
		found, err := hookconfig.Find(o.fs, dir)
		if errors.Is(err, hookconfig.ErrNotFound) {
			o.logger.Debug("no config file found, running without interceptors", "dir", dir)
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}

	return hookconfig.Load(o.fs, path, o.registry, o.logger)
}

package suite

import (
	"github.com/spf13/afero"

	"github.com/hashicorp-forge/suitedb/internal/cmd/base"
	"github.com/hashicorp-forge/suitedb/pkg/hookconfig"
	"github.com/hashicorp-forge/suitedb/pkg/interceptor"
	"github.com/hashicorp-forge/suitedb/pkg/listener"
)

// flags are shared by enter, leave and exec.
type flags struct {
	dir    string
	pkg    string
	config string
}

func (f *flags) bind(fs *base.FlagSet) {
	fs.StringVar(
		&f.dir, "dir", "",
		"Directory of the test package. Defaults to the working directory.",
	)
	fs.StringVar(
		&f.pkg, "package", "",
		"Package name, e.g. acme/shop. Defaults to the name derived from go.mod.",
	)
	fs.StringVar(
		&f.config, "config", "",
		"Path to the suitedb config file. Defaults to the nearest .suitedb.hcl,\n"+
			".suitedb.yaml or .suitedb.yml up to the module root.",
	)
}

// prepare resolves the suite and builds its executor from the flags.
func prepare(c *base.Command, f flags, reg *hookconfig.Registry, fs afero.Fs) (interceptor.Suite, *interceptor.Executor, error) {
	opts := []listener.Option{
		listener.WithLogger(c.Log),
		listener.WithDir(f.dir),
	}
	if f.pkg != "" {
		opts = append(opts, listener.WithPackage(interceptor.Package{Name: f.pkg}))
	}
	if f.config != "" {
		opts = append(opts, listener.WithConfigFile(f.config))
	}
	if reg != nil {
		opts = append(opts, listener.WithRegistry(reg))
	}
	if fs != nil {
		opts = append(opts, listener.WithFs(fs))
	}
	return listener.Prepare(opts...)
}

package hookconfig

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"

	"github.com/hashicorp-forge/suitedb/pkg/descriptor"
	"github.com/hashicorp-forge/suitedb/pkg/interceptor"
)

// FileNames are the config files looked up by Find, in order of preference.
var FileNames = []string{".suitedb.hcl", ".suitedb.yaml", ".suitedb.yml"}

// ErrNotFound is returned by Find when no config file exists.
var ErrNotFound = errors.New("no suitedb config file found")

// Entry is one configured interceptor.
type Entry struct {
	Type     string
	Settings map[string]interface{}
}

// hclFile represents the HCL configuration file.
type hclFile struct {
	Interceptors []hclInterceptor `hcl:"interceptor,block"`
}

type hclInterceptor struct {
	Type   string   `hcl:"type,label"`
	Remain hcl.Body `hcl:",remain"`
}

// yamlFile represents the YAML configuration file.
type yamlFile struct {
	Interceptors []map[string]interface{} `yaml:"interceptors"`
}

// Find looks for a config file in dir and its parents. The search stops at
// the module root (the directory holding go.mod) or the filesystem root.
func Find(fs afero.Fs, dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			ok, err := afero.Exists(fs, path)
			if err != nil {
				return "", err
			}
			if ok {
				return path, nil
			}
		}

		isRoot, err := afero.Exists(fs, filepath.Join(dir, descriptor.GoModFile))
		if err != nil {
			return "", err
		}
		parent := filepath.Dir(dir)
		if isRoot || parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}

// Load reads the config file at path and builds its interceptors, in file
// order, through reg.
func Load(fs afero.Fs, path string, reg *Registry, logger hclog.Logger) ([]interceptor.Interceptor, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	src, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	entries, err := Parse(path, src)
	if err != nil {
		return nil, err
	}

	interceptors := make([]interceptor.Interceptor, 0, len(entries))
	for i, entry := range entries {
		ic, err := reg.Build(entry.Type, entry.Settings, logger)
		if err != nil {
			return nil, fmt.Errorf("%s: interceptor #%d: %w", path, i+1, err)
		}
		interceptors = append(interceptors, ic)
	}

	logger.Debug("loaded interceptors", "config", path, "count", len(interceptors))
	return interceptors, nil
}

// Parse decodes config file contents. The format is chosen by the file
// extension.
func Parse(filename string, src []byte) ([]Entry, error) {
	switch ext := filepath.Ext(filename); ext {
	case ".hcl":
		return parseHCL(filename, src)
	case ".yaml", ".yml":
		return parseYAML(filename, src)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
}

func parseHCL(filename string, src []byte) ([]Entry, error) {
	var file hclFile
	if err := hclsimple.Decode(filename, src, nil, &file); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %w", err)
	}

	evalCtx := envContext()
	entries := make([]Entry, 0, len(file.Interceptors))
	for _, block := range file.Interceptors {
		attrs, diags := block.Remain.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("interceptor %q: %w", block.Type, diags)
		}

		settings := make(map[string]interface{}, len(attrs))
		for name, attr := range attrs {
			val, diags := attr.Expr.Value(evalCtx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("interceptor %q: %w", block.Type, diags)
			}
			v, err := ctyToGo(val)
			if err != nil {
				return nil, fmt.Errorf("interceptor %q: attribute %q: %w", block.Type, name, err)
			}
			settings[name] = v
		}

		entries = append(entries, Entry{Type: block.Type, Settings: settings})
	}

	return entries, nil
}

func parseYAML(filename string, src []byte) ([]Entry, error) {
	var file yamlFile
	if err := yaml.Unmarshal(src, &file); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", filename, err)
	}

	entries := make([]Entry, 0, len(file.Interceptors))
	for i, m := range file.Interceptors {
		kind, ok := m["type"].(string)
		if !ok || kind == "" {
			return nil, fmt.Errorf("%s: interceptor #%d has no type", filename, i+1)
		}

		settings := make(map[string]interface{}, len(m))
		for k, v := range m {
			if k != "type" {
				settings[k] = v
			}
		}
		entries = append(entries, Entry{Type: kind, Settings: settings})
	}

	return entries, nil
}

// envContext exposes the environment to HCL expressions as env.NAME.
func envContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(vars),
		},
	}
}

func ctyToGo(v cty.Value) (interface{}, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	switch v.Type() {
	case cty.String:
		return v.AsString(), nil
	case cty.Bool:
		return v.True(), nil
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return int(i), nil
			}
		}
		f, _ := bf.Float64()
		return f, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", v.Type().FriendlyName())
	}
}

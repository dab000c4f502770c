package descriptor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/hashicorp-forge/suitedb/pkg/interceptor"
)

// GoModFile is the file marking a module root.
const GoModFile = "go.mod"

// ErrNoModule is returned by FindModuleRoot when no go.mod is found.
var ErrNoModule = errors.New("no go.mod found")

// Discover builds the package descriptor for the tests in dir. A directory
// outside any module yields an empty package, which interceptors skip.
func Discover(fs afero.Fs, dir string) (interceptor.Package, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return interceptor.Package{}, err
	}

	root, err := FindModuleRoot(fs, dir)
	if errors.Is(err, ErrNoModule) {
		return interceptor.Package{}, nil
	}
	if err != nil {
		return interceptor.Package{}, err
	}

	path := filepath.Join(root, GoModFile)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return interceptor.Package{}, fmt.Errorf("error reading %s: %w", path, err)
	}

	f, err := modfile.ParseLax(path, data, nil)
	if err != nil {
		return interceptor.Package{}, fmt.Errorf("error parsing %s: %w", path, err)
	}
	if f.Module == nil {
		return interceptor.Package{}, fmt.Errorf("%s has no module directive", path)
	}

	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return interceptor.Package{}, err
	}

	metadata := map[string]string{
		"module": f.Module.Mod.Path,
		"root":   root,
	}
	if f.Go != nil {
		metadata["go"] = f.Go.Version
	}

	return interceptor.Package{
		Name:     PackageName(f.Module.Mod.Path, rel),
		Metadata: metadata,
	}, nil
}

// FindModuleRoot walks up from dir to the nearest directory holding go.mod.
func FindModuleRoot(fs afero.Fs, dir string) (string, error) {
	for {
		ok, err := afero.Exists(fs, filepath.Join(dir, GoModFile))
		if err != nil {
			return "", err
		}
		if ok {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoModule
		}
		dir = parent
	}
}

// PackageName derives a "vendor/name" package identifier from a module path
// and the test directory relative to the module root:
//
//	github.com/acme/shop, "."              -> acme/shop
//	github.com/acme/shop/v2, "."           -> acme/shop
//	github.com/acme/shop, "internal/store" -> acme/shop-internal-store
//	tools, "."                             -> tools
//	github.com/BurntSushi/toml, "."        -> burntsushi/toml
//	example.com/foo, "."                   -> example-com/foo
//	github.com/99designs/gqlgen, "."       -> _99designs/gqlgen
//
// Each test binary of a module gets its own name so that packages tested in
// parallel never share a database. The result is lowercase and contains only
// letters, digits, "-", "_" and "/", so the derived database name is a valid
// unquoted Postgres identifier.
func PackageName(modulePath, rel string) string {
	if prefix, _, ok := module.SplitPathVersion(modulePath); ok && prefix != "" {
		modulePath = prefix
	}

	elems := strings.Split(modulePath, "/")
	name := modulePath
	if len(elems) >= 2 {
		name = elems[len(elems)-2] + "/" + elems[len(elems)-1]
	}

	rel = filepath.ToSlash(rel)
	if rel != "." && rel != "" {
		name += "-" + strings.ReplaceAll(rel, "/", "-")
	}

	return normalize(name)
}

// normalize lowercases name and replaces every character Postgres does not
// accept in an unquoted identifier with "-". A leading digit gets a "_"
// prefix.
func normalize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_', r == '/':
			return r
		default:
			return '-'
		}
	}, name)

	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

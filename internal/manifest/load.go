package manifest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default manifest file name, looked up in the current directory.
const DefaultFileName = "monopack.yaml"

// Loads and validates the manifest at the given path.
//
// Every structural problem is fatal: a manifest that fails validation
// aborts the invocation before any target work starts.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrManifest, err)
	}
	m.Dir = filepath.Dir(abs)

	if err := m.validate(); err != nil {
		return nil, err
	}

	slog.Debug("manifest loaded", "path", path, "packages", len(m.Packages))

	return &m, nil
}

// Returns the absolute root directory of a package.
func (m *Manifest) PackageRoot(pkg *Package) string {
	return filepath.Join(m.Dir, pkg.Root)
}

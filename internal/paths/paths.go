package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Name used for directory and file naming.
	toolName = "monopack"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644
)

// Path to the scratch directory for intermediate staging.
//
//	Linux:   $XDG_CACHE_HOME/monopack or ~/.cache/monopack
//	macOS:   ~/Library/Caches/monopack
func Scratch() string {
	return filepath.Join(xdg.CacheHome, toolName)
}

// Default output root for materialized artifacts, next to the manifest.
func OutputRoot(manifestDir string) string {
	return filepath.Join(manifestDir, "dist")
}

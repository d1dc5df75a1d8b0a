package assemble

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// A file staged into a build context or archive.
type StagedFile struct {
	Source string // Absolute path on the host.
	Dest   string // Path relative to the context or archive root.
}

// A resolved extra-file copy: one glob match paired with its declared
// in-image destination.
type extraFile struct {
	staged StagedFile
	// Destination directory inside the image, from the copy rule.
	imageDest string
}

// Resolves the extra-file copy rules of a target against the package
// root, in declaration order.
//
// Matches within one glob are sorted so that assembly never depends on
// directory enumeration order. A rule matching nothing is an error:
// silently producing an artifact without the declared files is never
// correct.
func resolveExtraFiles(root string, rules []copyRule) ([]extraFile, error) {
	var files []extraFile

	for _, rule := range rules {
		matches, err := filepath.Glob(filepath.Join(root, rule.source))
		if err != nil {
			return nil, fmt.Errorf("%w: invalid glob %q: %v", ErrAssembly, rule.source, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: glob %q matched no files", ErrAssembly, rule.source)
		}
		sort.Strings(matches)

		for _, match := range matches {
			rel, err := filepath.Rel(root, match)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrAssembly, err)
			}
			if escapesRoot(rel) {
				return nil, fmt.Errorf("%w: glob %q resolves outside the package root (%s)", ErrAssembly, rule.source, match)
			}

			files = append(files, extraFile{
				staged:    StagedFile{Source: match, Dest: filepath.ToSlash(rel)},
				imageDest: rule.destination,
			})
		}
	}

	return files, nil
}

// Whether a root-relative path points outside the root. Staging such a
// path would later let Materialize write outside the output directory.
func escapesRoot(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// A copy rule in assembly form, decoupled from the manifest types so
// Docker and Lambda targets share the resolution path.
type copyRule struct {
	source      string
	destination string
}

// Checks a staged file list for destination collisions. Two distinct
// sources staged at the same path would silently overwrite each other.
func checkCollisions(files []StagedFile) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		if prev, dup := seen[f.Dest]; dup && prev != f.Source {
			return fmt.Errorf("%w: destination %q claimed by both %q and %q", ErrAssembly, f.Dest, prev, f.Source)
		}
		seen[f.Dest] = f.Source
	}
	return nil
}

// Joins an in-image directory and a file name with forward slashes.
func imagePath(dir, name string) string {
	return strings.TrimSuffix(dir, "/") + "/" + name
}

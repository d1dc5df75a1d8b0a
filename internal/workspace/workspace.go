package workspace

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"strings"
)

var ErrWorkspace = errors.New("workspace metadata query failed")

// A single resolved dependency of a package.
type Dependency struct {
	Name    string // Module path (e.g., "gopkg.in/yaml.v3").
	Version string // Resolved version (e.g., "3.0.1").
}

// Supplies the full transitive dependency closure of a package.
type Provider interface {
	Closure(ctx context.Context, root string) ([]Dependency, error)
}

// Template passed to `go list` to print one "path version" line per
// dependency module. Packages from the main module print an empty line.
const listFormat = "{{if .Module}}{{if .Module.Version}}{{.Module.Path}} {{.Module.Version}}{{end}}{{end}}"

// Resolves dependency closures by querying the Go toolchain.
type GoModules struct {
	// Path to the go binary. Empty uses "go" from PATH.
	GoBinary string
}

// Returns the transitive dependency closure of the package rooted at root.
//
// The closure covers every module any package under root imports,
// directly or transitively, with duplicates removed.
func (g *GoModules) Closure(ctx context.Context, root string) ([]Dependency, error) {
	bin := g.GoBinary
	if bin == "" {
		bin = "go"
	}

	cmd := exec.CommandContext(ctx, bin, "list", "-deps", "-f", listFormat, "./...")
	cmd.Dir = root

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrWorkspace, err, strings.TrimSpace(stderr.String()))
	}

	return parseClosure(bytes.NewReader(out))
}

// Parses "path version" lines into a deduplicated, sorted dependency set.
func parseClosure(r io.Reader) ([]Dependency, error) {
	seen := make(map[Dependency]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		name, version, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("%w: malformed dependency line %q", ErrWorkspace, line)
		}

		seen[Dependency{Name: name, Version: strings.TrimPrefix(version, "v")}] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspace, err)
	}

	deps := make([]Dependency, 0, len(seen))
	for dep := range seen {
		deps = append(deps, dep)
	}

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Name != deps[j].Name {
			return deps[i].Name < deps[j].Name
		}
		return deps[i].Version < deps[j].Version
	})

	return deps, nil
}

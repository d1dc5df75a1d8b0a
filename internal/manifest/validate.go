package manifest

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"golang.org/x/mod/semver"
)

// Validates the whole manifest.
func (m *Manifest) validate() error {
	if len(m.Packages) == 0 {
		return fmt.Errorf("%w: no packages declared", ErrManifest)
	}

	seen := make(map[string]struct{}, len(m.Packages))
	for _, pkg := range m.Packages {
		if _, dup := seen[pkg.Name]; dup {
			return fmt.Errorf("%w: duplicate package %q", ErrManifest, pkg.Name)
		}
		seen[pkg.Name] = struct{}{}

		if err := pkg.validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validates a single package and its targets.
func (p *Package) validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: package %q: %s", ErrManifest, p.Name, fmt.Sprintf(format, args...))
	}

	if p.Name == "" {
		return fmt.Errorf("%w: package with empty name", ErrManifest)
	}
	if !semver.IsValid("v" + p.Version) {
		return fail("invalid version %q", p.Version)
	}
	if len(p.Binaries) == 0 {
		return fail("no binaries declared")
	}

	names := make(map[string]struct{}, len(p.Targets))
	for _, t := range p.Targets {
		if t.Name == "" {
			return fail("target with empty name")
		}
		if _, dup := names[t.Name]; dup {
			return fail("duplicate target %q", t.Name)
		}
		names[t.Name] = struct{}{}

		if err := p.validateTarget(t, fail); err != nil {
			return err
		}
	}

	return nil
}

// Validates one distribution target against the package's declarations.
func (p *Package) validateTarget(t *Target, fail func(string, ...any) error) error {
	switch {
	case t.Docker != nil:
		d := t.Docker
		if d.Registry == "" {
			return fail("target %q: missing registry", t.Name)
		}
		if err := validateGlobs(d.ExtraFiles); err != nil {
			return fail("target %q: %v", t.Name, err)
		}
		if d.Template != "" && d.HasDiscreteFields() {
			// Configuration conflict, not an error: the custom template is
			// authoritative and the discrete instruction fields are ignored.
			slog.Warn("target declares both a template and discrete instruction fields; the template takes precedence",
				"package", p.Name,
				"target", t.Name,
			)
		}

	case t.Lambda != nil:
		l := t.Lambda
		if l.BinaryName == "" && len(p.Binaries) > 1 {
			return fail("target %q: %d candidate binaries and no binary_name", t.Name, len(p.Binaries))
		}
		if l.BinaryName != "" && !slices.Contains(p.Binaries, l.BinaryName) {
			return fail("target %q: unknown binary %q", t.Name, l.BinaryName)
		}
		if err := validateGlobs(l.ExtraFiles); err != nil {
			return fail("target %q: %v", t.Name, err)
		}
	}

	return nil
}

// Checks that every copy rule's source pattern is a syntactically valid
// glob. Whether a pattern matches anything is an assembly-time concern.
func validateGlobs(rules []CopyRule) error {
	for _, rule := range rules {
		if rule.Source == "" {
			return fmt.Errorf("copy rule with empty source")
		}
		if rule.Destination == "" {
			return fmt.Errorf("copy rule %q with empty destination", rule.Source)
		}
		if _, err := filepath.Match(rule.Source, ""); err != nil {
			return fmt.Errorf("invalid glob %q: %v", rule.Source, err)
		}
	}
	return nil
}

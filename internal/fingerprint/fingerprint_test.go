package fingerprint

import (
	"testing"

	"github.com/cruciblehq/monopack/internal/workspace"
)

func deps(pairs ...[2]string) []workspace.Dependency {
	out := make([]workspace.Dependency, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, workspace.Dependency{Name: p[0], Version: p[1]})
	}
	return out
}

func TestComputeOrderIndependence(t *testing.T) {
	base := deps(
		[2]string{"gopkg.in/yaml.v3", "3.0.1"},
		[2]string{"github.com/alecthomas/kong", "1.14.0"},
		[2]string{"golang.org/x/sync", "0.18.0"},
	)

	want := Compute(base)

	permutations := [][]workspace.Dependency{
		{base[1], base[0], base[2]},
		{base[2], base[1], base[0]},
		{base[0], base[2], base[1]},
	}

	for i, perm := range permutations {
		if got := Compute(perm); got != want {
			t.Errorf("permutation %d: digest = %s, want %s", i, got, want)
		}
	}
}

func TestComputeDeduplicates(t *testing.T) {
	once := deps([2]string{"golang.org/x/sync", "0.18.0"})
	twice := deps(
		[2]string{"golang.org/x/sync", "0.18.0"},
		[2]string{"golang.org/x/sync", "0.18.0"},
	)

	if Compute(once) != Compute(twice) {
		t.Error("duplicate entries changed the digest")
	}
}

func TestComputeSensitivity(t *testing.T) {
	base := deps(
		[2]string{"gopkg.in/yaml.v3", "3.0.1"},
		[2]string{"golang.org/x/sync", "0.18.0"},
	)
	want := Compute(base)

	mutations := map[string][]workspace.Dependency{
		"version change": deps(
			[2]string{"gopkg.in/yaml.v3", "3.0.2"},
			[2]string{"golang.org/x/sync", "0.18.0"},
		),
		"name change": deps(
			[2]string{"gopkg.in/yaml.v2", "3.0.1"},
			[2]string{"golang.org/x/sync", "0.18.0"},
		),
		"removal": deps(
			[2]string{"golang.org/x/sync", "0.18.0"},
		),
		"addition": deps(
			[2]string{"gopkg.in/yaml.v3", "3.0.1"},
			[2]string{"golang.org/x/sync", "0.18.0"},
			[2]string{"golang.org/x/mod", "0.22.0"},
		),
	}

	for name, mutated := range mutations {
		if Compute(mutated) == want {
			t.Errorf("%s: digest unchanged", name)
		}
	}
}

// Pairs whose concatenation is ambiguous without an injective separator
// must not collide.
func TestComputeInjectiveSeparator(t *testing.T) {
	a := deps([2]string{"ab", "1"})
	b := deps([2]string{"a", "b1"})

	if Compute(a) == Compute(b) {
		t.Error("digests collide for (ab,1) and (a,b1)")
	}
}

// Versions must sort numerically, not lexicographically, so that the
// serialization order is stable across semver boundaries.
func TestComputeSemverOrdering(t *testing.T) {
	a := deps(
		[2]string{"example.com/m", "1.9.0"},
		[2]string{"example.com/m", "1.10.0"},
	)
	b := deps(
		[2]string{"example.com/m", "1.10.0"},
		[2]string{"example.com/m", "1.9.0"},
	)

	if Compute(a) != Compute(b) {
		t.Error("digest depends on input order of semver versions")
	}
}

func TestCheck(t *testing.T) {
	h1 := Compute(deps([2]string{"example.com/a", "1.0.0"}))
	h2 := Compute(deps([2]string{"example.com/b", "2.0.0"}))

	if got := Check("", h1); got != FirstRun {
		t.Errorf("Check(absent) = %v, want FirstRun", got)
	}
	if got := Check(h1.String(), h1); got != Match {
		t.Errorf("Check(same) = %v, want Match", got)
	}
	if got := Check(h1.String(), h2); got != Mismatch {
		t.Errorf("Check(drifted) = %v, want Mismatch", got)
	}
}

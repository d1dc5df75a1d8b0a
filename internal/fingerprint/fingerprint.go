// Package fingerprint summarizes a package's transitive dependency
// closure into a single comparable digest and implements the drift
// policy against the digest declared in the manifest.
//
// The digest is deterministic: it depends only on the set of
// (name, version) pairs, never on their input order or multiplicity.
// Changing, adding, or removing any single dependency changes the
// digest with cryptographic-hash probability.
package fingerprint

import (
	"errors"
	"sort"
	"strings"

	"github.com/opencontainers/go-digest"
	"golang.org/x/mod/semver"

	"github.com/cruciblehq/monopack/internal/workspace"
)

var ErrMismatch = errors.New("dependency digest mismatch")

// Result of comparing a declared digest against a computed one.
type Outcome int

const (
	// No digest declared yet. The computed value should be persisted.
	FirstRun Outcome = iota

	// Declared and computed digests agree.
	Match

	// Declared and computed digests differ: the dependency closure has
	// drifted and the package likely needs a version bump.
	Mismatch
)

func (o Outcome) String() string {
	switch o {
	case FirstRun:
		return "first-run"
	case Match:
		return "match"
	case Mismatch:
		return "mismatch"
	default:
		return "unknown"
	}
}

// Computes the dependency digest of a closure.
//
// The closure is deduplicated by (name, version) identity and sorted by
// name, then by semantic-version order of the version (lexicographic
// when a version does not parse as semver). Each pair is serialized
// with a NUL separator and a newline terminator, neither of which can
// occur in module names or versions, so distinct closures can never
// serialize identically.
func Compute(deps []workspace.Dependency) digest.Digest {
	unique := make(map[workspace.Dependency]struct{}, len(deps))
	for _, dep := range deps {
		unique[dep] = struct{}{}
	}

	sorted := make([]workspace.Dependency, 0, len(unique))
	for dep := range unique {
		sorted = append(sorted, dep)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return compareVersions(sorted[i].Version, sorted[j].Version) < 0
	})

	digester := digest.Canonical.Digester()
	h := digester.Hash()
	for _, dep := range sorted {
		h.Write([]byte(dep.Name))
		h.Write([]byte{0})
		h.Write([]byte(dep.Version))
		h.Write([]byte{'\n'})
	}

	return digester.Digest()
}

// Compares two versions, using semantic-version ordering when both
// parse as semver and falling back to string comparison otherwise.
func compareVersions(a, b string) int {
	va, vb := "v"+a, "v"+b
	if semver.IsValid(va) && semver.IsValid(vb) {
		return semver.Compare(va, vb)
	}
	return strings.Compare(a, b)
}

// Compares a declared digest against a computed one.
//
// Pure: the caller decides whether a Mismatch blocks the pipeline.
func Check(declared string, computed digest.Digest) Outcome {
	switch declared {
	case "":
		return FirstRun
	case computed.String():
		return Match
	default:
		return Mismatch
	}
}

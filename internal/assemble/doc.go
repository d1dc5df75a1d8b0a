// Package assemble turns a package's distribution target configuration
// into a concrete artifact: a Docker build context (rendered Dockerfile
// plus a staged file tree) or an AWS Lambda zip archive.
//
// Assembly is deterministic. The same package, target, and filesystem
// contents always produce byte-identical output: glob matches are
// sorted, archive entries carry a fixed timestamp, and no wall-clock or
// random input is consulted. This lets build, dry-run, and check agree
// without side effects, and makes repeated pushes of the same version
// reproducible.
//
// Artifacts are never mutated after assembly; rebuilding means
// assembling a new value.
package assemble

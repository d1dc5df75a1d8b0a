// Package workspace supplies the resolved dependency closure of a package.
//
// The closure is obtained from the Go toolchain's module metadata: the
// provider shells out to `go list` in the package's directory and parses
// the module path and version of every package reachable from it. The
// result is a deduplicated set of (name, version) pairs; monopack never
// resolves version constraints itself.
package workspace

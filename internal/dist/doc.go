// Package dist orchestrates the build, check, dry-run, and push
// pipelines over the loaded manifest.
//
// Each (package, target) pair is an independent unit of work. A
// package's dependency fingerprint is checked exactly once, before any
// of its targets are dispatched; the result is shared read-only by all
// of that package's target workers. Units then run on a bounded worker
// pool. Failures are isolated per target: one target's problem never
// cancels its siblings, and every unit's outcome is collected into a
// summary whose worst result drives the process exit status.
//
// All external collaborators (dependency metadata, registry, object
// storage, container toolchain) are injected, so tests can substitute
// recording or failing doubles and dry-run can be proven to make zero
// network calls.
package dist

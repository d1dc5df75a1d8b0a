// Package manifest loads and validates the workspace manifest.
//
// The manifest is a YAML file (monopack.yaml by default) enumerating the
// packages of the monorepo. Each package declares its version, the
// binaries it builds, an optional dependency digest, and a list of
// named distribution targets. A target is a tagged variant: either a
// Docker image or an AWS Lambda archive. Declaration order of targets,
// extra files, and environment variables is preserved through loading,
// as it determines the order of generated instructions.
//
// Loading fails fast: every structural or referential problem in the
// manifest aborts the invocation before any target work starts. Once
// loaded, the model is read-only for the rest of the run.
package manifest

package dist

import (
	"time"

	"github.com/cruciblehq/monopack/internal/paths"
	"github.com/cruciblehq/monopack/internal/registry"
	"github.com/cruciblehq/monopack/internal/storage"
	"github.com/cruciblehq/monopack/internal/toolchain"
	"github.com/cruciblehq/monopack/internal/workspace"
)

// Environment variable consulted when a Lambda target omits its bucket.
const BucketEnvVar = "MONOPACK_S3_BUCKET"

const (
	defaultConcurrency = 4
	defaultCallTimeout = 30 * time.Second
)

// Build profile the artifacts are taken from.
type Mode int

const (
	Debug Mode = iota
	Release
)

func (m Mode) String() string {
	if m == Release {
		return "release"
	}
	return "debug"
}

// Controls pipeline execution.
type Options struct {
	Mode  Mode // Profile subdirectory binaries are read from.
	Force bool // Override fingerprint mismatches and push conflicts.

	// Directory holding built binaries, under a per-mode subdirectory.
	BinDir string

	// Root directory for materialized artifacts. Empty uses the
	// scratch directory, for invocations where the artifacts are
	// intermediate rather than the deliverable.
	Output string

	// Worker pool size for independent targets. Zero uses the default.
	Concurrency int

	// Timeout applied to each external network call. Zero uses the
	// default. Expired calls are reported as timeouts and retried only
	// by an explicit re-run, never internally.
	CallTimeout time.Duration
}

// External collaborators, injected so tests can substitute doubles and
// so all workers share single concurrency-safe client instances.
type Clients struct {
	Deps      workspace.Provider
	Tags      registry.TagChecker
	Provision registry.ProvisionerFunc
	Store     storage.ObjectStore
	Images    toolchain.ImageBuilder
}

// Executes pipeline commands against a manifest.
type Runner struct {
	opts    Options
	clients Clients
}

// Creates a runner, applying option defaults.
func New(opts Options, clients Clients) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.Output == "" {
		opts.Output = paths.Scratch()
	}
	return &Runner{opts: opts, clients: clients}
}

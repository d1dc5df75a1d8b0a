package dist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"

	"github.com/cruciblehq/monopack/internal/fingerprint"
	"github.com/cruciblehq/monopack/internal/manifest"
)

// Pipeline command selector.
type command int

const (
	cmdBuild command = iota
	cmdDryRun
	cmdPush
)

// Result of a package's one-time fingerprint gate, shared read-only by
// all of the package's target workers.
type gateResult struct {
	outcome  fingerprint.Outcome
	computed digest.Digest
	err      error
}

// Runs the fingerprint gate for a package.
func (r *Runner) gate(ctx context.Context, m *manifest.Manifest, pkg *manifest.Package) gateResult {
	deps, err := r.clients.Deps.Closure(ctx, m.PackageRoot(pkg))
	if err != nil {
		return gateResult{err: err}
	}

	computed := fingerprint.Compute(deps)
	outcome := fingerprint.Check(pkg.DepsDigest, computed)

	switch outcome {
	case fingerprint.FirstRun:
		slog.Warn("no dependency digest declared; record the computed value in the manifest",
			"package", pkg.Name,
			"digest", computed,
		)
	case fingerprint.Mismatch:
		slog.Warn("dependency closure has drifted; the package may need a version bump",
			"package", pkg.Name,
			"declared", pkg.DepsDigest,
			"computed", computed,
		)
	default:
		slog.Debug("dependency digest up to date", "package", pkg.Name, "digest", computed)
	}

	return gateResult{outcome: outcome, computed: computed}
}

// Runs the fingerprint check for every package with at least one
// target. No artifacts are assembled and nothing is contacted beyond
// the workspace metadata provider.
func (r *Runner) Check(ctx context.Context, m *manifest.Manifest) *Summary {
	summary := &Summary{}

	for _, pkg := range m.Packages {
		if len(pkg.Targets) == 0 {
			continue
		}

		gate := r.gate(ctx, m, pkg)
		result := Result{Package: pkg.Name, Outcome: gate.outcome}

		switch {
		case gate.err != nil:
			result.Status = StatusFailed
			result.Err = gate.err
		case gate.outcome == fingerprint.Match:
			result.Status = StatusMatch
		case gate.outcome == fingerprint.FirstRun:
			result.Status = StatusFirstRun
		default:
			result.Status = StatusMismatch
			result.Err = fmt.Errorf("%w: declared %s, computed %s", fingerprint.ErrMismatch, pkg.DepsDigest, gate.computed)
		}

		summary.Results = append(summary.Results, result)
	}

	return summary
}

// Assembles and materializes every target's artifact locally. No
// registry or storage endpoint is contacted.
func (r *Runner) Build(ctx context.Context, m *manifest.Manifest) *Summary {
	return r.run(ctx, m, cmdBuild)
}

// Performs the same steps as Build and additionally renders the push
// action each target would take, while guaranteeing zero calls to any
// registry or storage client.
func (r *Runner) DryRun(ctx context.Context, m *manifest.Manifest) *Summary {
	return r.run(ctx, m, cmdDryRun)
}

// Builds every target and uploads the artifacts to their destinations.
func (r *Runner) Push(ctx context.Context, m *manifest.Manifest) *Summary {
	return r.run(ctx, m, cmdPush)
}

// Executes a pipeline command over all (package, target) units.
//
// Each package's gate is evaluated once, up front. Targets of gated
// packages are then dispatched to a bounded worker pool; each worker
// writes its result into a dedicated slot, so aggregation needs no
// locking and one target's failure never cancels a sibling.
func (r *Runner) run(ctx context.Context, m *manifest.Manifest, cmd command) *Summary {
	type unit struct {
		pkg    *manifest.Package
		target *manifest.Target
		gate   gateResult
	}

	var units []unit
	var blocked []Result

	for _, pkg := range m.Packages {
		if len(pkg.Targets) == 0 {
			continue
		}

		gate := r.gate(ctx, m, pkg)

		switch {
		case gate.err != nil:
			for _, target := range pkg.Targets {
				blocked = append(blocked, Result{
					Package: pkg.Name,
					Target:  target.Name,
					Kind:    target.Kind(),
					Status:  StatusFailed,
					Err:     gate.err,
				})
			}

		case gate.outcome == fingerprint.Mismatch && !r.opts.Force:
			for _, target := range pkg.Targets {
				blocked = append(blocked, Result{
					Package: pkg.Name,
					Target:  target.Name,
					Kind:    target.Kind(),
					Status:  StatusFailed,
					Outcome: gate.outcome,
					Err:     fmt.Errorf("%w: declared %s, computed %s", fingerprint.ErrMismatch, pkg.DepsDigest, gate.computed),
				})
			}

		default:
			for _, target := range pkg.Targets {
				units = append(units, unit{pkg: pkg, target: target, gate: gate})
			}
		}
	}

	results := make([]Result, len(units))

	g := new(errgroup.Group)
	g.SetLimit(r.opts.Concurrency)

	for i, u := range units {
		g.Go(func() error {
			results[i] = r.runUnit(ctx, m, cmd, u.pkg, u.target, u.gate)
			return nil
		})
	}

	// Workers never return errors; failures live in their result slots.
	g.Wait()

	return &Summary{Results: append(blocked, results...)}
}

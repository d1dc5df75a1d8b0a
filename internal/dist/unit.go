package dist

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cruciblehq/monopack/internal/assemble"
	"github.com/cruciblehq/monopack/internal/manifest"
	"github.com/cruciblehq/monopack/internal/registry"
)

// Returns a context bounded by the per-call timeout.
func (r *Runner) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.opts.CallTimeout)
}

// Directory holding the package's built binaries for the active mode.
func (r *Runner) modeBinDir() string {
	return filepath.Join(r.opts.BinDir, r.opts.Mode.String())
}

// Directory a unit materializes its artifact into.
func (r *Runner) unitDir(pkg *manifest.Package, target *manifest.Target) string {
	return filepath.Join(r.opts.Output, r.opts.Mode.String(), target.Kind(), pkg.Name, target.Name)
}

// Executes one (package, target) unit for the given command.
func (r *Runner) runUnit(ctx context.Context, m *manifest.Manifest, cmd command, pkg *manifest.Package, target *manifest.Target, gate gateResult) Result {
	result := Result{
		Package: pkg.Name,
		Target:  target.Name,
		Kind:    target.Kind(),
		Outcome: gate.outcome,
	}

	if target.Docker != nil {
		r.runDocker(ctx, m, cmd, pkg, target, &result)
	} else {
		r.runLambda(ctx, m, cmd, pkg, target, &result)
	}

	return result
}

// Sets the unit's terminal failure state.
func fail(result *Result, err error) {
	result.Status = StatusFailed
	result.Err = err
	slog.Error("target failed", "package", result.Package, "target", result.Target, "error", err)
}

func (r *Runner) runDocker(ctx context.Context, m *manifest.Manifest, cmd command, pkg *manifest.Package, target *manifest.Target, result *Result) {
	bc, err := assemble.Docker(pkg, target.Docker, target.Name, m.PackageRoot(pkg), r.modeBinDir())
	if err != nil {
		fail(result, err)
		return
	}

	dir := r.unitDir(pkg, target)
	if err := bc.Materialize(dir); err != nil {
		fail(result, err)
		return
	}

	slog.Info("build context materialized",
		"package", pkg.Name,
		"target", target.Name,
		"dir", dir,
		"files", len(bc.Files),
	)

	class := registry.Classify(target.Docker.Registry)

	switch cmd {
	case cmdBuild:
		result.Status = StatusBuilt
		return

	case cmdDryRun:
		result.Status = StatusBuilt
		result.Planned = fmt.Sprintf("docker push %s (%s registry)", bc.Tag, class.Kind)
		return
	}

	if r.opts.Mode == Debug && !r.opts.Force {
		result.Status = StatusSkipped
		result.Err = ErrDebugPush
		return
	}

	if err := r.clients.Images.Build(ctx, dir, bc.Tag); err != nil {
		fail(result, err)
		return
	}

	{
		callCtx, cancel := r.callCtx(ctx)
		err := registry.EnsureRepository(callCtx, r.clients.Provision, class, target.Name, target.Docker.AllowRegistryCreation)
		cancel()
		if err != nil {
			fail(result, err)
			return
		}
	}

	callCtx, cancel := r.callCtx(ctx)
	exists, err := r.clients.Tags.TagExists(callCtx, bc.Tag)
	cancel()
	if err != nil {
		fail(result, err)
		return
	}

	if exists && !r.opts.Force {
		result.Status = StatusSkipped
		result.Err = fmt.Errorf("%w: tag %s", ErrPushConflict, bc.Tag)
		return
	}

	if err := r.clients.Images.Push(ctx, bc.Tag); err != nil {
		fail(result, err)
		return
	}

	result.Status = StatusPushed
	slog.Info("image pushed", "package", pkg.Name, "target", target.Name, "tag", bc.Tag)
}

func (r *Runner) runLambda(ctx context.Context, m *manifest.Manifest, cmd command, pkg *manifest.Package, target *manifest.Target, result *Result) {
	archive, err := assemble.Lambda(pkg, target.Lambda, m.PackageRoot(pkg), r.modeBinDir())
	if err != nil {
		fail(result, err)
		return
	}

	file := filepath.Join(r.unitDir(pkg, target), fmt.Sprintf("%s-%s.zip", pkg.Name, pkg.Version))
	if err := archive.Materialize(file); err != nil {
		fail(result, err)
		return
	}

	slog.Info("archive materialized",
		"package", pkg.Name,
		"target", target.Name,
		"file", file,
		"digest", archive.Digest,
		"entries", len(archive.Entries),
	)

	bucket := target.Lambda.Bucket
	if bucket == "" {
		bucket = os.Getenv(BucketEnvVar)
	}
	if bucket == "" {
		fail(result, fmt.Errorf("target %q: no bucket configured and %s is unset", target.Name, BucketEnvVar))
		return
	}

	switch cmd {
	case cmdBuild:
		result.Status = StatusBuilt
		return

	case cmdDryRun:
		result.Status = StatusBuilt
		result.Planned = fmt.Sprintf("upload s3://%s/%s", bucket, archive.Key)
		return
	}

	if r.opts.Mode == Debug && !r.opts.Force {
		result.Status = StatusSkipped
		result.Err = ErrDebugPush
		return
	}

	callCtx, cancel := r.callCtx(ctx)
	exists, err := r.clients.Store.Exists(callCtx, target.Lambda.Region, bucket, archive.Key)
	cancel()
	if err != nil {
		fail(result, err)
		return
	}

	if exists && !r.opts.Force {
		result.Status = StatusSkipped
		result.Err = fmt.Errorf("%w: s3://%s/%s", ErrPushConflict, bucket, archive.Key)
		return
	}

	callCtx, cancel = r.callCtx(ctx)
	err = r.clients.Store.Put(callCtx, target.Lambda.Region, bucket, archive.Key, archive.Data, archive.Digest)
	cancel()
	if err != nil {
		fail(result, err)
		return
	}

	result.Status = StatusPushed
	slog.Info("archive uploaded", "package", pkg.Name, "target", target.Name, "bucket", bucket, "key", archive.Key)
}

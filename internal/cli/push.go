package cli

import (
	"context"

	"github.com/cruciblehq/monopack/internal/dist"
	"github.com/cruciblehq/monopack/internal/registry"
	"github.com/cruciblehq/monopack/internal/storage"
	"github.com/cruciblehq/monopack/internal/toolchain"
	"github.com/cruciblehq/monopack/internal/workspace"
)

// Represents the 'monopack push' command.
type PushCmd struct {
	DryRun bool `help:"Report the push actions without contacting any endpoint."`
}

// Executes the push command.
//
// Builds every target and uploads the artifacts: Docker images via the
// docker CLI, Lambda archives via S3. Existing destinations are
// reported as conflicts unless --force is set.
func (c *PushCmd) Run(ctx context.Context) error {
	if c.DryRun {
		return (&DryRunCmd{}).Run(ctx)
	}

	m, err := loadManifest()
	if err != nil {
		return err
	}

	store, err := storage.NewS3(ctx)
	if err != nil {
		return err
	}

	runner := dist.New(runnerOptions(m), dist.Clients{
		Deps:      &workspace.GoModules{},
		Tags:      registry.NewRemote(),
		Provision: registry.NewECRProvisioner,
		Store:     store,
		Images:    &toolchain.DockerCLI{},
	})

	return report(runner.Push(ctx, m))
}

package cli

import (
	"context"

	"github.com/cruciblehq/monopack/internal/dist"
	"github.com/cruciblehq/monopack/internal/workspace"
)

// Represents the 'monopack dry-run' command.
type DryRunCmd struct{}

// Executes the dry-run command.
//
// Performs the same work as build and additionally reports the push
// action each target would take. No push client is even constructed,
// so a dry run cannot reach a registry or bucket.
func (c *DryRunCmd) Run(ctx context.Context) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	runner := dist.New(deliverableOptions(m), dist.Clients{
		Deps: &workspace.GoModules{},
	})

	return report(runner.DryRun(ctx, m))
}

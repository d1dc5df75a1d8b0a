package cli

import (
	"context"

	"github.com/cruciblehq/monopack/internal/dist"
	"github.com/cruciblehq/monopack/internal/workspace"
)

// Represents the 'monopack check' command.
type CheckCmd struct{}

// Executes the check command.
//
// Verifies every package's declared dependency digest against the
// workspace. Exits non-zero on any mismatch, regardless of --force.
func (c *CheckCmd) Run(ctx context.Context) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	runner := dist.New(runnerOptions(m), dist.Clients{
		Deps: &workspace.GoModules{},
	})

	return report(runner.Check(ctx, m))
}

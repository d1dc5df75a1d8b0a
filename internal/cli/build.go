package cli

import (
	"context"

	"github.com/cruciblehq/monopack/internal/dist"
	"github.com/cruciblehq/monopack/internal/workspace"
)

// Represents the 'monopack build' command.
type BuildCmd struct{}

// Executes the build command.
//
// Assembles and materializes every target's artifact under the output
// directory. No registry or storage endpoint is contacted.
func (c *BuildCmd) Run(ctx context.Context) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}

	runner := dist.New(deliverableOptions(m), dist.Clients{
		Deps: &workspace.GoModules{},
	})

	return report(runner.Build(ctx, m))
}

package registry

import (
	"context"
	"fmt"
	"log/slog"
)

// Checks whether an exact image reference exists remotely.
//
// Implementations must be safe for concurrent use: one checker is
// shared by all target workers.
type TagChecker interface {
	TagExists(ctx context.Context, ref string) (bool, error)
}

// Creates and inspects repositories on a managed registry.
type Provisioner interface {
	RepositoryExists(ctx context.Context, name string) (bool, error)
	CreateRepository(ctx context.Context, name string) error
}

// Produces a provisioner for a classified managed registry. Returns an
// error when the classification's provider cannot be reached.
type ProvisionerFunc func(ctx context.Context, class Classification) (Provisioner, error)

// Makes sure the repository for an image exists before a push.
//
// Present repositories pass immediately. An absent repository on a
// managed registry is provisioned when allowCreate is set; otherwise
// the push cannot proceed and the absence is reported. Generic
// registries are outside monopack's control: whether a missing
// repository is created implicitly on push is registry-specific, so no
// existence check is attempted and the push itself surfaces the result.
func EnsureRepository(ctx context.Context, provision ProvisionerFunc, class Classification, name string, allowCreate bool) error {
	if class.Kind != ECR {
		return nil
	}

	provisioner, err := provision(ctx, class)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRegistry, err)
	}

	exists, err := provisioner.RepositoryExists(ctx, name)
	if err != nil {
		return mapExternal(err)
	}
	if exists {
		return nil
	}

	if !allowCreate {
		return fmt.Errorf("%w: repository %q", ErrRepositoryMissing, name)
	}

	slog.Info("creating repository",
		"repository", name,
		"account", class.Account,
		"region", class.Region,
	)

	if err := provisioner.CreateRepository(ctx, name); err != nil {
		return mapExternal(err)
	}

	return nil
}

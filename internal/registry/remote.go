package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/containerd/containerd/v2/core/remotes"
	"github.com/containerd/containerd/v2/core/remotes/docker"
	"github.com/containerd/errdefs"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Checks image references against remote registries over the
// distribution protocol.
//
// Safe for concurrent use; one Remote is shared by all workers.
type Remote struct {
	resolver remotes.Resolver
}

// Creates a remote checker using the default registry host
// configuration (credentials from the ambient Docker config).
func NewRemote() *Remote {
	return &Remote{
		resolver: docker.NewResolver(docker.ResolverOptions{
			Hosts: docker.ConfigureDefaultRegistries(),
		}),
	}
}

// Reports whether the exact reference (registry/name:tag) exists.
//
// Resolution failures other than not-found are surfaced as registry
// errors; a context deadline maps to ErrTimeout.
func (r *Remote) TagExists(ctx context.Context, ref string) (bool, error) {
	name, desc, err := r.resolver.Resolve(ctx, ref)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return false, nil
		}
		if err = mapExternal(err); errors.Is(err, ErrTimeout) || errors.Is(err, ErrDenied) {
			return false, err
		}
		return false, fmt.Errorf("%w: resolving %q: %v", ErrRegistry, ref, err)
	}

	logResolved(name, desc)

	return true, nil
}

// Records the manifest descriptor a reference resolved to.
func logResolved(ref string, desc ocispec.Descriptor) {
	slog.Debug("reference resolved",
		"ref", ref,
		"digest", desc.Digest,
		"mediaType", desc.MediaType,
		"size", desc.Size,
	)
}

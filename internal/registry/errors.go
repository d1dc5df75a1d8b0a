package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
)

var (
	ErrRegistry          = errors.New("registry operation failed")
	ErrRepositoryMissing = errors.New("repository does not exist and creation is not allowed")
	ErrTimeout           = errors.New("registry call timed out")
	ErrDenied            = errors.New("registry access denied")
)

// Whether the error is worth retrying on a later invocation. Timeouts
// and transient network failures are; permission and configuration
// problems are not.
func Retryable(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Maps an external call's failure onto the registry taxonomy: context
// deadlines become ErrTimeout (retryable) and authorization failures
// become ErrDenied (not retryable). Other errors pass through
// untouched.
func mapExternal(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errdefs.IsUnauthorized(err) || errdefs.IsPermissionDenied(err):
		return fmt.Errorf("%w: %v", ErrDenied, err)
	}
	return err
}

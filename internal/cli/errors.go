package cli

import "errors"

var ErrFailedTargets = errors.New("one or more targets did not succeed")

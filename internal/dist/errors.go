package dist

import "errors"

var (
	ErrPushConflict = errors.New("artifact already exists at destination")
	ErrDebugPush    = errors.New("refusing to push debug artifacts; build with --release or override with --force")
)

package manifest

import "errors"

var ErrManifest = errors.New("invalid manifest")

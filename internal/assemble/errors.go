package assemble

import "errors"

var ErrAssembly = errors.New("artifact assembly failed")

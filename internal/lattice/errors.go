package lattice

import "errors"

// ErrInvalidConfig indicates simulation settings that cannot be discretized.
var ErrInvalidConfig = errors.New("lattice: invalid config")

package linalg

import "errors"

// ErrNumericalFailure indicates the eigensolver did not converge or was fed
// or produced non-finite values.
var ErrNumericalFailure = errors.New("linalg: numerical failure")

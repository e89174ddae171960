package basis

import (
	"errors"
	"fmt"
)

// ErrBasisMismatch indicates a vector or operator used with an incompatible basis.
var ErrBasisMismatch = errors.New("basis: basis mismatch")

// MismatchError carries the dimensions involved in a failed composition.
type MismatchError struct {
	Op   string
	Want int
	Got  int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("basis: %s: dimension mismatch (want %d, got %d)", e.Op, e.Want, e.Got)
}

func (e *MismatchError) Unwrap() error {
	return ErrBasisMismatch
}

func mismatch(op string, want, got int) error {
	return &MismatchError{Op: op, Want: want, Got: got}
}

package vcamutils

import (
	"github.com/pkg/errors"
)

// ErrShapeMismatch is returned when two batched inputs that must correspond
// 1:1 disagree in length or rank. It is never broadcast or truncated away.
var ErrShapeMismatch = errors.New("shape mismatch between corresponding inputs")

// ErrUnsupportedMode is returned when a conversion mode is recognized but
// not implemented. Callers get a failure, never a silent no-op.
var ErrUnsupportedMode = errors.New("unsupported conversion mode")

// NewShapeMismatchError annotates ErrShapeMismatch with the two disagreeing sizes.
func NewShapeMismatchError(what string, a, b int) error {
	return errors.Wrapf(ErrShapeMismatch, "%s: %d vs %d", what, a, b)
}

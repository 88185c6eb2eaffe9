package csm

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrInvalidDimensions is returned when a buffer or target is created with
	// a non-positive size.
	ErrInvalidDimensions = errors.New("invalid dimensions")
	// ErrOutOfBounds is returned by bounds checked render target accesses.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrBadID is returned when a slot, buffer or material ID is out of range or unset.
	ErrBadID = errors.New("bad ID")
	// ErrNilResource is returned when a required resource argument is nil.
	ErrNilResource = errors.New("nil resource")
	// ErrInvalidMesh is returned when mesh data is malformed.
	ErrInvalidMesh = errors.New("invalid mesh")
	// ErrComponents is returned when an attribute or buffer component count is outside 1..MaxComponents.
	ErrComponents = errors.New("invalid component count")
	// ErrAttributeMismatch is returned when the vertices of a triangle disagree
	// on the component count of a vertex output slot.
	ErrAttributeMismatch = errors.New("vertex output component mismatch")
	// ErrClosed is returned when drawing with a closed DrawContext.
	ErrClosed = errors.New("draw context closed")
)

// errMsg wraps err with the calling function name and line number.
func errMsg(err error, msg string) error {
	pc, _, line, ok := runtime.Caller(1)
	if !ok {
		return fmt.Errorf("?: %s: %w", msg, err)
	}
	fn := runtime.FuncForPC(pc)
	return fmt.Errorf("%s line %d: %s: %w", fn.Name(), line, msg, err)
}

// fatalf reports a broken pipeline invariant. It logs the state and panics,
// it never returns.
func fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	Logger().Error("csm: invariant violated", "state", msg)
	panic("csm: " + msg)
}

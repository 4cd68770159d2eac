package occt

import (
	"errors"
	"fmt"
	"runtime"
)

var (
	// ErrIndexOutOfRange is returned by index based accessors given a bad index.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidInput is returned when constructor arguments are inconsistent.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDegenerate is returned for geometry with vanishing size or direction.
	ErrDegenerate = errors.New("degenerate geometry")
)

// ErrMsg returns an error wrapping ErrInvalidInput with a message, the
// calling function name and line number.
func ErrMsg(msg string) error { return callerError(ErrInvalidInput, msg) }

// DegenerateMsg is ErrMsg for geometry that collapses, it wraps ErrDegenerate.
func DegenerateMsg(msg string) error { return callerError(ErrDegenerate, msg) }

func callerError(kind error, msg string) error {
	pc, _, line, ok := runtime.Caller(2)
	if !ok {
		return fmt.Errorf("?: %w: %s", kind, msg)
	}
	fn := runtime.FuncForPC(pc)
	return fmt.Errorf("%s line %d: %w: %s", fn.Name(), line, kind, msg)
}

// IndexError wraps ErrIndexOutOfRange with the offending index and valid length.
func IndexError(index, length int) error {
	return fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, index, length)
}

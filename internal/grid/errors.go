package grid

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched (via errors.Is) by every caller contract
// violation reported by this package and by the session controller.
var ErrInvalidArgument = errors.New("invalid argument")

// ArgumentError describes which argument of which operation was rejected.
type ArgumentError struct {
	Op    string // operation name, e.g. "resolve"
	Field string // offending argument, e.g. "changedID"
	Err   error
}

func (e *ArgumentError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Field, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is makes every ArgumentError match ErrInvalidArgument.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// InvalidArgument builds an ArgumentError with a formatted cause.
func InvalidArgument(op, field, format string, args ...any) error {
	return &ArgumentError{Op: op, Field: field, Err: fmt.Errorf(format, args...)}
}

// IsInvalidArgument reports whether err is a caller contract violation.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

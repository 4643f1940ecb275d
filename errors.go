// Package gpudbn structured error types for kernel preconditions and launches
package gpudbn

import (
	"errors"
	"fmt"
)

// ErrorType represents categories of errors
type ErrorType int

const (
	// Invalid argument errors (dimension mismatch, bad ranges)
	ErrTypeInvalidArg ErrorType = iota
	// Execution errors (a kernel thread faulted during a launch)
	ErrTypeExecution
	// Numerical errors (accelerated and reference paths disagree)
	ErrTypeNumerical
	// Device errors
	ErrTypeDevice
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Op      string      // Operation that failed
	Message string      // Human-readable message
	Err     error       // Underlying error if any
	Context interface{} // Additional context
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gpudbn %s error in %s: %s (caused by: %v)",
			e.Type.String(), e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("gpudbn %s error in %s: %s",
		e.Type.String(), e.Op, e.Message)
}

// Unwrap allows error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// String returns the error type as a string
func (t ErrorType) String() string {
	switch t {
	case ErrTypeInvalidArg:
		return "InvalidArgument"
	case ErrTypeExecution:
		return "Execution"
	case ErrTypeNumerical:
		return "Numerical"
	case ErrTypeDevice:
		return "Device"
	default:
		return "Unknown"
	}
}

// Sentinel causes. Kernel preconditions wrap one of these so callers can
// match with errors.Is regardless of the operation that failed.
var (
	// ErrDimensionMismatch indicates a buffer length inconsistent with the
	// declared height/width of an operand.
	ErrDimensionMismatch = errors.New("gpudbn: dimension mismatch")

	// ErrNotBlockAligned indicates a tiled multiply operand whose dimensions
	// are not multiples of the strategy block size.
	ErrNotBlockAligned = errors.New("gpudbn: dimensions not block aligned")

	// ErrBadRange indicates an index range outside of a buffer.
	ErrBadRange = errors.New("gpudbn: index range out of bounds")

	// ErrBadBlockSize indicates a block size that is zero, negative or
	// larger than MaxThreadsPerBlock allows.
	ErrBadBlockSize = errors.New("gpudbn: invalid block size")

	// ErrKernelPanic is the cause attached to an execution error when a
	// kernel thread panicked.
	ErrKernelPanic = errors.New("gpudbn: kernel thread panicked")
)

// Common error constructors

// NewInvalidArgError creates an invalid argument error
func NewInvalidArgError(op string, message string) error {
	return &Error{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: message,
	}
}

// newPreconditionError creates an invalid argument error wrapping a sentinel.
func newPreconditionError(op string, cause error, format string, args ...interface{}) error {
	return &Error{
		Type:    ErrTypeInvalidArg,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

// NewExecutionError creates an execution error
func NewExecutionError(op string, message string, err error) error {
	return &Error{
		Type:    ErrTypeExecution,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// NewNumericalError creates a numerical error
func NewNumericalError(op string, message string, context interface{}) error {
	return &Error{
		Type:    ErrTypeNumerical,
		Op:      op,
		Message: message,
		Context: context,
	}
}

// ErrInvalidDevice indicates invalid device ID
var ErrInvalidDevice = &Error{Type: ErrTypeDevice, Op: "SetDevice", Message: "invalid device ID"}

func isType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// IsInvalidArgError checks if an error is an invalid argument error
func IsInvalidArgError(err error) bool {
	return isType(err, ErrTypeInvalidArg)
}

// IsExecutionError checks if an error is an execution error
func IsExecutionError(err error) bool {
	return isType(err, ErrTypeExecution)
}

// IsNumericalError checks if an error is a numerical error
func IsNumericalError(err error) bool {
	return isType(err, ErrTypeNumerical)
}

// IsDeviceError checks if an error is a device error
func IsDeviceError(err error) bool {
	return isType(err, ErrTypeDevice)
}

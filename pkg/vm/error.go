// Package vm provides error handling for the PArIR virtual machine.
package vm

import (
	"fmt"
)

// ErrorType represents the type of runtime error.
type ErrorType string

const (
	// Fatal errors - execution must stop
	ErrorStackOverflow    ErrorType = "STACK_OVERFLOW"
	ErrorStackUnderflow   ErrorType = "STACK_UNDERFLOW"
	ErrorIndexOutOfRange  ErrorType = "INDEX_OUT_OF_RANGE"
	ErrorInvalidJump      ErrorType = "INVALID_JUMP"
	ErrorUnknownLabel     ErrorType = "UNKNOWN_LABEL"
	ErrorInvalidOperation ErrorType = "INVALID_OPERATION"
	ErrorStepLimit        ErrorType = "STEP_LIMIT"

	// Non-fatal errors - execution continues
	ErrorDivisionByZero ErrorType = "DIVISION_BY_ZERO"
)

// RuntimeError represents a runtime error in the VM.
type RuntimeError struct {
	Type    ErrorType
	Message string
	PC      int    // Instruction index, -1 when unknown
	Context string // Rendered instruction at PC
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.PC >= 0 && e.Context != "" {
		return fmt.Sprintf("[%s] %s at %d (%s)", e.Type, e.Message, e.PC, e.Context)
	}
	if e.PC >= 0 {
		return fmt.Sprintf("[%s] %s at %d", e.Type, e.Message, e.PC)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// IsFatal returns true if the error is fatal and execution should stop.
func (e *RuntimeError) IsFatal() bool {
	return e.Type != ErrorDivisionByZero
}

// NewRuntimeError creates a new RuntimeError without a location.
func NewRuntimeError(errType ErrorType, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		PC:      -1,
	}
}

// at attaches the instruction location unless one is already set.
func (e *RuntimeError) at(pc int, context string) *RuntimeError {
	if e.PC < 0 {
		e.PC = pc
		e.Context = context
	}
	return e
}

// NewStackOverflowError creates a stack overflow error.
func NewStackOverflowError(what string, depth int) *RuntimeError {
	return NewRuntimeError(ErrorStackOverflow, "%s overflow: depth %d exceeds maximum %d", what, depth, MaxStackDepth)
}

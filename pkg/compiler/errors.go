// This file defines the CompileError type for structured error reporting.
package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zurustar/parlc/pkg/compiler/diag"
)

// Compilation phases reported in CompileError.Phase.
const (
	PhaseLexer   = "lexer"
	PhaseParser  = "parser"
	PhaseChecker = "checker"
	PhaseCodegen = "codegen"
)

// CompileError represents a compilation error with location information.
// It wraps the diagnostic raised by the failing phase and carries the
// surrounding source lines for display.
type CompileError struct {
	// Phase indicates which compilation phase generated the error.
	// Valid values: "lexer", "parser", "checker", "codegen"
	Phase string

	// Message is the tagged diagnostic text, e.g. "Type Error: ...".
	Message string

	// Line is the 1-indexed line number where the error occurred.
	Line int

	// Column is the 1-indexed column number where the error occurred.
	Column int

	// Context contains the source code around the error location.
	// This includes 2 lines before and after the error line,
	// with a pointer (^) indicating the error column.
	Context string

	// Err is the underlying diagnostic.
	Err error
}

// Error implements the error interface.
// It returns a formatted error message including phase, location, message, and context.
func (e *CompileError) Error() string {
	if e.Line <= 0 {
		return fmt.Sprintf("%s error: %s", e.Phase, e.Message)
	}
	if e.Context != "" {
		return fmt.Sprintf("%s error at line %d, column %d: %s\n%s",
			e.Phase, e.Line, e.Column, e.Message, e.Context)
	}
	return fmt.Sprintf("%s error at line %d, column %d: %s",
		e.Phase, e.Line, e.Column, e.Message)
}

// Unwrap exposes the underlying diagnostic to errors.Is and errors.As.
func (e *CompileError) Unwrap() error {
	return e.Err
}

// Kind returns the diagnostic kind of the error.
func (e *CompileError) Kind() (diag.Kind, bool) {
	return diag.KindOf(e.Err)
}

// newCompileError converts err raised in phase into a CompileError with
// source context.
//
// Parameters:
//   - phase: The compilation phase that failed
//   - err: The error, normally a *diag.Error
//   - source: The full source code for generating context
//
// Returns:
//   - *CompileError: The error positioned in source
func newCompileError(phase string, err error, source string) *CompileError {
	ce := &CompileError{Phase: phase, Message: err.Error(), Err: err}

	var d *diag.Error
	if errors.As(err, &d) {
		ce.Message = d.Text()
		ce.Line = d.Pos.Line
		ce.Column = d.Pos.Column
		ce.Context = GenerateErrorContext(source, ce.Line, ce.Column)
	}
	return ce
}

// IsCompileError reports whether err is or wraps a CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

// GenerateErrorContext generates source code context around an error location.
// It includes 2 lines before and 2 lines after the error line, with line numbers
// and a pointer (^) indicating the error column.
//
// Parameters:
//   - source: The full source code
//   - line: The 1-indexed line number of the error
//   - column: The 1-indexed column number of the error
//
// Returns:
//   - string: Formatted context string with line numbers and error pointer
//
// Example output:
//
//	  2 | let x:int = 5;
//	  3 | let y:int = 10;
//	> 4 | let z:int = ;
//	                  ^
//	  5 | __print x;
//	  6 | __print y;
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := max(line-3, 0)
	end := min(line+2, len(lines))

	var buf strings.Builder
	width := len(fmt.Sprintf("%d", end))

	for i := start; i < end; i++ {
		n := i + 1
		if n != line {
			fmt.Fprintf(&buf, "  %*d | %s\n", width, n, lines[i])
			continue
		}

		fmt.Fprintf(&buf, "> %*d | %s\n", width, n, lines[i])
		// "> " + width + " | " precedes the source text
		indent := strings.Repeat(" ", 2+width+3)
		if column > 0 {
			indent += strings.Repeat(" ", column-1)
		}
		buf.WriteString(indent + "^\n")
	}

	return buf.String()
}

// Package diag defines the typed errors raised by the PArL front end and
// semantic passes.
//
// Every error has a Kind, and every Kind belongs to one category whose tag
// ("Syntax Error:", "Type Error:", "Semantic Error:") prefixes the rendered
// message. Callers that need more than the tag use Is or errors.As.
package diag

import (
	"errors"
	"fmt"

	"github.com/zurustar/parlc/pkg/compiler/ast"
)

// Category is the coarse error class shown as the message prefix.
type Category string

const (
	CategorySyntax   Category = "Syntax"
	CategoryType     Category = "Type"
	CategorySemantic Category = "Semantic"
)

// Kind identifies a specific violation.
type Kind int

const (
	Syntax Kind = iota
	MissingCondition
	DuplicateDeclaration
	UndeclaredIdentifier
	TypeMismatch
	NotAFunction
	ArityMismatch
	InvalidArrayAccess
	ConstantRequired
	IncompleteReturnPaths
	ReturnOutsideFunction
	NestedFunctionDeclaration
	UnknownOperator
	// Internal marks a broken compiler invariant rather than a user error.
	Internal
)

var kindNames = map[Kind]string{
	Syntax:                    "Syntax",
	MissingCondition:          "MissingCondition",
	DuplicateDeclaration:      "DuplicateDeclaration",
	UndeclaredIdentifier:      "UndeclaredIdentifier",
	TypeMismatch:              "TypeMismatch",
	NotAFunction:              "NotAFunction",
	ArityMismatch:             "ArityMismatch",
	InvalidArrayAccess:        "InvalidArrayAccess",
	ConstantRequired:          "ConstantRequired",
	IncompleteReturnPaths:     "IncompleteReturnPaths",
	ReturnOutsideFunction:     "ReturnOutsideFunction",
	NestedFunctionDeclaration: "NestedFunctionDeclaration",
	UnknownOperator:           "UnknownOperator",
	Internal:                  "Internal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Category returns the class a kind is reported under.
func (k Kind) Category() Category {
	switch k {
	case Syntax, MissingCondition:
		return CategorySyntax
	case TypeMismatch, InvalidArrayAccess:
		return CategoryType
	default:
		return CategorySemantic
	}
}

// Error is a single fail-fast diagnostic.
type Error struct {
	Kind    Kind
	Message string
	Pos     ast.Position
}

// Text returns the tagged message without location.
func (e *Error) Text() string {
	return fmt.Sprintf("%s Error: %s", e.Kind.Category(), e.Message)
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s at line %d, column %d", e.Text(), e.Pos.Line, e.Pos.Column)
	}
	return e.Text()
}

// At returns e with its position set, unless it already has one.
func (e *Error) At(pos ast.Position) *Error {
	if e.Pos.IsValid() || !pos.IsValid() {
		return e
	}
	c := *e
	c.Pos = pos
	return &c
}

// New creates an error of the given kind.
func New(kind Kind, pos ast.Position, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Pos: pos}
}

// Errorf creates a positionless error, for rules evaluated away from the tree.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err is a diagnostic of the given kind.
func Is(err error, kind Kind) bool {
	var d *Error
	return errors.As(err, &d) && d.Kind == kind
}

// KindOf extracts the kind of a diagnostic. ok is false for other errors.
func KindOf(err error) (Kind, bool) {
	var d *Error
	if errors.As(err, &d) {
		return d.Kind, true
	}
	return 0, false
}

// From converts err into a diagnostic positioned at pos. Errors that are
// not diagnostics become Internal.
func From(err error, pos ast.Position) *Error {
	var d *Error
	if errors.As(err, &d) {
		return d.At(pos)
	}
	return &Error{Kind: Internal, Message: err.Error(), Pos: pos}
}

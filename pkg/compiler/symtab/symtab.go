// Package symtab implements the lexical scope table used by the checker and
// the code generator.
//
// Each scope owns a storage frame. Declarations receive consecutive frame
// indices within their scope (arrays take one slot per element), and a use
// site addresses a symbol by (frame index, access level), where the access
// level is the number of scopes between the use site and the declaring scope.
package symtab

import (
	"fmt"

	"github.com/zurustar/parlc/pkg/compiler/ast"
	"github.com/zurustar/parlc/pkg/compiler/diag"
	"github.com/zurustar/parlc/pkg/compiler/types"
)

// Kind distinguishes what a symbol names.
type Kind int

const (
	Variable Kind = iota
	Array
	Function
)

func (k Kind) String() string {
	switch k {
	case Variable:
		return "variable"
	case Array:
		return "array"
	case Function:
		return "function"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Symbol is one declared name.
type Symbol struct {
	Name  string
	Type  types.Type
	Kind  Kind
	Index int // offset in the declaring scope's frame
	Depth int // depth of the declaring scope, 0 for the global scope
	Slots int

	Values    []ast.Expression // array initializers
	Signature *types.Signature // functions only
}

// Option configures a declaration.
type Option func(*Symbol)

// WithKind sets the symbol kind. The default is Variable.
func WithKind(k Kind) Option {
	return func(s *Symbol) { s.Kind = k }
}

// WithSize declares an array of n slots.
func WithSize(n int) Option {
	return func(s *Symbol) {
		s.Kind = Array
		s.Slots = n
	}
}

// WithValues records an array's initializer expressions.
func WithValues(values []ast.Expression) Option {
	return func(s *Symbol) { s.Values = values }
}

// WithSignature declares a function.
func WithSignature(sig *types.Signature) Option {
	return func(s *Symbol) {
		s.Kind = Function
		s.Signature = sig
	}
}

type scope struct {
	symbols map[string]*Symbol
	next    int
}

// Table is a stack of scopes. The zero value is not usable; call New.
type Table struct {
	scopes []*scope
}

// New returns a table with no open scope.
func New() *Table {
	return &Table{}
}

// EnterScope pushes an empty scope one level deeper than the current one.
func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, &scope{symbols: make(map[string]*Symbol)})
}

// ExitScope pops the innermost scope.
func (t *Table) ExitScope() {
	if len(t.scopes) == 0 {
		panic("symtab: ExitScope without matching EnterScope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth is the depth of the innermost scope, or -1 when none is open.
func (t *Table) Depth() int {
	return len(t.scopes) - 1
}

// IsGlobal reports whether the innermost scope is the outermost one.
func (t *Table) IsGlobal() bool {
	return len(t.scopes) == 1
}

// FrameSize returns the slots allocated so far in the innermost scope.
func (t *Table) FrameSize() int {
	if len(t.scopes) == 0 {
		return 0
	}
	return t.scopes[len(t.scopes)-1].next
}

// Declare adds name to the innermost scope.
func (t *Table) Declare(name string, typ types.Type, opts ...Option) (*Symbol, error) {
	if len(t.scopes) == 0 {
		return nil, fmt.Errorf("symtab: declare %q with no open scope", name)
	}
	s := t.scopes[len(t.scopes)-1]
	if _, exists := s.symbols[name]; exists {
		return nil, diag.Errorf(diag.DuplicateDeclaration, "Variable '%s' already declared in this scope.", name)
	}

	sym := &Symbol{Name: name, Type: typ, Kind: Variable, Slots: 1}
	for _, opt := range opts {
		opt(sym)
	}
	if sym.Kind != Array {
		sym.Slots = 1
	}
	sym.Index = s.next
	sym.Depth = t.Depth()

	s.symbols[name] = sym
	s.next += sym.Slots
	return sym, nil
}

// Lookup finds name, searching from the innermost scope outwards.
func (t *Table) Lookup(name string) (*Symbol, error) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[name]; ok {
			return sym, nil
		}
	}
	return nil, diag.Errorf(diag.UndeclaredIdentifier, "Variable '%s' used before declaration.", name)
}

// AccessLevel is the number of frames between the current scope and sym's.
func (t *Table) AccessLevel(sym *Symbol) int {
	return t.Depth() - sym.Depth
}

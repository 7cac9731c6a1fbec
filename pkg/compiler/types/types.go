// Package types holds the PArL type model and the typing rules shared by the
// checker and the code generator. Rules are pure functions over types and
// return positionless diagnostics; callers attach the node position.
package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/parlc/pkg/compiler/diag"
)

// Kind is a scalar base type.
type Kind int

const (
	Invalid Kind = iota
	KindInt
	KindFloat
	KindBool
	KindColour
)

var kindNames = map[Kind]string{
	Invalid:    "invalid",
	KindInt:    "int",
	KindFloat:  "float",
	KindBool:   "bool",
	KindColour: "colour",
}

// Type is a scalar or a one-level array of a scalar. Types compare with ==.
type Type struct {
	Base  Kind
	Array bool
}

var (
	Int    = Type{Base: KindInt}
	Float  = Type{Base: KindFloat}
	Bool   = Type{Base: KindBool}
	Colour = Type{Base: KindColour}
)

// ArrayOf returns the array type with elem as element type.
func ArrayOf(elem Type) Type {
	return Type{Base: elem.Base, Array: true}
}

func (t Type) String() string {
	name := kindNames[t.Base]
	if t.Array {
		return name + "[]"
	}
	return name
}

// Elem strips the array suffix.
func (t Type) Elem() Type { return Type{Base: t.Base} }

// IsNumeric reports whether arithmetic is defined on t.
func (t Type) IsNumeric() bool {
	return !t.Array && (t.Base == KindInt || t.Base == KindFloat)
}

// Parse converts a type name such as "int" or "colour[]".
func Parse(name string) (Type, *diag.Error) {
	base := strings.TrimSuffix(name, "[]")
	array := len(base) != len(name)
	for k, n := range kindNames {
		if k != Invalid && n == base {
			return Type{Base: k, Array: array}, nil
		}
	}
	return Type{}, diag.Errorf(diag.TypeMismatch, "Unknown type '%s'", name)
}

// ParseScalar is Parse restricted to non-array types.
func ParseScalar(name string) (Type, *diag.Error) {
	t, err := Parse(name)
	if err != nil {
		return Type{}, err
	}
	if t.Array {
		return Type{}, diag.Errorf(diag.TypeMismatch, "Expected a scalar type, got '%s'", name)
	}
	return t, nil
}

// BoolValue maps a boolean literal to its IR encoding.
func BoolValue(text string) (int, *diag.Error) {
	switch text {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	return 0, diag.Errorf(diag.TypeMismatch, "Invalid boolean literal '%s'", text)
}

// ColourValue returns the unsigned value of a "#rrggbb" literal.
func ColourValue(text string) (uint32, *diag.Error) {
	hex := strings.TrimPrefix(text, "#")
	if len(hex) != 6 || len(hex) == len(text) {
		return 0, diag.Errorf(diag.TypeMismatch, "Invalid colour literal '%s'", text)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, diag.Errorf(diag.TypeMismatch, "Invalid colour literal '%s'", text)
	}
	return uint32(v), nil
}

var (
	arithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true}
	relationalOps = map[string]bool{"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true}
	logicalOps    = map[string]bool{"and": true, "or": true}
)

// Binary types a binary operation.
func Binary(op string, left, right Type) (Type, *diag.Error) {
	known := arithmeticOps[op] || relationalOps[op] || logicalOps[op]
	if !known {
		return Type{}, diag.Errorf(diag.UnknownOperator, "Unknown binary operator '%s'", op)
	}
	if left != right {
		return Type{}, diag.Errorf(diag.TypeMismatch, "Mismatched operands for '%s': %s and %s", op, left, right)
	}

	switch {
	case arithmeticOps[op]:
		if !left.IsNumeric() {
			return Type{}, diag.Errorf(diag.TypeMismatch, "Arithmetic operator '%s' requires int or float operands, got %s", op, left)
		}
		return left, nil
	case relationalOps[op]:
		if left.Array {
			return Type{}, diag.Errorf(diag.TypeMismatch, "Relational operator '%s' cannot compare arrays", op)
		}
		return Bool, nil
	default:
		if left != Bool {
			return Type{}, diag.Errorf(diag.TypeMismatch, "Logical operator '%s' requires bool operands, got %s", op, left)
		}
		return Bool, nil
	}
}

// Unary types "-x" and "not x".
func Unary(op string, operand Type) (Type, *diag.Error) {
	switch op {
	case "not":
		if operand != Bool {
			return Type{}, diag.Errorf(diag.TypeMismatch, "'not' operator requires a bool operand, got %s", operand)
		}
		return Bool, nil
	case "-":
		if !operand.IsNumeric() {
			return Type{}, diag.Errorf(diag.TypeMismatch, "Unary '-' requires int or float operand, got %s", operand)
		}
		return operand, nil
	}
	return Type{}, diag.Errorf(diag.UnknownOperator, "Unknown unary operator '%s'", op)
}

// Cast types "expr as target". Every scalar pair converts except bool and
// colour in either direction.
func Cast(from Type, target string) (Type, *diag.Error) {
	to, err := Parse(target)
	if err != nil || to.Array {
		return Type{}, diag.Errorf(diag.TypeMismatch, "Unknown cast target type '%s'", target)
	}
	if from.Array {
		return Type{}, diag.Errorf(diag.TypeMismatch, "Cannot cast array type %s", from)
	}
	if (from == Bool && to == Colour) || (from == Colour && to == Bool) {
		return Type{}, diag.Errorf(diag.TypeMismatch, "Cannot cast from %s to %s", from, to)
	}
	return to, nil
}

// Indexable checks that name, declared as base, may be subscripted.
func Indexable(name string, base Type) *diag.Error {
	if !base.Array {
		return diag.Errorf(diag.InvalidArrayAccess, "Variable '%s' is not an array", name)
	}
	return nil
}

// Index types name[index] where base is the declared type of name.
func Index(name string, base, index Type) (Type, *diag.Error) {
	if err := Indexable(name, base); err != nil {
		return Type{}, err
	}
	if index != Int {
		return Type{}, diag.Errorf(diag.InvalidArrayAccess, "Array index must be an integer, got %s", index)
	}
	return base.Elem(), nil
}

// Assign checks that value can be stored into a target of type target.
func Assign(target, value Type) *diag.Error {
	if target != value {
		return diag.Errorf(diag.TypeMismatch, "Cannot assign %s to variable of type %s", value, target)
	}
	return nil
}

// Element checks one array initializer against the element type.
func Element(name string, elem, value Type) *diag.Error {
	if elem != value {
		return diag.Errorf(diag.TypeMismatch, "Array '%s' expects elements of type %s, got %s", name, elem, value)
	}
	return nil
}

// Condition checks the controlling expression of if/while/for.
func Condition(construct string, t Type) *diag.Error {
	if t != Bool {
		return diag.Errorf(diag.TypeMismatch, "Condition in '%s' must be bool, got %s", construct, t)
	}
	return nil
}

// Return checks a return value against the enclosing function's type.
func Return(value, expected Type) *diag.Error {
	if value != expected {
		return diag.Errorf(diag.TypeMismatch, "Return type %s does not match expected function return type %s", value, expected)
	}
	return nil
}

// Param is a named, typed parameter. Size is the slot count of array
// parameters and zero for scalars.
type Param struct {
	Name string
	Type Type
	Size int
}

// Signature describes a callable.
type Signature struct {
	Name   string
	Params []Param
	Result Type
}

func (s *Signature) String() string {
	parts := make([]string, len(s.Params))
	for i, p := range s.Params {
		parts[i] = p.Name + ":" + p.Type.String()
	}
	return fmt.Sprintf("%s(%s) -> %s", s.Name, strings.Join(parts, ", "), s.Result)
}

// Arity checks the argument count of a call.
func (s *Signature) Arity(got int) *diag.Error {
	if got != len(s.Params) {
		return diag.Errorf(diag.ArityMismatch, "Function '%s' expects %d argument(s), got %d.", s.Name, len(s.Params), got)
	}
	return nil
}

// Argument checks a scalar argument against parameter i.
func (s *Signature) Argument(i int, got Type) *diag.Error {
	p := s.Params[i]
	if p.Type != got {
		return diag.Errorf(diag.TypeMismatch, "In call to '%s', expected type '%s' for argument '%s', got '%s'.", s.Name, p.Type, p.Name, got)
	}
	return nil
}

// Builtin identifies a display primitive.
type Builtin int

const (
	Print Builtin = iota
	Delay
	Clear
	Write
	WriteBox
	Read
	RandomInt
	Width
	Height
)

var builtins = map[Builtin]*Signature{
	Delay: {Name: "__delay", Params: []Param{{Name: "ms", Type: Int}}},
	Clear: {Name: "__clear", Params: []Param{{Name: "colour", Type: Colour}}},
	Write: {Name: "__write", Params: []Param{
		{Name: "x", Type: Int}, {Name: "y", Type: Int}, {Name: "colour", Type: Colour},
	}},
	WriteBox: {Name: "__write_box", Params: []Param{
		{Name: "x", Type: Int}, {Name: "y", Type: Int},
		{Name: "width", Type: Int}, {Name: "height", Type: Int},
		{Name: "colour", Type: Colour},
	}},
	Read:      {Name: "__read", Params: []Param{{Name: "x", Type: Int}, {Name: "y", Type: Int}}, Result: Colour},
	RandomInt: {Name: "__random_int", Params: []Param{{Name: "bound", Type: Int}}, Result: Int},
	Width:     {Name: "__width", Result: Int},
	Height:    {Name: "__height", Result: Int},
}

// CheckBuiltin types a built-in application. __print accepts any scalar.
func CheckBuiltin(b Builtin, args ...Type) (Type, *diag.Error) {
	if b == Print {
		if len(args) != 1 {
			return Type{}, diag.Errorf(diag.ArityMismatch, "__print expects 1 operand, got %d", len(args))
		}
		if args[0].Array {
			return Type{}, diag.Errorf(diag.TypeMismatch, "__print expects a scalar, got %s", args[0])
		}
		return Type{}, nil
	}
	sig, ok := builtins[b]
	if !ok {
		return Type{}, diag.Errorf(diag.UnknownOperator, "Unknown built-in %d", int(b))
	}
	if err := sig.Arity(len(args)); err != nil {
		return Type{}, err
	}
	for i, p := range sig.Params {
		if args[i] != p.Type {
			return Type{}, diag.Errorf(diag.TypeMismatch, "%s expects %s for %s, got %s", sig.Name, p.Type, p.Name, args[i])
		}
	}
	return sig.Result, nil
}

// Package flow contains the structural analyses both semantic passes need:
// return-path completeness, frame slot counting, constant array sizes and
// function signatures.
package flow

import (
	"github.com/zurustar/parlc/pkg/compiler/ast"
	"github.com/zurustar/parlc/pkg/compiler/diag"
	"github.com/zurustar/parlc/pkg/compiler/symtab"
	"github.com/zurustar/parlc/pkg/compiler/types"
)

// AlwaysReturns reports whether every path through block reaches a return.
//
// The analysis is conservative: a return statement, an if whose branches
// both always return, or a nested block that always returns counts. Loops
// never count since their body may run zero times.
func AlwaysReturns(block *ast.BlockStatement) bool {
	if block == nil {
		return false
	}
	for _, stmt := range block.Statements {
		switch s := stmt.(type) {
		case *ast.ReturnStatement:
			return true
		case *ast.IfStatement:
			if s.Alternative != nil && AlwaysReturns(s.Consequence) && AlwaysReturns(s.Alternative) {
				return true
			}
		case *ast.BlockStatement:
			if AlwaysReturns(s) {
				return true
			}
		}
	}
	return false
}

// FrameSlots counts the slots declared directly in stmts: one per scalar
// or function, one per element for arrays. Nested blocks are not entered;
// they open frames of their own.
func FrameSlots(stmts []ast.Statement) int {
	n := 0
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.VarDeclaration, *ast.FunctionStatement:
			n++
		case *ast.ArrayDeclaration:
			n += ArraySlots(s)
		}
	}
	return n
}

// LocalSlots counts every declaration in block, including those inside
// nested blocks, branches and loops.
func LocalSlots(block *ast.BlockStatement) int {
	if block == nil {
		return 0
	}
	n := 0
	for _, stmt := range block.Statements {
		n += localSlots(stmt)
	}
	return n
}

func localSlots(stmt ast.Statement) int {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		return 1
	case *ast.ArrayDeclaration:
		return ArraySlots(s)
	case *ast.BlockStatement:
		return LocalSlots(s)
	case *ast.IfStatement:
		return LocalSlots(s.Consequence) + LocalSlots(s.Alternative)
	case *ast.WhileStatement:
		return LocalSlots(s.Body)
	case *ast.ForStatement:
		n := LocalSlots(s.Body)
		if s.Init != nil {
			n++
		}
		return n
	}
	return 0
}

// ArraySlots is the slot count of an array declaration: its constant size
// when valid, otherwise the number of initial values. It never fails;
// ArraySize reports invalid sizes.
func ArraySlots(decl *ast.ArrayDeclaration) int {
	if decl.Size != nil {
		if n, err := ConstInt(decl.Size); err == nil && n > 0 {
			return int(n)
		}
	}
	return len(decl.Values)
}

// ArraySize validates the declared size of decl. At global scope the size
// must be an integer literal. Elsewhere a constant integer expression fixes
// the slot count, and a runtime expression (see DynamicSize) leaves it to
// the number of initial values. The returned count is the number of slots
// the array occupies.
func ArraySize(decl *ast.ArrayDeclaration, global bool) (int, *diag.Error) {
	if decl.Size == nil || DynamicSize(decl, global) {
		return len(decl.Values), nil
	}
	if global {
		if _, ok := decl.Size.(*ast.IntegerLiteral); !ok {
			if _, err := ConstInt(decl.Size); err != nil && err.Kind == diag.TypeMismatch {
				return 0, err.At(decl.Size.Pos())
			}
			return 0, diag.New(diag.ConstantRequired, decl.Size.Pos(), "Array size must be a constant integer in global scope.")
		}
	}
	n, err := ConstInt(decl.Size)
	if err != nil {
		return 0, err.At(decl.Size.Pos())
	}
	if n <= 0 {
		return 0, diag.New(diag.ConstantRequired, decl.Size.Pos(), "Array '%s' must have a positive size, got %d", decl.Name, n)
	}
	if len(decl.Values) != 1 && int64(len(decl.Values)) != n {
		return 0, diag.New(diag.TypeMismatch, decl.Pos(),
			"Array '%s' declares %d elements but %d initial values were given", decl.Name, n, len(decl.Values))
	}
	return int(n), nil
}

// DynamicSize reports whether decl is sized by a runtime expression, which
// is allowed inside functions and blocks but not at global scope. Callers
// type such a size as an ordinary expression that must be int.
func DynamicSize(decl *ast.ArrayDeclaration, global bool) bool {
	return !global && decl.Size != nil && !isConstant(decl.Size)
}

// isConstant reports whether e is built only from literals and operators.
func isConstant(e ast.Expression) bool {
	switch n := e.(type) {
	case *ast.IntegerLiteral, *ast.FloatLiteral, *ast.BooleanLiteral, *ast.ColourLiteral:
		return true
	case *ast.UnaryExpression:
		return isConstant(n.Operand)
	case *ast.BinaryExpression:
		return isConstant(n.Left) && isConstant(n.Right)
	}
	return false
}

// ParamSize validates the constant size of an array parameter.
func ParamSize(param *ast.Parameter) (int, *diag.Error) {
	if param.Size == nil {
		return 0, diag.New(diag.ConstantRequired, param.Pos(), "Array parameter '%s' must have a constant size.", param.Name)
	}
	n, err := ConstInt(param.Size)
	if err != nil {
		if err.Kind == diag.ConstantRequired {
			return 0, diag.New(diag.ConstantRequired, param.Pos(), "Array parameter '%s' must have a constant size.", param.Name)
		}
		return 0, err.At(param.Size.Pos())
	}
	if n <= 0 {
		return 0, diag.New(diag.ConstantRequired, param.Pos(), "Array parameter '%s' must have a positive size, got %d", param.Name, n)
	}
	return int(n), nil
}

// ConstInt folds an integer constant expression built from integer
// literals, unary minus and + - * /.
func ConstInt(e ast.Expression) (int64, *diag.Error) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return n.Value, nil
	case *ast.FloatLiteral, *ast.BooleanLiteral, *ast.ColourLiteral:
		return 0, diag.New(diag.TypeMismatch, e.Pos(), "Array size must be of type 'int'")
	case *ast.UnaryExpression:
		if n.Operator != "-" {
			return 0, diag.New(diag.TypeMismatch, e.Pos(), "Array size must be of type 'int'")
		}
		v, err := ConstInt(n.Operand)
		return -v, err
	case *ast.BinaryExpression:
		left, err := ConstInt(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := ConstInt(n.Right)
		if err != nil {
			return 0, err
		}
		switch n.Operator {
		case "+":
			return left + right, nil
		case "-":
			return left - right, nil
		case "*":
			return left * right, nil
		case "/":
			if right == 0 {
				return 0, diag.New(diag.ConstantRequired, e.Pos(), "Division by zero in constant expression")
			}
			return left / right, nil
		}
		return 0, diag.New(diag.TypeMismatch, e.Pos(), "Array size must be of type 'int'")
	}
	return 0, diag.New(diag.ConstantRequired, e.Pos(), "Array size must be a constant integer expression")
}

// Signature resolves the declared parameter and result types of fn.
// Array parameters carry their constant slot count.
func Signature(fn *ast.FunctionStatement) (*types.Signature, *diag.Error) {
	result, err := types.ParseScalar(fn.ReturnType)
	if err != nil {
		return nil, err.At(fn.Pos())
	}
	sig := &types.Signature{Name: fn.Name, Result: result}
	for _, p := range fn.Parameters {
		typ, err := types.Parse(p.Type)
		if err != nil {
			return nil, err.At(p.Pos())
		}
		param := types.Param{Name: p.Name, Type: typ}
		if typ.Array {
			if param.Size, err = ParamSize(p); err != nil {
				return nil, err
			}
		}
		sig.Params = append(sig.Params, param)
	}
	return sig, nil
}

// ArrayArgument resolves argument i of a call to sig, which binds an array
// parameter. Arrays are passed by reference, so the argument must be a
// bare name of a declared symbol. Its element type is not compared with the
// parameter's.
func ArrayArgument(symbols *symtab.Table, sig *types.Signature, i int, arg ast.Expression) (*symtab.Symbol, *diag.Error) {
	id, ok := arg.(*ast.Identifier)
	if !ok || id.Index != nil {
		return nil, diag.New(diag.TypeMismatch, arg.Pos(),
			"In call to '%s', argument '%s' must name an array.", sig.Name, sig.Params[i].Name)
	}
	sym, err := symbols.Lookup(id.Value)
	if err != nil {
		return nil, diag.From(err, id.Pos())
	}
	return sym, nil
}

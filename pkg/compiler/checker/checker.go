// Package checker implements the PArL type checker.
//
// The checker assigns a static type to every expression and validates the
// type contract of every statement. It stops at the first violation. Nodes
// are visited in the order the code generator emits them so that both
// passes report the same first error for a given program.
package checker

import (
	"github.com/zurustar/parlc/pkg/compiler/ast"
	"github.com/zurustar/parlc/pkg/compiler/diag"
	"github.com/zurustar/parlc/pkg/compiler/flow"
	"github.com/zurustar/parlc/pkg/compiler/symtab"
	"github.com/zurustar/parlc/pkg/compiler/types"
)

// Info is the result of a successful check.
type Info struct {
	// Types holds the static type of every typed expression node. Array
	// arguments passed by reference are not typed and have no entry.
	Types map[ast.Expression]types.Type
}

// Checker type checks one program. A Checker is not reusable.
type Checker struct {
	symbols    *symtab.Table
	info       *Info
	returnType *types.Type // nil outside a function body
}

// New creates a Checker.
func New() *Checker {
	return &Checker{
		symbols: symtab.New(),
		info:    &Info{Types: make(map[ast.Expression]types.Type)},
	}
}

// Check type checks program. The returned error is a *diag.Error.
func Check(program *ast.Program) (*Info, error) {
	return New().Check(program)
}

// Check type checks program. The returned error is a *diag.Error.
func (c *Checker) Check(program *ast.Program) (*Info, error) {
	c.symbols.EnterScope()
	defer c.symbols.ExitScope()

	for _, stmt := range program.Statements {
		if err := c.checkStatement(stmt); err != nil {
			return nil, err
		}
	}
	return c.info, nil
}

func (c *Checker) checkStatement(stmt ast.Statement) *diag.Error {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		return c.checkVarDeclaration(s)
	case *ast.ArrayDeclaration:
		return c.checkArrayDeclaration(s)
	case *ast.AssignStatement:
		return c.checkAssign(s)
	case *ast.BlockStatement:
		return c.checkBlock(s)
	case *ast.IfStatement:
		return c.checkIf(s)
	case *ast.WhileStatement:
		return c.checkWhile(s)
	case *ast.ForStatement:
		return c.checkFor(s)
	case *ast.FunctionStatement:
		return c.checkFunction(s)
	case *ast.ReturnStatement:
		return c.checkReturn(s)
	case *ast.PrintStatement:
		return c.checkBuiltin(types.Print, s, s.Value)
	case *ast.DelayStatement:
		return c.checkBuiltin(types.Delay, s, s.Value)
	case *ast.ClearStatement:
		return c.checkBuiltin(types.Clear, s, s.Value)
	case *ast.WriteStatement:
		return c.checkBuiltin(types.Write, s, s.X, s.Y, s.Colour)
	case *ast.WriteBoxStatement:
		return c.checkBuiltin(types.WriteBox, s, s.X, s.Y, s.Width, s.Height, s.Colour)
	}
	return diag.New(diag.Internal, stmt.Pos(), "Unexpected statement %s", stmt.String())
}

func (c *Checker) checkVarDeclaration(s *ast.VarDeclaration) *diag.Error {
	typ, err := types.ParseScalar(s.Type)
	if err != nil {
		return err.At(s.Pos())
	}
	if _, err := c.symbols.Declare(s.Name, typ); err != nil {
		return diag.From(err, s.Pos())
	}
	value, err := c.expr(s.Value)
	if err != nil {
		return err
	}
	if err := types.Assign(typ, value); err != nil {
		return err.At(s.Value.Pos())
	}
	return nil
}

func (c *Checker) checkArrayDeclaration(s *ast.ArrayDeclaration) *diag.Error {
	typ, err := types.Parse(s.Type)
	if err != nil {
		return err.At(s.Pos())
	}
	if !typ.Array {
		return diag.New(diag.TypeMismatch, s.Pos(), "Array declaration must use an array type, got '%s'", s.Type)
	}
	size, err := flow.ArraySize(s, c.symbols.IsGlobal())
	if err != nil {
		return err
	}
	if flow.DynamicSize(s, c.symbols.IsGlobal()) {
		t, err := c.expr(s.Size)
		if err != nil {
			return err
		}
		if t != types.Int {
			return diag.New(diag.TypeMismatch, s.Size.Pos(), "Array size must be of type 'int', got %s", t)
		}
	}
	if _, err := c.symbols.Declare(s.Name, typ, symtab.WithSize(size), symtab.WithValues(s.Values)); err != nil {
		return diag.From(err, s.Pos())
	}

	for i := len(s.Values) - 1; i >= 0; i-- {
		value, err := c.expr(s.Values[i])
		if err != nil {
			return err
		}
		if err := types.Element(s.Name, typ.Elem(), value); err != nil {
			return err.At(s.Values[i].Pos())
		}
	}
	return nil
}

func (c *Checker) checkAssign(s *ast.AssignStatement) *diag.Error {
	target := s.Target
	sym, err := c.variable(target)
	if err != nil {
		return err
	}
	if target.Index != nil {
		if err := types.Indexable(target.Value, sym.Type); err != nil {
			return err.At(target.Pos())
		}
	}

	value, err := c.expr(s.Value)
	if err != nil {
		return err
	}

	want := sym.Type
	if target.Index != nil {
		index, err := c.expr(target.Index)
		if err != nil {
			return err
		}
		if want, err = types.Index(target.Value, sym.Type, index); err != nil {
			return err.At(target.Index.Pos())
		}
	}
	c.info.Types[target] = want

	if err := types.Assign(want, value); err != nil {
		return err.At(s.Pos())
	}
	return nil
}

func (c *Checker) checkBlock(b *ast.BlockStatement) *diag.Error {
	c.symbols.EnterScope()
	defer c.symbols.ExitScope()

	for _, stmt := range b.Statements {
		if err := c.checkStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkIf(s *ast.IfStatement) *diag.Error {
	if err := c.condition("if", s.Condition); err != nil {
		return err
	}
	if s.Alternative != nil {
		if err := c.checkBlock(s.Alternative); err != nil {
			return err
		}
	}
	return c.checkBlock(s.Consequence)
}

func (c *Checker) checkWhile(s *ast.WhileStatement) *diag.Error {
	if err := c.condition("while", s.Condition); err != nil {
		return err
	}
	return c.checkBlock(s.Body)
}

func (c *Checker) checkFor(s *ast.ForStatement) *diag.Error {
	c.symbols.EnterScope()
	defer c.symbols.ExitScope()

	if s.Init != nil {
		if err := c.checkVarDeclaration(s.Init); err != nil {
			return err
		}
	}
	if s.Condition == nil {
		return diag.New(diag.MissingCondition, s.Pos(), "for-loop requires a condition")
	}
	if err := c.condition("for", s.Condition); err != nil {
		return err
	}
	if err := c.checkBlock(s.Body); err != nil {
		return err
	}
	if s.Update != nil {
		return c.checkAssign(s.Update)
	}
	return nil
}

func (c *Checker) checkFunction(s *ast.FunctionStatement) *diag.Error {
	if !c.symbols.IsGlobal() {
		return diag.New(diag.NestedFunctionDeclaration, s.Pos(), "Functions must be declared in the global scope.")
	}
	sig, err := flow.Signature(s)
	if err != nil {
		return err
	}
	if _, err := c.symbols.Declare(s.Name, sig.Result, symtab.WithSignature(sig)); err != nil {
		return diag.From(err, s.Pos())
	}

	c.symbols.EnterScope()
	for i, p := range sig.Params {
		var opts []symtab.Option
		if p.Type.Array {
			opts = append(opts, symtab.WithSize(p.Size))
		}
		if _, err := c.symbols.Declare(p.Name, p.Type, opts...); err != nil {
			c.symbols.ExitScope()
			return diag.From(err, s.Parameters[i].Pos())
		}
	}

	c.returnType = &sig.Result
	for _, stmt := range s.Body.Statements {
		if err := c.checkStatement(stmt); err != nil {
			c.symbols.ExitScope()
			return err
		}
	}
	c.returnType = nil
	c.symbols.ExitScope()

	if !flow.AlwaysReturns(s.Body) {
		return diag.New(diag.IncompleteReturnPaths, s.Pos(), "Function '%s' may not return a value on all paths.", s.Name)
	}
	return nil
}

func (c *Checker) checkReturn(s *ast.ReturnStatement) *diag.Error {
	if c.returnType == nil {
		return diag.New(diag.ReturnOutsideFunction, s.Pos(), "'return' statement outside of function.")
	}
	value, err := c.expr(s.Value)
	if err != nil {
		return err
	}
	if err := types.Return(value, *c.returnType); err != nil {
		return err.At(s.Value.Pos())
	}
	return nil
}

// checkBuiltin types the operands of a built-in statement last to first,
// the order their values are pushed.
func (c *Checker) checkBuiltin(b types.Builtin, node ast.Node, operands ...ast.Expression) *diag.Error {
	args, err := c.operands(operands)
	if err != nil {
		return err
	}
	if _, err := types.CheckBuiltin(b, args...); err != nil {
		return err.At(node.Pos())
	}
	return nil
}

func (c *Checker) operands(operands []ast.Expression) ([]types.Type, *diag.Error) {
	args := make([]types.Type, len(operands))
	for i := len(operands) - 1; i >= 0; i-- {
		t, err := c.expr(operands[i])
		if err != nil {
			return nil, err
		}
		args[i] = t
	}
	return args, nil
}

func (c *Checker) condition(construct string, e ast.Expression) *diag.Error {
	t, err := c.expr(e)
	if err != nil {
		return err
	}
	if err := types.Condition(construct, t); err != nil {
		return err.At(e.Pos())
	}
	return nil
}

// expr types e and records the result.
func (c *Checker) expr(e ast.Expression) (types.Type, *diag.Error) {
	t, err := c.typeOf(e)
	if err != nil {
		return types.Type{}, err
	}
	c.info.Types[e] = t
	return t, nil
}

func (c *Checker) typeOf(e ast.Expression) (types.Type, *diag.Error) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return types.Int, nil
	case *ast.FloatLiteral:
		return types.Float, nil
	case *ast.BooleanLiteral:
		if _, err := types.BoolValue(n.Value); err != nil {
			return types.Type{}, err.At(n.Pos())
		}
		return types.Bool, nil
	case *ast.ColourLiteral:
		if _, err := types.ColourValue(n.Value); err != nil {
			return types.Type{}, err.At(n.Pos())
		}
		return types.Colour, nil
	case *ast.Identifier:
		return c.identifier(n)
	case *ast.BinaryExpression:
		right, err := c.expr(n.Right)
		if err != nil {
			return types.Type{}, err
		}
		left, err := c.expr(n.Left)
		if err != nil {
			return types.Type{}, err
		}
		t, err := types.Binary(n.Operator, left, right)
		if err != nil {
			return types.Type{}, err.At(n.Pos())
		}
		return t, nil
	case *ast.UnaryExpression:
		operand, err := c.expr(n.Operand)
		if err != nil {
			return types.Type{}, err
		}
		t, err := types.Unary(n.Operator, operand)
		if err != nil {
			return types.Type{}, err.At(n.Pos())
		}
		return t, nil
	case *ast.CastExpression:
		from, err := c.expr(n.Value)
		if err != nil {
			return types.Type{}, err
		}
		t, err := types.Cast(from, n.Target)
		if err != nil {
			return types.Type{}, err.At(n.Pos())
		}
		return t, nil
	case *ast.CallExpression:
		return c.call(n)
	case *ast.WidthExpression:
		return types.CheckBuiltin(types.Width)
	case *ast.HeightExpression:
		return types.CheckBuiltin(types.Height)
	case *ast.ReadExpression:
		return c.builtinExpr(types.Read, n, n.X, n.Y)
	case *ast.RandomIntExpression:
		return c.builtinExpr(types.RandomInt, n, n.Bound)
	}
	return types.Type{}, diag.New(diag.Internal, e.Pos(), "Unexpected expression %s", e.String())
}

func (c *Checker) builtinExpr(b types.Builtin, node ast.Node, operands ...ast.Expression) (types.Type, *diag.Error) {
	args, err := c.operands(operands)
	if err != nil {
		return types.Type{}, err
	}
	t, err := types.CheckBuiltin(b, args...)
	if err != nil {
		return types.Type{}, err.At(node.Pos())
	}
	return t, nil
}

func (c *Checker) identifier(id *ast.Identifier) (types.Type, *diag.Error) {
	sym, err := c.variable(id)
	if err != nil {
		return types.Type{}, err
	}
	if id.Index == nil {
		return sym.Type, nil
	}
	if err := types.Indexable(id.Value, sym.Type); err != nil {
		return types.Type{}, err.At(id.Pos())
	}
	index, err := c.expr(id.Index)
	if err != nil {
		return types.Type{}, err
	}
	t, err := types.Index(id.Value, sym.Type, index)
	if err != nil {
		return types.Type{}, err.At(id.Index.Pos())
	}
	return t, nil
}

// variable resolves a name used as a storage location.
func (c *Checker) variable(id *ast.Identifier) (*symtab.Symbol, *diag.Error) {
	sym, err := c.symbols.Lookup(id.Value)
	if err != nil {
		return nil, diag.From(err, id.Pos())
	}
	if sym.Kind == symtab.Function {
		return nil, diag.New(diag.TypeMismatch, id.Pos(), "'%s' is a function, not a variable", id.Value)
	}
	return sym, nil
}

func (c *Checker) call(n *ast.CallExpression) (types.Type, *diag.Error) {
	sym, err := c.symbols.Lookup(n.Function)
	if err != nil {
		return types.Type{}, diag.From(err, n.Pos())
	}
	if sym.Kind != symtab.Function {
		return types.Type{}, diag.New(diag.NotAFunction, n.Pos(), "Identifier '%s' is not a function.", n.Function)
	}
	sig := sym.Signature
	if err := sig.Arity(len(n.Arguments)); err != nil {
		return types.Type{}, err.At(n.Pos())
	}

	for i, arg := range n.Arguments {
		if sig.Params[i].Type.Array {
			// Array arguments are passed by reference and only need to exist.
			if _, err := flow.ArrayArgument(c.symbols, sig, i, arg); err != nil {
				return types.Type{}, err
			}
			continue
		}
		t, err := c.expr(arg)
		if err != nil {
			return types.Type{}, err
		}
		if err := sig.Argument(i, t); err != nil {
			return types.Type{}, err.At(arg.Pos())
		}
	}
	return sig.Result, nil
}

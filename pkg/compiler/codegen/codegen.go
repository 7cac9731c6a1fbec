// Package codegen lowers a PArL program to PArIR.
//
// The generator is self-sufficient: it resolves names and re-derives every
// expression type itself through the shared rules in the types and flow
// packages, so it can run without a prior checker pass. Either a complete
// program is returned or an error, never partial output.
package codegen

import (
	"github.com/zurustar/parlc/pkg/compiler/ast"
	"github.com/zurustar/parlc/pkg/compiler/diag"
	"github.com/zurustar/parlc/pkg/compiler/flow"
	"github.com/zurustar/parlc/pkg/compiler/symtab"
	"github.com/zurustar/parlc/pkg/compiler/types"
	"github.com/zurustar/parlc/pkg/ir"
)

// MainLabel is the program entry label.
const MainLabel = "main"

var binaryOps = map[string][]ir.Op{
	"+":   {ir.Add},
	"-":   {ir.Sub},
	"*":   {ir.Mul},
	"/":   {ir.Div},
	"<":   {ir.Lt},
	"<=":  {ir.Le},
	">":   {ir.Gt},
	">=":  {ir.Ge},
	"==":  {ir.Eq},
	"!=":  {ir.Eq, ir.Not},
	"and": {ir.And},
	"or":  {ir.Or},
}

// Generator lowers one program. A Generator is not reusable.
type Generator struct {
	symbols    *symtab.Table
	out        emitter
	types      map[ast.Expression]types.Type
	returnType *types.Type
}

// New creates a Generator.
func New() *Generator {
	return &Generator{
		symbols: symtab.New(),
		types:   make(map[ast.Expression]types.Type),
	}
}

// Generate lowers program with a fresh Generator.
func Generate(program *ast.Program) (*ir.Program, error) {
	return New().Generate(program)
}

// Types returns the expression types computed during generation.
func (g *Generator) Types() map[ast.Expression]types.Type {
	return g.types
}

// Generate lowers program. The returned error is a *diag.Error.
func (g *Generator) Generate(program *ast.Program) (*ir.Program, error) {
	g.out.label(MainLabel)
	g.out.pushInt(4)
	g.out.op(ir.Jmp)
	g.out.op(ir.Halt)

	g.symbols.EnterScope()
	g.out.pushInt(flow.FrameSlots(program.Statements))
	g.out.op(ir.OFrame)
	for _, stmt := range program.Statements {
		if err := g.statement(stmt); err != nil {
			return nil, err
		}
	}
	g.out.op(ir.CFrame)
	g.symbols.ExitScope()
	g.out.op(ir.Halt)

	return g.out.program(), nil
}

func (g *Generator) statement(stmt ast.Statement) *diag.Error {
	switch s := stmt.(type) {
	case *ast.VarDeclaration:
		return g.varDeclaration(s)
	case *ast.ArrayDeclaration:
		return g.arrayDeclaration(s)
	case *ast.AssignStatement:
		return g.assign(s)
	case *ast.BlockStatement:
		return g.block(s)
	case *ast.IfStatement:
		return g.ifStatement(s)
	case *ast.WhileStatement:
		return g.whileStatement(s)
	case *ast.ForStatement:
		return g.forStatement(s)
	case *ast.FunctionStatement:
		return g.function(s)
	case *ast.ReturnStatement:
		return g.returnStatement(s)
	case *ast.PrintStatement:
		return g.builtin(types.Print, ir.Print, s, s.Value)
	case *ast.DelayStatement:
		return g.builtin(types.Delay, ir.Delay, s, s.Value)
	case *ast.ClearStatement:
		return g.builtin(types.Clear, ir.Clear, s, s.Value)
	case *ast.WriteStatement:
		return g.builtin(types.Write, ir.Write, s, s.X, s.Y, s.Colour)
	case *ast.WriteBoxStatement:
		return g.builtin(types.WriteBox, ir.WriteBox, s, s.X, s.Y, s.Width, s.Height, s.Colour)
	}
	return diag.New(diag.Internal, stmt.Pos(), "Unexpected statement %s", stmt.String())
}

// store emits the address of sym plus an optional pushed offset, then st.
func (g *Generator) store(sym *symtab.Symbol, indexed bool) {
	g.out.pushInt(sym.Index)
	if indexed {
		g.out.op(ir.Add)
	}
	g.out.pushInt(g.symbols.AccessLevel(sym))
	g.out.op(ir.St)
}

func (g *Generator) varDeclaration(s *ast.VarDeclaration) *diag.Error {
	typ, err := types.ParseScalar(s.Type)
	if err != nil {
		return err.At(s.Pos())
	}
	sym, derr := g.symbols.Declare(s.Name, typ)
	if derr != nil {
		return diag.From(derr, s.Pos())
	}
	value, err := g.expr(s.Value)
	if err != nil {
		return err
	}
	if err := types.Assign(typ, value); err != nil {
		return err.At(s.Value.Pos())
	}
	g.store(sym, false)
	return nil
}

func (g *Generator) arrayDeclaration(s *ast.ArrayDeclaration) *diag.Error {
	typ, err := types.Parse(s.Type)
	if err != nil {
		return err.At(s.Pos())
	}
	if !typ.Array {
		return diag.New(diag.TypeMismatch, s.Pos(), "Array declaration must use an array type, got '%s'", s.Type)
	}
	size, err := flow.ArraySize(s, g.symbols.IsGlobal())
	if err != nil {
		return err
	}
	if flow.DynamicSize(s, g.symbols.IsGlobal()) {
		// Typed only; the slots are already fixed by the initial values.
		mark := g.out.here()
		t, err := g.expr(s.Size)
		if err != nil {
			return err
		}
		g.out.discard(mark)
		if t != types.Int {
			return diag.New(diag.TypeMismatch, s.Size.Pos(), "Array size must be of type 'int', got %s", t)
		}
	}
	sym, derr := g.symbols.Declare(s.Name, typ, symtab.WithSize(size), symtab.WithValues(s.Values))
	if derr != nil {
		return diag.From(derr, s.Pos())
	}

	// A single initializer fills every slot.
	values := s.Values
	if len(values) == 1 && size > 1 {
		values = make([]ast.Expression, size)
		for i := range values {
			values[i] = s.Values[0]
		}
	}

	// Reversed so that sta pops the first element first.
	for i := len(values) - 1; i >= 0; i-- {
		value, err := g.expr(values[i])
		if err != nil {
			return err
		}
		if err := types.Element(s.Name, typ.Elem(), value); err != nil {
			return err.At(values[i].Pos())
		}
	}
	g.out.pushInt(len(values))
	g.out.pushInt(sym.Index)
	g.out.pushInt(g.symbols.AccessLevel(sym))
	g.out.op(ir.Sta)
	return nil
}

func (g *Generator) assign(s *ast.AssignStatement) *diag.Error {
	target := s.Target
	sym, err := g.variable(target)
	if err != nil {
		return err
	}
	if target.Index != nil {
		if err := types.Indexable(target.Value, sym.Type); err != nil {
			return err.At(target.Pos())
		}
	}

	value, err := g.expr(s.Value)
	if err != nil {
		return err
	}

	want := sym.Type
	if target.Index != nil {
		index, err := g.expr(target.Index)
		if err != nil {
			return err
		}
		if want, err = types.Index(target.Value, sym.Type, index); err != nil {
			return err.At(target.Index.Pos())
		}
	}
	g.types[target] = want

	if err := types.Assign(want, value); err != nil {
		return err.At(s.Pos())
	}
	g.store(sym, target.Index != nil)
	return nil
}

func (g *Generator) block(b *ast.BlockStatement) *diag.Error {
	g.symbols.EnterScope()
	defer g.symbols.ExitScope()

	g.out.pushInt(flow.FrameSlots(b.Statements))
	g.out.op(ir.OFrame)
	for _, stmt := range b.Statements {
		if err := g.statement(stmt); err != nil {
			return err
		}
	}
	g.out.op(ir.CFrame)
	return nil
}

// ifStatement emits the else-block first: cjmp jumps to the then-block
// when the condition holds and falls through to the else-block otherwise.
func (g *Generator) ifStatement(s *ast.IfStatement) *diag.Error {
	if err := g.condition("if", s.Condition); err != nil {
		return err
	}

	if s.Alternative == nil {
		g.out.push(ir.Relative(4))
		g.out.op(ir.CJmp)
		skip := g.out.placeholder()
		g.out.op(ir.Jmp)
		if err := g.block(s.Consequence); err != nil {
			return err
		}
		g.out.patch(skip)
		return nil
	}

	toThen := g.out.placeholder()
	g.out.op(ir.CJmp)
	if err := g.block(s.Alternative); err != nil {
		return err
	}
	skip := g.out.placeholder()
	g.out.op(ir.Jmp)
	g.out.patch(toThen)
	if err := g.block(s.Consequence); err != nil {
		return err
	}
	g.out.patch(skip)
	return nil
}

// loop emits the condition test at start, body and the backward jump.
func (g *Generator) loop(construct string, cond ast.Expression, body func() *diag.Error) *diag.Error {
	start := g.out.here()
	if err := g.condition(construct, cond); err != nil {
		return err
	}
	g.out.push(ir.Relative(4))
	g.out.op(ir.CJmp)
	exit := g.out.placeholder()
	g.out.op(ir.Jmp)
	if err := body(); err != nil {
		return err
	}
	g.out.jumpBack(start)
	g.out.patch(exit)
	return nil
}

func (g *Generator) whileStatement(s *ast.WhileStatement) *diag.Error {
	return g.loop("while", s.Condition, func() *diag.Error {
		return g.block(s.Body)
	})
}

func (g *Generator) forStatement(s *ast.ForStatement) *diag.Error {
	g.symbols.EnterScope()
	defer g.symbols.ExitScope()

	slots := 0
	if s.Init != nil {
		slots = 1
	}
	g.out.pushInt(slots)
	g.out.op(ir.OFrame)
	if s.Init != nil {
		if err := g.varDeclaration(s.Init); err != nil {
			return err
		}
	}
	if s.Condition == nil {
		return diag.New(diag.MissingCondition, s.Pos(), "for-loop requires a condition")
	}

	err := g.loop("for", s.Condition, func() *diag.Error {
		if err := g.block(s.Body); err != nil {
			return err
		}
		if s.Update != nil {
			return g.assign(s.Update)
		}
		return nil
	})
	if err != nil {
		return err
	}
	g.out.op(ir.CFrame)
	return nil
}

// function emits a jump over the body, the label, one alloc covering every
// parameter and local slot, and the body statements without a frame of
// their own.
func (g *Generator) function(s *ast.FunctionStatement) *diag.Error {
	if !g.symbols.IsGlobal() {
		return diag.New(diag.NestedFunctionDeclaration, s.Pos(), "Functions must be declared in the global scope.")
	}
	sig, err := flow.Signature(s)
	if err != nil {
		return err
	}
	if _, err := g.symbols.Declare(s.Name, sig.Result, symtab.WithSignature(sig)); err != nil {
		return diag.From(err, s.Pos())
	}

	skip := g.out.placeholder()
	g.out.op(ir.Jmp)
	g.out.label(s.Name)

	g.symbols.EnterScope()
	slots := flow.LocalSlots(s.Body)
	for i, p := range sig.Params {
		var opts []symtab.Option
		if p.Type.Array {
			opts = append(opts, symtab.WithSize(p.Size))
		}
		sym, err := g.symbols.Declare(p.Name, p.Type, opts...)
		if err != nil {
			g.symbols.ExitScope()
			return diag.From(err, s.Parameters[i].Pos())
		}
		slots += sym.Slots
	}
	g.out.pushInt(slots)
	g.out.op(ir.Alloc)

	g.returnType = &sig.Result
	for _, stmt := range s.Body.Statements {
		if err := g.statement(stmt); err != nil {
			g.symbols.ExitScope()
			return err
		}
	}
	g.returnType = nil
	g.symbols.ExitScope()
	g.out.patch(skip)

	if !flow.AlwaysReturns(s.Body) {
		return diag.New(diag.IncompleteReturnPaths, s.Pos(), "Function '%s' may not return a value on all paths.", s.Name)
	}
	return nil
}

func (g *Generator) returnStatement(s *ast.ReturnStatement) *diag.Error {
	if g.returnType == nil {
		return diag.New(diag.ReturnOutsideFunction, s.Pos(), "'return' statement outside of function.")
	}
	value, err := g.expr(s.Value)
	if err != nil {
		return err
	}
	if err := types.Return(value, *g.returnType); err != nil {
		return err.At(s.Value.Pos())
	}
	g.out.op(ir.Ret)
	return nil
}

func (g *Generator) builtin(b types.Builtin, op ir.Op, node ast.Node, operands ...ast.Expression) *diag.Error {
	if _, err := g.builtinCall(b, op, node, operands); err != nil {
		return err
	}
	return nil
}

// builtinCall pushes the operands last to first, so the first operand is
// on top of the stack, and emits op.
func (g *Generator) builtinCall(b types.Builtin, op ir.Op, node ast.Node, operands []ast.Expression) (types.Type, *diag.Error) {
	args := make([]types.Type, len(operands))
	for i := len(operands) - 1; i >= 0; i-- {
		t, err := g.expr(operands[i])
		if err != nil {
			return types.Type{}, err
		}
		args[i] = t
	}
	t, err := types.CheckBuiltin(b, args...)
	if err != nil {
		return types.Type{}, err.At(node.Pos())
	}
	g.out.op(op)
	return t, nil
}

func (g *Generator) condition(construct string, e ast.Expression) *diag.Error {
	t, err := g.expr(e)
	if err != nil {
		return err
	}
	if err := types.Condition(construct, t); err != nil {
		return err.At(e.Pos())
	}
	return nil
}

// expr emits e and records its type.
func (g *Generator) expr(e ast.Expression) (types.Type, *diag.Error) {
	t, err := g.emitExpr(e)
	if err != nil {
		return types.Type{}, err
	}
	g.types[e] = t
	return t, nil
}

func (g *Generator) emitExpr(e ast.Expression) (types.Type, *diag.Error) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		g.out.push(ir.Int(n.Value))
		return types.Int, nil
	case *ast.FloatLiteral:
		g.out.push(ir.Literal(n.Token.Literal))
		return types.Float, nil
	case *ast.BooleanLiteral:
		v, err := types.BoolValue(n.Value)
		if err != nil {
			return types.Type{}, err.At(n.Pos())
		}
		g.out.pushInt(v)
		return types.Bool, nil
	case *ast.ColourLiteral:
		v, err := types.ColourValue(n.Value)
		if err != nil {
			return types.Type{}, err.At(n.Pos())
		}
		g.out.push(ir.Uint(v))
		return types.Colour, nil
	case *ast.Identifier:
		return g.identifier(n)
	case *ast.BinaryExpression:
		return g.binary(n)
	case *ast.UnaryExpression:
		operand, err := g.expr(n.Operand)
		if err != nil {
			return types.Type{}, err
		}
		t, err := types.Unary(n.Operator, operand)
		if err != nil {
			return types.Type{}, err.At(n.Pos())
		}
		if n.Operator == "not" {
			g.out.op(ir.Not)
		} else {
			g.out.pushInt(-1)
			g.out.op(ir.Mul)
		}
		return t, nil
	case *ast.CastExpression:
		// Values share one runtime representation, so a cast is a no-op.
		from, err := g.expr(n.Value)
		if err != nil {
			return types.Type{}, err
		}
		t, err := types.Cast(from, n.Target)
		if err != nil {
			return types.Type{}, err.At(n.Pos())
		}
		return t, nil
	case *ast.CallExpression:
		return g.call(n)
	case *ast.WidthExpression:
		return g.builtinCall(types.Width, ir.Width, n, nil)
	case *ast.HeightExpression:
		return g.builtinCall(types.Height, ir.Height, n, nil)
	case *ast.ReadExpression:
		return g.builtinCall(types.Read, ir.Read, n, []ast.Expression{n.X, n.Y})
	case *ast.RandomIntExpression:
		return g.builtinCall(types.RandomInt, ir.Irnd, n, []ast.Expression{n.Bound})
	}
	return types.Type{}, diag.New(diag.Internal, e.Pos(), "Unexpected expression %s", e.String())
}

// binary pushes the right operand first so the left one is on top.
func (g *Generator) binary(n *ast.BinaryExpression) (types.Type, *diag.Error) {
	right, err := g.expr(n.Right)
	if err != nil {
		return types.Type{}, err
	}
	left, err := g.expr(n.Left)
	if err != nil {
		return types.Type{}, err
	}
	t, err := types.Binary(n.Operator, left, right)
	if err != nil {
		return types.Type{}, err.At(n.Pos())
	}
	for _, op := range binaryOps[n.Operator] {
		g.out.op(op)
	}
	return t, nil
}

func (g *Generator) identifier(id *ast.Identifier) (types.Type, *diag.Error) {
	sym, err := g.variable(id)
	if err != nil {
		return types.Type{}, err
	}
	level := g.symbols.AccessLevel(sym)
	if id.Index == nil {
		g.out.push(ir.Address{Index: sym.Index, Level: level})
		return sym.Type, nil
	}

	if err := types.Indexable(id.Value, sym.Type); err != nil {
		return types.Type{}, err.At(id.Pos())
	}
	index, err := g.expr(id.Index)
	if err != nil {
		return types.Type{}, err
	}
	t, err := types.Index(id.Value, sym.Type, index)
	if err != nil {
		return types.Type{}, err.At(id.Index.Pos())
	}
	g.out.push(ir.Offset{Index: sym.Index, Level: level})
	return t, nil
}

func (g *Generator) variable(id *ast.Identifier) (*symtab.Symbol, *diag.Error) {
	sym, err := g.symbols.Lookup(id.Value)
	if err != nil {
		return nil, diag.From(err, id.Pos())
	}
	if sym.Kind == symtab.Function {
		return nil, diag.New(diag.TypeMismatch, id.Pos(), "'%s' is a function, not a variable", id.Value)
	}
	return sym, nil
}

// call emits a call site. Scalar arguments are followed by an explicit
// argument count. An array argument is pushed as its size, a pusha of its
// slots and the size again, and the count push is omitted.
func (g *Generator) call(n *ast.CallExpression) (types.Type, *diag.Error) {
	sym, err := g.symbols.Lookup(n.Function)
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

	// Any array argument drops the count push, not only a trailing one.
	// Mixed scalar and array calls therefore leave the VM short of a count;
	// callers pass arrays alone.
	byReference := false
	for i, arg := range n.Arguments {
		if sig.Params[i].Type.Array {
			array, err := flow.ArrayArgument(g.symbols, sig, i, arg)
			if err != nil {
				return types.Type{}, err
			}
			g.out.pushInt(array.Slots)
			g.out.pushA(ir.Address{Index: array.Index, Level: g.symbols.AccessLevel(array)})
			g.out.pushInt(array.Slots)
			byReference = true
			continue
		}
		t, err := g.expr(arg)
		if err != nil {
			return types.Type{}, err
		}
		if err := sig.Argument(i, t); err != nil {
			return types.Type{}, err.At(arg.Pos())
		}
	}

	if !byReference {
		g.out.pushInt(len(n.Arguments))
	}
	g.out.push(ir.Label(n.Function))
	g.out.op(ir.Call)
	return sig.Result, nil
}

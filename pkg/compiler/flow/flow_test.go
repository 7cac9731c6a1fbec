package flow

import (
	"testing"

	"github.com/zurustar/parlc/pkg/compiler/ast"
	"github.com/zurustar/parlc/pkg/compiler/diag"
	"github.com/zurustar/parlc/pkg/compiler/lexer"
	"github.com/zurustar/parlc/pkg/compiler/parser"
	"github.com/zurustar/parlc/pkg/compiler/symtab"
	"github.com/zurustar/parlc/pkg/compiler/types"
)

func parseProgram(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, err := parser.New(lexer.New(input)).ParseProgram()
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return program
}

func functionBody(t *testing.T, input string) *ast.BlockStatement {
	t.Helper()
	fn, ok := parseProgram(t, input).Statements[0].(*ast.FunctionStatement)
	if !ok {
		t.Fatalf("%q does not start with a function", input)
	}
	return fn.Body
}

func TestAlwaysReturns(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"plain return", `fun f() -> int { return 1; }`, true},
		{"if without else", `fun f(c:bool) -> int { if (c) { return 1; } }`, false},
		{"if with else", `fun f(c:bool) -> int { if (c) { return 1; } else { return 2; } }`, true},
		{"else missing return", `fun f(c:bool) -> int { if (c) { return 1; } else { __print 2; } }`, false},
		{"nested block", `fun f() -> int { { { return 1; } } }`, true},
		{"return after if", `fun f(c:bool) -> int { if (c) { return 1; } return 2; }`, true},
		{"while body", `fun f() -> int { while (true) { return 1; } }`, false},
		{"for body", `fun f() -> int { for (; true; ) { return 1; } }`, false},
		{"nested if chain", `fun f(a:bool, b:bool) -> int {
			if (a) { if (b) { return 1; } else { return 2; } } else { return 3; }
		}`, true},
		{"empty body", `fun f() -> int { }`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlwaysReturns(functionBody(t, tt.input)); got != tt.want {
				t.Errorf("AlwaysReturns = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFrameSlots(t *testing.T) {
	program := parseProgram(t, `
	let a:int = 1;
	let b:int[] = [1, 2, 3];
	let c:float[5] = [0.0];
	fun f() -> int { let inner:int = 1; return inner; }
	{ let hidden:int = 2; }
	__print a;
	`)
	if got := FrameSlots(program.Statements); got != 1+3+5+1 {
		t.Errorf("FrameSlots = %d, want 10", got)
	}
}

func TestLocalSlots(t *testing.T) {
	body := functionBody(t, `fun f(c:bool) -> int {
		let a:int = 1;
		let xs:int[4] = [0];
		if (c) { let b:int = 2; } else { let d:int = 3; let e:int = 4; }
		while (c) { let w:int = 5; }
		for (let i:int = 0; i < 3; i = i + 1) { let k:int = i; }
		{ let n:bool = true; }
		return a;
	}`)
	// a + xs(4) + b + d + e + w + i + k + n
	if got := LocalSlots(body); got != 12 {
		t.Errorf("LocalSlots = %d, want 12", got)
	}
}

func TestConstInt(t *testing.T) {
	tests := []struct {
		expr string
		want int64
		kind diag.Kind
		ok   bool
	}{
		{"8", 8, 0, true},
		{"2 * (3 + 1)", 8, 0, true},
		{"-4 + 10", 6, 0, true},
		{"9 / 2", 4, 0, true},
		{"1.5", 0, diag.TypeMismatch, false},
		{"true", 0, diag.TypeMismatch, false},
		{"n", 0, diag.ConstantRequired, false},
		{"__width", 0, diag.ConstantRequired, false},
		{"4 / 0", 0, diag.ConstantRequired, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			stmt := parseProgram(t, "__print "+tt.expr+";").Statements[0].(*ast.PrintStatement)
			got, err := ConstInt(stmt.Value)
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("ConstInt = %d, %v; want %d", got, err, tt.want)
				}
				return
			}
			if err == nil || err.Kind != tt.kind {
				t.Errorf("ConstInt error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestArraySize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		global bool
		want   int
		kind   diag.Kind
		ok     bool
	}{
		{"unsized", "let a:int[] = [1, 2];", true, 2, 0, true},
		{"literal size fill", "let a:int[6] = [0];", true, 6, 0, true},
		{"literal size exact", "let a:int[2] = [1, 2];", true, 2, 0, true},
		{"global expression", "let a:int[2 * 2] = [0];", true, 0, diag.ConstantRequired, false},
		{"local expression", "let a:int[2 * 2] = [0];", false, 4, 0, true},
		{"global float size", "let a:int[2.5] = [0];", true, 0, diag.TypeMismatch, false},
		{"local variable size", "let a:int[n] = [0];", false, 1, 0, true},
		{"local call size", "let a:int[f(1) + 2] = [1, 2, 3];", false, 3, 0, true},
		{"global variable size", "let a:int[n] = [0];", true, 0, diag.ConstantRequired, false},
		{"zero size", "let a:int[0] = [0];", true, 0, diag.ConstantRequired, false},
		{"count mismatch", "let a:int[3] = [1, 2];", true, 0, diag.TypeMismatch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decl := parseProgram(t, tt.input).Statements[0].(*ast.ArrayDeclaration)
			got, err := ArraySize(decl, tt.global)
			if tt.ok {
				if err != nil || got != tt.want {
					t.Errorf("ArraySize = %d, %v; want %d", got, err, tt.want)
				}
				return
			}
			if err == nil || err.Kind != tt.kind {
				t.Errorf("ArraySize error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestDynamicSize(t *testing.T) {
	tests := []struct {
		input  string
		global bool
		want   bool
	}{
		{"let a:int[] = [1];", false, false},
		{"let a:int[2 * 2] = [0];", false, false},
		{"let a:int[-(1 + 1)] = [0];", false, false},
		{"let a:int[n] = [0];", false, true},
		{"let a:int[n + 1] = [0];", false, true},
		{"let a:int[__width] = [0];", false, true},
		{"let a:int[n] = [0];", true, false},
	}

	for _, tt := range tests {
		decl := parseProgram(t, tt.input).Statements[0].(*ast.ArrayDeclaration)
		if got := DynamicSize(decl, tt.global); got != tt.want {
			t.Errorf("DynamicSize(%q, global=%v) = %v, want %v", tt.input, tt.global, got, tt.want)
		}
	}
}

func TestParamSize(t *testing.T) {
	fn := parseProgram(t, `fun f(a:int[4], b:int[], c:int[k], d:int[1.0]) -> int { return 1; }`).Statements[0].(*ast.FunctionStatement)

	if n, err := ParamSize(fn.Parameters[0]); err != nil || n != 4 {
		t.Errorf("ParamSize(a) = %d, %v", n, err)
	}
	for _, p := range fn.Parameters[1:3] {
		if _, err := ParamSize(p); err == nil || err.Kind != diag.ConstantRequired {
			t.Errorf("ParamSize(%s) = %v, want ConstantRequired", p.Name, err)
		}
	}
	if _, err := ParamSize(fn.Parameters[3]); err == nil || err.Kind != diag.TypeMismatch {
		t.Errorf("ParamSize(d) = %v, want TypeMismatch", err)
	}
}

func TestSignature(t *testing.T) {
	fn := parseProgram(t, `fun f(x:float, a:int[3]) -> bool { return true; }`).Statements[0].(*ast.FunctionStatement)

	sig, err := Signature(fn)
	if err != nil {
		t.Fatalf("Signature() error = %v", err)
	}
	if got := sig.String(); got != "f(x:float, a:int[]) -> bool" {
		t.Errorf("String() = %q", got)
	}
	if sig.Params[0].Size != 0 || sig.Params[1].Size != 3 {
		t.Errorf("param sizes = %d, %d", sig.Params[0].Size, sig.Params[1].Size)
	}
	if sig.Result != types.Bool {
		t.Errorf("Result = %v", sig.Result)
	}

	bad := parseProgram(t, `fun g(a:int[]) -> int { return 1; }`).Statements[0].(*ast.FunctionStatement)
	if _, err := Signature(bad); err == nil || err.Kind != diag.ConstantRequired {
		t.Errorf("Signature(g) = %v, want ConstantRequired", err)
	}
}

func TestArrayArgument(t *testing.T) {
	tab := symtab.New()
	tab.EnterScope()
	if _, err := tab.Declare("a", types.ArrayOf(types.Float), symtab.WithSize(2)); err != nil {
		t.Fatal(err)
	}
	sig := &types.Signature{Name: "f", Params: []types.Param{{Name: "xs", Type: types.ArrayOf(types.Int), Size: 3}}, Result: types.Int}

	call := parseProgram(t, `__print f(a); __print f(a[0]); __print f(b);`)
	arg := func(i int) ast.Expression {
		return call.Statements[i].(*ast.PrintStatement).Value.(*ast.CallExpression).Arguments[0]
	}

	// Element types are not compared.
	if sym, err := ArrayArgument(tab, sig, 0, arg(0)); err != nil || sym.Name != "a" {
		t.Errorf("ArrayArgument(a) = %v, %v", sym, err)
	}
	if _, err := ArrayArgument(tab, sig, 0, arg(1)); err == nil || err.Kind != diag.TypeMismatch {
		t.Errorf("ArrayArgument(a[0]) = %v, want TypeMismatch", err)
	}
	if _, err := ArrayArgument(tab, sig, 0, arg(2)); err == nil || err.Kind != diag.UndeclaredIdentifier {
		t.Errorf("ArrayArgument(b) = %v, want UndeclaredIdentifier", err)
	}
}

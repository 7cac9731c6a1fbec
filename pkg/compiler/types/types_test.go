package types

import (
	"testing"

	"github.com/zurustar/parlc/pkg/compiler/diag"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		want    Type
		wantErr bool
	}{
		{"int", Int, false},
		{"float", Float, false},
		{"bool", Bool, false},
		{"colour", Colour, false},
		{"int[]", ArrayOf(Int), false},
		{"colour[]", ArrayOf(Colour), false},
		{"string", Type{}, true},
		{"int[][]", Type{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.name, got, tt.want)
			}
			if !tt.wantErr && got.String() != tt.name {
				t.Errorf("String() = %q, want %q", got.String(), tt.name)
			}
		})
	}
}

func TestLiteralValues(t *testing.T) {
	if v, err := BoolValue("true"); err != nil || v != 1 {
		t.Errorf("BoolValue(true) = %d, %v", v, err)
	}
	if v, err := BoolValue("false"); err != nil || v != 0 {
		t.Errorf("BoolValue(false) = %d, %v", v, err)
	}
	if _, err := BoolValue("True"); err == nil || err.Kind != diag.TypeMismatch {
		t.Errorf("BoolValue(True) should be a TypeMismatch, got %v", err)
	}

	colours := map[string]uint32{
		"#000000": 0,
		"#00FF00": 65280,
		"#ffffff": 16777215,
		"#0a0B0c": 0x0a0b0c,
	}
	for text, want := range colours {
		got, err := ColourValue(text)
		if err != nil || got != want {
			t.Errorf("ColourValue(%q) = %d, %v; want %d", text, got, err, want)
		}
	}
	for _, bad := range []string{"00ff00", "#fff", "#gg0000"} {
		if _, err := ColourValue(bad); err == nil {
			t.Errorf("ColourValue(%q) should fail", bad)
		}
	}
}

func TestBinary(t *testing.T) {
	tests := []struct {
		op          string
		left, right Type
		want        Type
		kind        diag.Kind
		wantErr     bool
	}{
		{"+", Int, Int, Int, 0, false},
		{"/", Float, Float, Float, 0, false},
		{"<", Int, Int, Bool, 0, false},
		{"==", Colour, Colour, Bool, 0, false},
		{"!=", Bool, Bool, Bool, 0, false},
		{"and", Bool, Bool, Bool, 0, false},
		{"or", Bool, Bool, Bool, 0, false},
		{"+", Int, Float, Type{}, diag.TypeMismatch, true},
		{"*", Bool, Bool, Type{}, diag.TypeMismatch, true},
		{"-", Colour, Colour, Type{}, diag.TypeMismatch, true},
		{"and", Int, Int, Type{}, diag.TypeMismatch, true},
		{"<", ArrayOf(Int), ArrayOf(Int), Type{}, diag.TypeMismatch, true},
		{"%", Int, Int, Type{}, diag.UnknownOperator, true},
	}

	for _, tt := range tests {
		t.Run(tt.op+" "+tt.left.String()+" "+tt.right.String(), func(t *testing.T) {
			got, err := Binary(tt.op, tt.left, tt.right)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				if err.Kind != tt.kind {
					t.Errorf("kind = %v, want %v", err.Kind, tt.kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Binary = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnary(t *testing.T) {
	if got, err := Unary("not", Bool); err != nil || got != Bool {
		t.Errorf("not bool = %v, %v", got, err)
	}
	if got, err := Unary("-", Float); err != nil || got != Float {
		t.Errorf("-float = %v, %v", got, err)
	}
	if _, err := Unary("not", Int); err == nil || err.Kind != diag.TypeMismatch {
		t.Errorf("not int should fail with TypeMismatch, got %v", err)
	}
	if _, err := Unary("-", Colour); err == nil {
		t.Error("-colour should fail")
	}
}

func TestCast(t *testing.T) {
	scalars := []Type{Int, Float, Bool, Colour}
	for _, from := range scalars {
		for _, to := range scalars {
			got, err := Cast(from, to.String())
			forbidden := (from == Bool && to == Colour) || (from == Colour && to == Bool)
			if forbidden {
				if err == nil || err.Kind != diag.TypeMismatch {
					t.Errorf("%v as %v should be a TypeMismatch, got %v", from, to, err)
				}
				continue
			}
			if err != nil || got != to {
				t.Errorf("%v as %v = %v, %v", from, to, got, err)
			}
		}
	}
	if _, err := Cast(Int, "string"); err == nil {
		t.Error("unknown cast target should fail")
	}
	if _, err := Cast(ArrayOf(Int), "float"); err == nil {
		t.Error("casting an array should fail")
	}
}

func TestIndex(t *testing.T) {
	if got, err := Index("a", ArrayOf(Float), Int); err != nil || got != Float {
		t.Errorf("a[int] = %v, %v", got, err)
	}
	if _, err := Index("x", Int, Int); err == nil || err.Kind != diag.InvalidArrayAccess {
		t.Errorf("indexing a scalar should be InvalidArrayAccess, got %v", err)
	}
	if _, err := Index("a", ArrayOf(Int), Float); err == nil || err.Kind != diag.InvalidArrayAccess {
		t.Errorf("float index should be InvalidArrayAccess, got %v", err)
	}
}

func TestSignature(t *testing.T) {
	sig := &Signature{
		Name:   "f",
		Params: []Param{{Name: "a", Type: Int}, {Name: "b", Type: Bool}},
		Result: Float,
	}
	if sig.String() != "f(a:int, b:bool) -> float" {
		t.Errorf("String() = %q", sig.String())
	}
	if err := sig.Arity(2); err != nil {
		t.Errorf("Arity(2) = %v", err)
	}
	err := sig.Arity(1)
	if err == nil || err.Kind != diag.ArityMismatch {
		t.Fatalf("Arity(1) = %v", err)
	}
	if err.Message != "Function 'f' expects 2 argument(s), got 1." {
		t.Errorf("message = %q", err.Message)
	}
	if err := sig.Argument(1, Int); err == nil || err.Kind != diag.TypeMismatch {
		t.Errorf("Argument(1, int) = %v", err)
	}
}

func TestCheckBuiltin(t *testing.T) {
	tests := []struct {
		name    string
		builtin Builtin
		args    []Type
		want    Type
		wantErr bool
	}{
		{"delay", Delay, []Type{Int}, Type{}, false},
		{"delay float", Delay, []Type{Float}, Type{}, true},
		{"clear", Clear, []Type{Colour}, Type{}, false},
		{"clear int", Clear, []Type{Int}, Type{}, true},
		{"write", Write, []Type{Int, Int, Colour}, Type{}, false},
		{"write swapped", Write, []Type{Int, Colour, Int}, Type{}, true},
		{"write_box", WriteBox, []Type{Int, Int, Int, Int, Colour}, Type{}, false},
		{"write_box float width", WriteBox, []Type{Int, Int, Float, Int, Colour}, Type{}, true},
		{"read", Read, []Type{Int, Int}, Colour, false},
		{"random", RandomInt, []Type{Int}, Int, false},
		{"random bool", RandomInt, []Type{Bool}, Type{}, true},
		{"width", Width, nil, Int, false},
		{"height", Height, nil, Int, false},
		{"print", Print, []Type{Colour}, Type{}, false},
		{"print array", Print, []Type{ArrayOf(Int)}, Type{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckBuiltin(tt.builtin, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckBuiltin error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CheckBuiltin = %v, want %v", got, tt.want)
			}
		})
	}
}

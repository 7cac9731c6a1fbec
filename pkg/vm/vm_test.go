package vm

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/zurustar/parlc/pkg/ir"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runIR parses text, runs it and returns the printed lines.
func runIR(t *testing.T, text string, opts ...Option) ([]string, *VM, error) {
	t.Helper()
	prog, err := ir.Parse(text)
	if err != nil {
		t.Fatalf("ir.Parse() error = %v", err)
	}
	var out bytes.Buffer
	opts = append([]Option{WithOutput(&out), WithLogger(quietLogger()), WithSeed(1)}, opts...)
	m := New(prog, opts...)
	err = m.Run(context.Background())
	trimmed := strings.TrimRight(out.String(), "\n")
	if trimmed == "" {
		return nil, m, err
	}
	return strings.Split(trimmed, "\n"), m, err
}

func lines(s ...string) string { return strings.Join(s, "\n") }

func TestRun_Output(t *testing.T) {
	tests := []struct {
		name string
		ir   string
		want []string
	}{
		{"literal", lines("push 42", "print"), []string{"42"}},
		{"negative literal", lines("push -3", "print"), []string{"-3"}},
		{"float literal", lines("push 2.5", "print"), []string{"2.5"}},
		{"add", lines("push 2", "push 3", "add", "print"), []string{"5"}},
		{"sub uses top as left", lines("push 2", "push 7", "sub", "print"), []string{"5"}},
		{"mul", lines("push 6", "push 7", "mul", "print"), []string{"42"}},
		{"div is real division", lines("push 2", "push 7", "div", "print"), []string{"3.5"}},
		{"lt true", lines("push 5", "push 3", "lt", "print"), []string{"1"}},
		{"lt false", lines("push 3", "push 5", "lt", "print"), []string{"0"}},
		{"le equal", lines("push 3", "push 3", "le", "print"), []string{"1"}},
		{"gt", lines("push 3", "push 5", "gt", "print"), []string{"1"}},
		{"ge", lines("push 5", "push 3", "ge", "print"), []string{"0"}},
		{"eq", lines("push 4", "push 4", "eq", "print"), []string{"1"}},
		{"not equal", lines("push 4", "push 5", "eq", "not", "print"), []string{"1"}},
		{"and", lines("push 0", "push 1", "and", "print"), []string{"0"}},
		{"or", lines("push 0", "push 1", "or", "print"), []string{"1"}},
		{"unary minus", lines("push -1", "push 8", "mul", "print"), []string{"-8"}},
		{"multiple prints in order", lines("push 1", "print", "push 2", "print"), []string{"1", "2"}},
		{"halt stops", lines("push 1", "print", "halt", "push 2", "print"), []string{"1"}},
		{"absolute jump", lines("push 3", "jmp", "halt", "push 9", "print"), []string{"9"}},
		{"relative jump forward", lines("push #PC+3", "jmp", "halt", "push 7", "print"), []string{"7"}},
		{"cjmp taken", lines("push 1", "push #PC+4", "cjmp", "push 1", "print", "push 2", "print"), []string{"2"}},
		{"cjmp not taken", lines("push 0", "push #PC+5", "cjmp", "push 1", "print", "push 2", "print"), []string{"1", "2"}},
		{"labels are no-ops", lines(".main", "push 5", ".x", "print"), []string{"5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := runIR(t, tt.ir)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRun_Frames(t *testing.T) {
	t.Run("store and load", func(t *testing.T) {
		got, _, err := runIR(t, lines(
			"push 2", "oframe",
			"push 11", "push 1", "push 0", "st",
			"push [1:0]", "print",
			"cframe",
		))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(got) != 1 || got[0] != "11" {
			t.Errorf("output = %q, want [11]", got)
		}
	})

	t.Run("access level follows static links", func(t *testing.T) {
		got, _, err := runIR(t, lines(
			"push 1", "oframe",
			"push 5", "push 0", "push 0", "st",
			"push 1", "oframe",
			"push 6", "push 0", "push 0", "st",
			"push [0:1]", "print",
			"push [0:0]", "print",
			"push 7", "push 0", "push 1", "st",
			"cframe",
			"push [0:0]", "print",
			"cframe",
		))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if strings.Join(got, ",") != "5,6,7" {
			t.Errorf("output = %q, want [5 6 7]", got)
		}
	})

	t.Run("sta fills consecutive slots from the top", func(t *testing.T) {
		got, _, err := runIR(t, lines(
			"push 3", "oframe",
			"push 30", "push 20", "push 10",
			"push 3", "push 0", "push 0", "sta",
			"push [0:0]", "print",
			"push [1:0]", "print",
			"push [2:0]", "print",
			"push 2", "push +[0:0]", "print",
			"cframe",
		))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if strings.Join(got, ",") != "10,20,30,30" {
			t.Errorf("output = %q", got)
		}
	})

	t.Run("pusha pushes slots in order", func(t *testing.T) {
		got, _, err := runIR(t, lines(
			"push 2", "oframe",
			"push 4", "push 3",
			"push 2", "push 0", "push 0", "sta",
			"push 2", "pusha [0:0]",
			"print", "print",
			"cframe",
		))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if strings.Join(got, ",") != "4,3" {
			t.Errorf("output = %q, want [4 3]", got)
		}
	})

	t.Run("alloc grows the current frame", func(t *testing.T) {
		got, _, err := runIR(t, lines(
			"push 0", "oframe",
			"push 2", "alloc",
			"push 9", "push 1", "push 0", "st",
			"push [1:0]", "print",
		))
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(got) != 1 || got[0] != "9" {
			t.Errorf("output = %q, want [9]", got)
		}
	})
}

const squareProgram = `
.main
push 4
jmp
halt
push 1
oframe
push 7
push 0
push 0
st
push [0:0]
push 1
push .square
call
print
cframe
halt
.square
push 0
alloc
push [0:0]
push [0:0]
mul
ret
`

func TestRun_CallAndReturn(t *testing.T) {
	got, m, err := runIR(t, squareProgram)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(got) != 1 || got[0] != "49" {
		t.Errorf("output = %q, want [49]", got)
	}
	if len(m.stack) != 0 {
		t.Errorf("operand stack not empty after run: %v", m.stack)
	}
}

func TestRun_CallFrameParentIsGlobal(t *testing.T) {
	// The callee reads the global through level 1 although the caller
	// sits inside a nested block.
	got, _, err := runIR(t, lines(
		"push 1", "oframe",
		"push 3", "push 0", "push 0", "st",
		"push 0", "oframe",
		"push 0", "push .g", "call", "print",
		"cframe", "cframe", "halt",
		".g",
		"push [0:1]", "push 100", "add", "ret",
	))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(got) != 1 || got[0] != "103" {
		t.Errorf("output = %q, want [103]", got)
	}
}

func TestRun_ReturnClosesNestedFrames(t *testing.T) {
	_, m, err := runIR(t, lines(
		"push 0", "oframe",
		"push 0", "push .f", "call", "print",
		"halt",
		".f",
		"push 1", "oframe",
		"push 1", "oframe",
		"push 5", "ret",
	))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(m.frames) != 1 {
		t.Errorf("frames after return = %d, want 1", len(m.frames))
	}
}

func TestRun_DivisionByZeroIsNotFatal(t *testing.T) {
	var logs bytes.Buffer
	got, _, err := runIR(t, lines("push 0", "push 1", "div", "print", "push 2", "print"),
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Join(got, ",") != "0,2" {
		t.Errorf("output = %q, want [0 2]", got)
	}
	if !strings.Contains(logs.String(), "DIVISION_BY_ZERO") {
		t.Errorf("division by zero was not logged: %s", logs.String())
	}
}

func TestRun_FatalErrors(t *testing.T) {
	tests := []struct {
		name string
		ir   string
		want ErrorType
		pc   int
	}{
		{"pop from empty stack", lines("push 1", "add"), ErrorStackUnderflow, 1},
		{"load without frame", "push [0:0]", ErrorInvalidOperation, 0},
		{"slot out of range", lines("push 1", "oframe", "push [3:0]"), ErrorIndexOutOfRange, 2},
		{"level out of range", lines("push 1", "oframe", "push [0:2]"), ErrorIndexOutOfRange, 2},
		{"offset out of range", lines("push 2", "oframe", "push 5", "push +[0:0]"), ErrorIndexOutOfRange, 3},
		{"jump outside program", lines("push 99", "jmp"), ErrorInvalidJump, 1},
		{"jump to fraction", lines("push 0.5", "jmp"), ErrorInvalidJump, 1},
		{"unknown label", lines("push .nowhere", "call"), ErrorUnknownLabel, 0},
		{"cframe without frame", "cframe", ErrorInvalidOperation, 0},
		{"ret outside call", lines("push 1", "ret"), ErrorInvalidOperation, 1},
		{"negative frame size", lines("push -1", "oframe"), ErrorInvalidOperation, 1},
		{"runaway recursion", lines("push 0", "oframe", ".f", "push 0", "push .f", "call"), ErrorStackOverflow, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runIR(t, tt.ir)
			var rerr *RuntimeError
			if !errors.As(err, &rerr) {
				t.Fatalf("Run() error = %v, want *RuntimeError", err)
			}
			if rerr.Type != tt.want {
				t.Errorf("Type = %s, want %s (%v)", rerr.Type, tt.want, rerr)
			}
			if rerr.PC != tt.pc {
				t.Errorf("PC = %d, want %d", rerr.PC, tt.pc)
			}
			if !rerr.IsFatal() {
				t.Errorf("%s should be fatal", rerr.Type)
			}
		})
	}
}

func TestRun_OperandStackOverflow(t *testing.T) {
	// push 1 forever
	_, _, err := runIR(t, lines("push 1", "push 0", "jmp"))
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Type != ErrorStackOverflow {
		t.Fatalf("Run() error = %v, want STACK_OVERFLOW", err)
	}
}

func TestRun_UnpatchedPlaceholder(t *testing.T) {
	prog := &ir.Program{Instructions: []ir.Instruction{
		{Op: ir.Push, Arg: ir.Placeholder{}},
		{Op: ir.Jmp},
	}}
	err := New(prog, WithLogger(quietLogger())).Run(context.Background())
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Type != ErrorInvalidJump {
		t.Fatalf("Run() error = %v, want INVALID_JUMP", err)
	}
}

func TestRun_MalformedLiteralFailsBeforeRunning(t *testing.T) {
	var out bytes.Buffer
	prog := &ir.Program{Instructions: []ir.Instruction{
		{Op: ir.Push, Arg: ir.Literal("1")},
		{Op: ir.Print},
		{Op: ir.Push, Arg: ir.Literal("x")},
	}}
	err := New(prog, WithOutput(&out), WithLogger(quietLogger())).Run(context.Background())
	if err == nil {
		t.Fatal("Run() succeeded, want error")
	}
	if out.Len() != 0 {
		t.Errorf("program ran before validation: %q", out.String())
	}
}

func TestRun_StepLimit(t *testing.T) {
	_, m, err := runIR(t, lines("push 0", "jmp"), WithStepLimit(100))
	var rerr *RuntimeError
	if !errors.As(err, &rerr) || rerr.Type != ErrorStepLimit {
		t.Fatalf("Run() error = %v, want STEP_LIMIT", err)
	}
	if m.Steps() != 100 {
		t.Errorf("Steps() = %d, want 100", m.Steps())
	}
}

func TestRun_Timeout(t *testing.T) {
	start := time.Now()
	_, _, err := runIR(t, lines("push 0", "jmp"), WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("Run() error = %v, want nil on timeout", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("timeout took %v", time.Since(start))
	}
}

func TestRun_DelayIsCancellable(t *testing.T) {
	start := time.Now()
	_, _, err := runIR(t, lines("push 100000", "delay"), WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("delay was not cancelled, took %v", time.Since(start))
	}
}

func TestRun_NoDelay(t *testing.T) {
	start := time.Now()
	got, _, err := runIR(t, lines("push 5000", "delay", "push 1", "print"), WithNoDelay(true))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("delay was not skipped")
	}
	if len(got) != 1 {
		t.Errorf("output = %q", got)
	}
}

func TestStop(t *testing.T) {
	prog, err := ir.Parse(lines("push 0", "jmp"))
	if err != nil {
		t.Fatal(err)
	}
	m := New(prog, WithLogger(quietLogger()))
	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	deadline := time.After(2 * time.Second)
	for !m.IsRunning() {
		select {
		case <-deadline:
			t.Fatal("VM never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	m.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not end the run")
	}
}

func TestRun_Display(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	got, _, err := runIR(t, lines(
		"width", "print",
		"height", "print",
		"push 255", "clear",
		"push 16711680", "push 2", "push 1", "write",
		"push 65280", "push 1", "push 2", "push 1", "push 0", "writebox",
		"push 2", "push 1", "read", "print",
		"push 0", "push 0", "read", "print",
		"push 1", "push 1", "read", "print",
	), WithDisplay(fb))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"4", "3", "16711680", "255", "65280"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRun_PrintListener(t *testing.T) {
	var seen []string
	_, _, err := runIR(t, lines("push 1", "print", "push 2.25", "print"),
		WithPrintListener(func(line string) { seen = append(seen, line) }))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.Join(seen, ",") != "1,2.25" {
		t.Errorf("listener saw %q", seen)
	}
}

func TestRun_RandomIsSeededAndBounded(t *testing.T) {
	text := strings.Repeat("push 6\nirnd\nprint\n", 50)
	a, _, err := runIR(t, text, WithSeed(42))
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := runIR(t, text, WithSeed(42))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(a, ",") != strings.Join(b, ",") {
		t.Error("same seed produced different sequences")
	}
	for _, v := range a {
		if len(v) != 1 || v[0] < '0' || v[0] > '5' {
			t.Errorf("irnd 6 produced %q", v)
		}
	}

	zero, _, err := runIR(t, lines("push 0", "irnd", "print"))
	if err != nil {
		t.Fatal(err)
	}
	if zero[0] != "0" {
		t.Errorf("irnd 0 = %q, want 0", zero[0])
	}
}

func TestRun_AlreadyRunning(t *testing.T) {
	prog, _ := ir.Parse(lines("push 0", "jmp"))
	m := New(prog, WithLogger(quietLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	for !m.IsRunning() {
		time.Sleep(time.Millisecond)
	}
	if err := m.Run(context.Background()); err == nil {
		t.Error("second Run() should fail while running")
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{42, "42"},
		{-7, "-7"},
		{3.5, "3.5"},
		{0.1, "0.1"},
		{1e20, "100000000000000000000"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

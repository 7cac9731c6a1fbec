// Package ir defines PArIR, the flat stack-machine instruction format.
// The code generator produces Programs and the VM executes them.
// Both sides share the textual form rendered by String and read back by Parse.
package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is an instruction mnemonic.
type Op string

// The PArIR instruction set.
const (
	// Push pushes its operand. Args: Literal, Address, Offset, Relative or Label.
	Push Op = "push"
	// PushA pops n and pushes n consecutive slots starting at its Address.
	PushA Op = "pusha"

	Add Op = "add"
	Sub Op = "sub"
	Mul Op = "mul"
	Div Op = "div"

	Lt  Op = "lt"
	Le  Op = "le"
	Gt  Op = "gt"
	Ge  Op = "ge"
	Eq  Op = "eq"
	Not Op = "not"
	And Op = "and"
	Or  Op = "or"

	// St pops level, index and value and stores the value.
	St Op = "st"
	// Sta pops level, index and count, then count values into consecutive slots.
	Sta    Op = "sta"
	Alloc  Op = "alloc"
	OFrame Op = "oframe"
	CFrame Op = "cframe"

	Call Op = "call"
	Ret  Op = "ret"

	Print    Op = "print"
	Delay    Op = "delay"
	Clear    Op = "clear"
	Write    Op = "write"
	WriteBox Op = "writebox"
	Width    Op = "width"
	Height   Op = "height"
	Read     Op = "read"
	Irnd     Op = "irnd"

	Jmp  Op = "jmp"
	CJmp Op = "cjmp"
	Halt Op = "halt"

	// Mark is a label line such as ".main". Its operand is the Label.
	Mark Op = "."
)

var mnemonics = map[string]Op{}

func init() {
	for _, op := range []Op{
		Push, PushA, Add, Sub, Mul, Div, Lt, Le, Gt, Ge, Eq, Not, And, Or,
		St, Sta, Alloc, OFrame, CFrame, Call, Ret,
		Print, Delay, Clear, Write, WriteBox, Width, Height, Read, Irnd,
		Jmp, CJmp, Halt,
	} {
		mnemonics[string(op)] = op
	}
}

// TakesOperand reports whether op is written with an operand.
func (op Op) TakesOperand() bool {
	return op == Push || op == PushA || op == Mark
}

// Operand is one of Literal, Address, Offset, Relative, Placeholder or Label.
type Operand interface {
	String() string
	operand()
}

// Literal is a numeric constant as written in the IR text.
type Literal string

// Int returns the Literal for an integer value.
func Int(v int64) Literal { return Literal(strconv.FormatInt(v, 10)) }

// Uint returns the Literal for an unsigned value such as a colour.
func Uint(v uint32) Literal { return Literal(strconv.FormatUint(uint64(v), 10)) }

// Float returns the Literal for a float value.
func Float(v float64) Literal { return Literal(strconv.FormatFloat(v, 'g', -1, 64)) }

func (l Literal) String() string { return string(l) }

// Value parses the literal as a number.
func (l Literal) Value() (float64, error) {
	return strconv.ParseFloat(string(l), 64)
}

// Address is a frame slot: [index:level].
type Address struct {
	Index int
	Level int
}

func (a Address) String() string { return fmt.Sprintf("[%d:%d]", a.Index, a.Level) }

// Offset is a frame slot plus a popped index: +[index:level].
type Offset struct {
	Index int
	Level int
}

func (o Offset) String() string { return fmt.Sprintf("+[%d:%d]", o.Index, o.Level) }

// Relative is a jump target relative to the instruction that pushes it.
type Relative int

func (r Relative) String() string {
	if r < 0 {
		return fmt.Sprintf("#PC%d", int(r))
	}
	return fmt.Sprintf("#PC+%d", int(r))
}

// Placeholder is a forward jump target that has not been patched yet.
type Placeholder struct{}

func (Placeholder) String() string { return "#PC+1" }

// Label names a function entry point.
type Label string

func (l Label) String() string { return "." + string(l) }

func (Literal) operand()     {}
func (Address) operand()     {}
func (Offset) operand()      {}
func (Relative) operand()    {}
func (Placeholder) operand() {}
func (Label) operand()       {}

// Instruction is a single PArIR instruction.
type Instruction struct {
	Op  Op
	Arg Operand
}

func (in Instruction) String() string {
	switch {
	case in.Op == Mark:
		return in.Arg.String()
	case in.Arg == nil:
		return string(in.Op)
	default:
		return string(in.Op) + " " + in.Arg.String()
	}
}

// Program is an ordered instruction sequence.
type Program struct {
	Instructions []Instruction
}

// Len returns the number of instructions.
func (p *Program) Len() int { return len(p.Instructions) }

// Lines renders one string per instruction.
func (p *Program) Lines() []string {
	lines := make([]string, len(p.Instructions))
	for i, in := range p.Instructions {
		lines[i] = in.String()
	}
	return lines
}

// String renders the program as newline-terminated IR text.
func (p *Program) String() string {
	var sb strings.Builder
	for _, in := range p.Instructions {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Labels maps each label to its instruction index.
func (p *Program) Labels() map[string]int {
	labels := make(map[string]int)
	for i, in := range p.Instructions {
		if in.Op == Mark {
			labels[string(in.Arg.(Label))] = i
		}
	}
	return labels
}

// Parse reads IR text. Blank lines and lines starting with "//" are ignored.
func Parse(text string) (*Program, error) {
	prog := &Program{}
	for n, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		in, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+1, err)
		}
		prog.Instructions = append(prog.Instructions, in)
	}
	return prog, nil
}

func parseLine(line string) (Instruction, error) {
	if strings.HasPrefix(line, ".") {
		name := line[1:]
		if name == "" || strings.ContainsAny(name, " \t") {
			return Instruction{}, fmt.Errorf("malformed label %q", line)
		}
		return Instruction{Op: Mark, Arg: Label(name)}, nil
	}

	fields := strings.Fields(line)
	op, ok := mnemonics[fields[0]]
	if !ok {
		return Instruction{}, fmt.Errorf("unknown mnemonic %q", fields[0])
	}
	if !op.TakesOperand() {
		if len(fields) != 1 {
			return Instruction{}, fmt.Errorf("%s takes no operand", op)
		}
		return Instruction{Op: op}, nil
	}
	if len(fields) != 2 {
		return Instruction{}, fmt.Errorf("%s takes exactly one operand", op)
	}

	arg, err := ParseOperand(fields[1])
	if err != nil {
		return Instruction{}, err
	}
	if op == PushA {
		if _, ok := arg.(Address); !ok {
			return Instruction{}, fmt.Errorf("pusha needs an address operand, got %q", fields[1])
		}
	}
	return Instruction{Op: op, Arg: arg}, nil
}

// ParseOperand reads a single operand in its textual form.
func ParseOperand(s string) (Operand, error) {
	switch {
	case strings.HasPrefix(s, "+["):
		i, l, err := parseSlot(s[1:])
		if err != nil {
			return nil, err
		}
		return Offset{Index: i, Level: l}, nil
	case strings.HasPrefix(s, "["):
		i, l, err := parseSlot(s)
		if err != nil {
			return nil, err
		}
		return Address{Index: i, Level: l}, nil
	case strings.HasPrefix(s, "#PC"):
		n, err := strconv.Atoi(strings.TrimPrefix(s[3:], "+"))
		if err != nil || len(s) < 5 || (s[3] != '+' && s[3] != '-') {
			return nil, fmt.Errorf("malformed relative target %q", s)
		}
		return Relative(n), nil
	case strings.HasPrefix(s, "."):
		if len(s) == 1 {
			return nil, fmt.Errorf("malformed label %q", s)
		}
		return Label(s[1:]), nil
	default:
		if _, err := strconv.ParseFloat(s, 64); err != nil {
			return nil, fmt.Errorf("malformed literal %q", s)
		}
		return Literal(s), nil
	}
}

func parseSlot(s string) (int, int, error) {
	if !strings.HasSuffix(s, "]") {
		return 0, 0, fmt.Errorf("malformed address %q", s)
	}
	parts := strings.Split(s[1:len(s)-1], ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed address %q", s)
	}
	i, err := strconv.Atoi(parts[0])
	if err != nil || i < 0 {
		return 0, 0, fmt.Errorf("malformed address %q", s)
	}
	l, err := strconv.Atoi(parts[1])
	if err != nil || l < 0 {
		return 0, 0, fmt.Errorf("malformed address %q", s)
	}
	return i, l, nil
}

package codegen

import (
	"fmt"

	"github.com/zurustar/parlc/pkg/ir"
)

// emitter is an append-only instruction buffer. Emitted code is only
// changed by patch, which rewrites a placeholder push exactly once, and by
// discard, which drops a placeholder-free tail.
type emitter struct {
	code []ir.Instruction
}

// here is the index the next instruction will get.
func (e *emitter) here() int { return len(e.code) }

func (e *emitter) op(op ir.Op) {
	e.code = append(e.code, ir.Instruction{Op: op})
}

func (e *emitter) push(arg ir.Operand) {
	e.code = append(e.code, ir.Instruction{Op: ir.Push, Arg: arg})
}

func (e *emitter) pushA(addr ir.Address) {
	e.code = append(e.code, ir.Instruction{Op: ir.PushA, Arg: addr})
}

func (e *emitter) pushInt(v int) {
	e.push(ir.Int(int64(v)))
}

func (e *emitter) label(name string) {
	e.code = append(e.code, ir.Instruction{Op: ir.Mark, Arg: ir.Label(name)})
}

// placeholder emits a forward jump target to be patched later and returns
// its index.
func (e *emitter) placeholder() int {
	at := e.here()
	e.push(ir.Placeholder{})
	return at
}

// patch points the placeholder at index at to the next instruction.
func (e *emitter) patch(at int) {
	if _, ok := e.code[at].Arg.(ir.Placeholder); !ok || e.code[at].Op != ir.Push {
		panic(fmt.Sprintf("codegen: instruction %d (%s) is not an unpatched placeholder", at, e.code[at]))
	}
	e.code[at].Arg = ir.Relative(e.here() - at)
}

// jumpBack emits an unconditional jump to index start.
func (e *emitter) jumpBack(start int) {
	e.push(ir.Relative(start - e.here()))
	e.op(ir.Jmp)
}

// discard drops every instruction emitted at or after index from.
func (e *emitter) discard(from int) {
	for _, in := range e.code[from:] {
		if _, ok := in.Arg.(ir.Placeholder); ok {
			panic(fmt.Sprintf("codegen: discarding unpatched placeholder %s", in))
		}
	}
	e.code = e.code[:from]
}

func (e *emitter) program() *ir.Program {
	code := make([]ir.Instruction, len(e.code))
	copy(code, e.code)
	return &ir.Program{Instructions: code}
}

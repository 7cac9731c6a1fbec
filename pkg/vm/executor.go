package vm

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/zurustar/parlc/pkg/ir"
)

// execute runs the instruction at pc. vm.pc already points past it; jumps
// and calls overwrite it.
func (vm *VM) execute(ctx context.Context, pc int, in ir.Instruction) (bool, *RuntimeError) {
	switch in.Op {
	case ir.Mark:
		return false, nil

	case ir.Push:
		v, err := vm.operand(pc, in.Arg)
		if err != nil {
			return false, err
		}
		return false, vm.push(v)

	case ir.PushA:
		return false, vm.pushArray(in.Arg)

	case ir.Add, ir.Sub, ir.Mul, ir.Div, ir.Lt, ir.Le, ir.Gt, ir.Ge, ir.Eq, ir.And, ir.Or:
		return false, vm.binary(in.Op)

	case ir.Not:
		a, err := vm.pop()
		if err != nil {
			return false, err
		}
		return false, vm.push(truth(a == 0))

	case ir.St:
		return false, vm.store()

	case ir.Sta:
		return false, vm.storeArray()

	case ir.Alloc:
		n, err := vm.popCount()
		if err != nil {
			return false, err
		}
		frame, err := vm.current()
		if err != nil {
			return false, err
		}
		frame.Grow(n)
		return false, nil

	case ir.OFrame:
		n, err := vm.popCount()
		if err != nil {
			return false, err
		}
		var parent *Frame
		if len(vm.frames) > 0 {
			parent = vm.frames[len(vm.frames)-1]
		}
		return false, vm.openFrame(NewFrame(n, parent))

	case ir.CFrame:
		if len(vm.frames) == 0 {
			return false, NewRuntimeError(ErrorInvalidOperation, "cframe without an open frame")
		}
		vm.frames = vm.frames[:len(vm.frames)-1]
		return false, nil

	case ir.Call:
		return false, vm.call()

	case ir.Ret:
		return false, vm.ret()

	case ir.Jmp:
		target, err := vm.pop()
		if err != nil {
			return false, err
		}
		return false, vm.jump(target)

	case ir.CJmp:
		target, err := vm.pop()
		if err != nil {
			return false, err
		}
		cond, err := vm.pop()
		if err != nil {
			return false, err
		}
		if cond != 0 {
			return false, vm.jump(target)
		}
		return false, nil

	case ir.Halt:
		return true, nil

	case ir.Print, ir.Delay, ir.Clear, ir.Write, ir.WriteBox, ir.Width, ir.Height, ir.Read, ir.Irnd:
		return false, vm.builtin(ctx, in.Op)
	}
	return false, NewRuntimeError(ErrorInvalidOperation, "unknown instruction %q", string(in.Op))
}

// builtinArity is the number of operands each display builtin pops.
var builtinArity = map[ir.Op]int{
	ir.Print: 1, ir.Delay: 1, ir.Clear: 1, ir.Irnd: 1,
	ir.Read: 2, ir.Write: 3, ir.WriteBox: 5,
}

// operand evaluates the argument of a push.
func (vm *VM) operand(pc int, arg ir.Operand) (float64, *RuntimeError) {
	switch a := arg.(type) {
	case ir.Literal:
		return vm.literals[pc], nil
	case ir.Relative:
		return float64(pc + int(a)), nil
	case ir.Label:
		return float64(vm.labels[string(a)]), nil
	case ir.Address:
		frame, err := vm.current()
		if err != nil {
			return 0, err
		}
		return frame.Load(a.Index, a.Level)
	case ir.Offset:
		k, err := vm.pop()
		if err != nil {
			return 0, err
		}
		frame, err := vm.current()
		if err != nil {
			return 0, err
		}
		return frame.Load(a.Index+int(k), a.Level)
	case ir.Placeholder:
		return 0, NewRuntimeError(ErrorInvalidJump, "unpatched jump placeholder")
	}
	return 0, NewRuntimeError(ErrorInvalidOperation, "push requires an operand")
}

func (vm *VM) pushArray(arg ir.Operand) *RuntimeError {
	addr, ok := arg.(ir.Address)
	if !ok {
		return NewRuntimeError(ErrorInvalidOperation, "pusha requires an address operand")
	}
	n, err := vm.popCount()
	if err != nil {
		return err
	}
	frame, err := vm.current()
	if err != nil {
		return err
	}
	for k := range n {
		v, err := frame.Load(addr.Index+k, addr.Level)
		if err != nil {
			return err
		}
		if err := vm.push(v); err != nil {
			return err
		}
	}
	return nil
}

// binary pops the left operand, which was pushed last, then the right.
func (vm *VM) binary(op ir.Op) *RuntimeError {
	a, err := vm.pop()
	if err != nil {
		return err
	}
	b, err := vm.pop()
	if err != nil {
		return err
	}

	var result float64
	switch op {
	case ir.Add:
		result = a + b
	case ir.Sub:
		result = a - b
	case ir.Mul:
		result = a * b
	case ir.Div:
		if b == 0 {
			if err := vm.push(0); err != nil {
				return err
			}
			return NewRuntimeError(ErrorDivisionByZero, "division by zero")
		}
		result = a / b
	case ir.Lt:
		result = truth(a < b)
	case ir.Le:
		result = truth(a <= b)
	case ir.Gt:
		result = truth(a > b)
	case ir.Ge:
		result = truth(a >= b)
	case ir.Eq:
		result = truth(a == b)
	case ir.And:
		result = truth(a != 0 && b != 0)
	case ir.Or:
		result = truth(a != 0 || b != 0)
	}
	return vm.push(result)
}

func (vm *VM) store() *RuntimeError {
	level, err := vm.pop()
	if err != nil {
		return err
	}
	index, err := vm.pop()
	if err != nil {
		return err
	}
	value, err := vm.pop()
	if err != nil {
		return err
	}
	frame, err := vm.current()
	if err != nil {
		return err
	}
	return frame.Store(int(index), int(level), value)
}

// storeArray pops level, index and count, then count values; the first
// value popped lands in the lowest slot.
func (vm *VM) storeArray() *RuntimeError {
	level, err := vm.pop()
	if err != nil {
		return err
	}
	index, err := vm.pop()
	if err != nil {
		return err
	}
	count, err := vm.popCount()
	if err != nil {
		return err
	}
	frame, err := vm.current()
	if err != nil {
		return err
	}
	for k := range count {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if err := frame.Store(int(index)+k, int(level), v); err != nil {
			return err
		}
	}
	return nil
}

// call pops the target, the argument count and the arguments. The first
// argument pushed becomes slot 0 of the new frame.
func (vm *VM) call() *RuntimeError {
	target, err := vm.pop()
	if err != nil {
		return err
	}
	n, err := vm.popCount()
	if err != nil {
		return err
	}
	if len(vm.calls) >= MaxStackDepth {
		return NewStackOverflowError("call stack", len(vm.calls)+1)
	}

	var global *Frame
	if len(vm.frames) > 0 {
		global = vm.frames[0]
	}
	frame := NewFrame(n, global)
	for k := n - 1; k >= 0; k-- {
		v, err := vm.pop()
		if err != nil {
			return err
		}
		frame.slots[k] = v
	}

	vm.calls = append(vm.calls, callRecord{returnPC: vm.pc, frames: len(vm.frames)})
	if err := vm.openFrame(frame); err != nil {
		return err
	}
	return vm.jump(target)
}

// ret closes every frame opened since the matching call.
func (vm *VM) ret() *RuntimeError {
	if len(vm.calls) == 0 {
		return NewRuntimeError(ErrorInvalidOperation, "ret outside of a call")
	}
	result, err := vm.pop()
	if err != nil {
		return err
	}
	rec := vm.calls[len(vm.calls)-1]
	vm.calls = vm.calls[:len(vm.calls)-1]
	vm.frames = vm.frames[:rec.frames]
	vm.pc = rec.returnPC
	return vm.push(result)
}

func (vm *VM) jump(target float64) *RuntimeError {
	t := int(target)
	if float64(t) != target || t < 0 || t >= vm.program.Len() {
		return NewRuntimeError(ErrorInvalidJump, "jump target %v outside program of %d instructions", target, vm.program.Len())
	}
	vm.pc = t
	return nil
}

func (vm *VM) builtin(ctx context.Context, op ir.Op) *RuntimeError {
	switch op {
	case ir.Width:
		return vm.push(float64(vm.display.Width()))
	case ir.Height:
		return vm.push(float64(vm.display.Height()))
	}

	args, err := vm.popN(builtinArity[op])
	if err != nil {
		return err
	}

	switch op {
	case ir.Print:
		line := FormatValue(args[0])
		fmt.Fprintln(vm.out, line)
		if vm.onPrint != nil {
			vm.onPrint(line)
		}
	case ir.Delay:
		vm.delay(ctx, args[0])
	case ir.Clear:
		vm.display.Clear(colour(args[0]))
	case ir.Write:
		vm.display.Set(int(args[0]), int(args[1]), colour(args[2]))
	case ir.WriteBox:
		vm.display.FillRect(int(args[0]), int(args[1]), int(args[2]), int(args[3]), colour(args[4]))
	case ir.Read:
		return vm.push(colourValue(vm.display.At(int(args[0]), int(args[1]))))
	case ir.Irnd:
		bound := int(args[0])
		if bound <= 0 {
			return vm.push(0)
		}
		return vm.push(float64(vm.rng.IntN(bound)))
	}
	return nil
}

func (vm *VM) delay(ctx context.Context, ms float64) {
	if vm.noDelay || ms <= 0 {
		return
	}
	timer := time.NewTimer(time.Duration(ms * float64(time.Millisecond)))
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (vm *VM) current() (*Frame, *RuntimeError) {
	if len(vm.frames) == 0 {
		return nil, NewRuntimeError(ErrorInvalidOperation, "no open frame")
	}
	return vm.frames[len(vm.frames)-1], nil
}

func (vm *VM) openFrame(f *Frame) *RuntimeError {
	if len(vm.frames) >= MaxStackDepth {
		return NewStackOverflowError("frame stack", len(vm.frames)+1)
	}
	vm.frames = append(vm.frames, f)
	return nil
}

func (vm *VM) push(v float64) *RuntimeError {
	if len(vm.stack) >= MaxStackDepth {
		return NewStackOverflowError("operand stack", len(vm.stack)+1)
	}
	vm.stack = append(vm.stack, v)
	return nil
}

func (vm *VM) pop() (float64, *RuntimeError) {
	if len(vm.stack) == 0 {
		return 0, NewRuntimeError(ErrorStackUnderflow, "pop from empty operand stack")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

// popN pops n values; the first element is the value that was on top.
func (vm *VM) popN(n int) ([]float64, *RuntimeError) {
	vals := make([]float64, n)
	for i := range n {
		v, err := vm.pop()
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (vm *VM) popCount() (int, *RuntimeError) {
	v, err := vm.pop()
	if err != nil {
		return 0, err
	}
	if v < 0 || v != math.Trunc(v) {
		return 0, NewRuntimeError(ErrorInvalidOperation, "invalid count %v", v)
	}
	return int(v), nil
}

func truth(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// FormatValue renders a value the way print shows it: integral values
// without a fraction, others in the shortest exact form.
func FormatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

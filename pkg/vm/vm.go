// Package vm provides the virtual machine for executing PArIR programs.
// It implements a stack machine with:
// - Operand stack of float64 values (booleans are 1/0, colours 0xRRGGBB)
// - Frames with static links for block and function scopes
// - A pluggable Display for the drawing instructions
// - Step budget and timeout for headless runs
package vm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/zurustar/parlc/pkg/ir"
	"github.com/zurustar/parlc/pkg/logger"
)

// MaxStackDepth bounds both the operand stack and the call stack.
const MaxStackDepth = 1000

// VM executes one PArIR program.
type VM struct {
	program  *ir.Program
	labels   map[string]int
	literals []float64 // decoded Literal operands by instruction index

	pc     int
	stack  []float64
	frames []*Frame
	calls  []callRecord
	steps  int

	// Configuration
	display   Display
	out       io.Writer
	onPrint   func(line string)
	seed      uint64
	rng       *rand.Rand
	noDelay   bool
	stepLimit int
	timeout   time.Duration

	// Execution control
	running bool
	cancel  context.CancelFunc
	mu      sync.Mutex

	log *slog.Logger
}

type callRecord struct {
	returnPC int
	frames   int // open frames before the call
}

// Option is a functional option for configuring the VM.
type Option func(*VM)

// WithDisplay sets the drawing surface.
func WithDisplay(d Display) Option {
	return func(vm *VM) {
		vm.display = d
	}
}

// WithOutput sets where print writes its lines.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) {
		vm.out = w
	}
}

// WithPrintListener registers a callback receiving every printed line.
func WithPrintListener(fn func(line string)) Option {
	return func(vm *VM) {
		vm.onPrint = fn
	}
}

// WithSeed seeds the irnd generator. Zero picks a time based seed.
func WithSeed(seed uint64) Option {
	return func(vm *VM) {
		vm.seed = seed
	}
}

// WithNoDelay makes delay instructions return immediately.
func WithNoDelay(noDelay bool) Option {
	return func(vm *VM) {
		vm.noDelay = noDelay
	}
}

// WithStepLimit stops the machine with an error after n instructions.
// Zero means unlimited.
func WithStepLimit(n int) Option {
	return func(vm *VM) {
		vm.stepLimit = n
	}
}

// WithTimeout sets the execution timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(vm *VM) {
		vm.timeout = timeout
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// New creates a VM for program.
//
// Parameters:
//   - program: The PArIR program to execute
//   - opts: Optional configuration (display, output, seed, limits, logger)
//
// Returns:
//   - *VM: The initialized VM instance
func New(program *ir.Program, opts ...Option) *VM {
	vm := &VM{
		program: program,
		out:     os.Stdout,
		log:     logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.display == nil {
		vm.display = NewFramebuffer(DefaultWidth, DefaultHeight)
	}
	if vm.seed == 0 {
		vm.seed = uint64(time.Now().UnixNano())
	}
	vm.rng = rand.New(rand.NewPCG(vm.seed, vm.seed^0x9e3779b97f4a7c15))
	return vm
}

// Display returns the drawing surface.
func (vm *VM) Display() Display { return vm.display }

// Steps returns the number of instructions executed by the last run.
func (vm *VM) Steps() int { return vm.steps }

// Run executes the program from its first instruction until halt, the
// end of the program, a fatal error, cancellation or the timeout.
// Cancellation and timeout are not errors.
func (vm *VM) Run(ctx context.Context) error {
	vm.mu.Lock()
	if vm.running {
		vm.mu.Unlock()
		return fmt.Errorf("VM is already running")
	}
	vm.running = true
	ctx, cancel := context.WithCancel(ctx)
	vm.cancel = cancel
	vm.mu.Unlock()

	defer func() {
		vm.mu.Lock()
		vm.running = false
		vm.cancel = nil
		vm.mu.Unlock()
		cancel()
	}()

	if vm.timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, vm.timeout)
		defer timeoutCancel()
	}

	if err := vm.load(); err != nil {
		return err
	}
	vm.reset()

	vm.log.Info("VM started", "instructions", vm.program.Len(), "timeout", vm.timeout)

	for vm.pc < vm.program.Len() {
		select {
		case <-ctx.Done():
			vm.logStop(ctx)
			return nil
		default:
		}

		if vm.stepLimit > 0 && vm.steps >= vm.stepLimit {
			return NewRuntimeError(ErrorStepLimit, "step limit %d reached", vm.stepLimit).
				at(vm.pc, vm.program.Instructions[vm.pc].String())
		}
		vm.steps++

		pc := vm.pc
		in := vm.program.Instructions[pc]
		vm.pc++
		halted, err := vm.execute(ctx, pc, in)
		if err != nil {
			err.at(pc, in.String())
			if err.IsFatal() {
				vm.log.Error("VM stopped on error", "error", err)
				return err
			}
			vm.log.Error("Instruction error", "pc", pc, "op", in.Op, "error", err)
		}
		if halted {
			vm.log.Info("VM halted", "steps", vm.steps)
			return nil
		}
	}

	vm.log.Info("VM reached end of program", "steps", vm.steps)
	return nil
}

func (vm *VM) logStop(ctx context.Context) {
	if ctx.Err() == context.DeadlineExceeded {
		vm.log.Info("VM execution timed out", "steps", vm.steps)
		return
	}
	vm.log.Info("VM execution cancelled", "steps", vm.steps)
}

// Stop cancels a running VM.
func (vm *VM) Stop() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.running && vm.cancel != nil {
		vm.cancel()
		vm.log.Info("VM stop requested")
	}
}

// IsRunning reports whether Run is in progress.
func (vm *VM) IsRunning() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.running
}

// load resolves labels and decodes literals before the first step so a
// malformed program fails without side effects.
func (vm *VM) load() *RuntimeError {
	vm.labels = vm.program.Labels()
	vm.literals = make([]float64, vm.program.Len())
	for i, in := range vm.program.Instructions {
		switch arg := in.Arg.(type) {
		case ir.Literal:
			v, err := arg.Value()
			if err != nil {
				return NewRuntimeError(ErrorInvalidOperation, "malformed literal %q", string(arg)).at(i, in.String())
			}
			vm.literals[i] = v
		case ir.Label:
			if in.Op == ir.Mark {
				continue
			}
			if _, ok := vm.labels[string(arg)]; !ok {
				return NewRuntimeError(ErrorUnknownLabel, "unknown label %s", arg).at(i, in.String())
			}
		}
	}
	return nil
}

func (vm *VM) reset() {
	vm.pc = 0
	vm.stack = vm.stack[:0]
	vm.frames = nil
	vm.calls = nil
	vm.steps = 0
}

// Package interp implements MiniLang's stack-frame interpreter: a
// pc-driven loop over the flat IR, with an explicit call stack of
// frames rather than a process-wide variable dictionary.
package interp

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strings"

	"minilang/internal/diag"
	"minilang/internal/ir"
)

// State is the VM's coarse execution state.
type State int

const (
	StateRunning State = iota
	StateHalted
	StateErrored
)

// VM executes a flat instruction list produced by internal/ir (after
// optional optimization).
type VM struct {
	variables map[string]Value
	stdout    io.Writer
	stdin     *bufio.Reader
	functions map[string]int
	labels    map[string]int
	code      []ir.Instruction
	callStack []frame
	rng       *rand.Rand
	output    []string
	trace     io.Writer
	pc        int
	state     State
}

// Option configures a VM at construction time.
type Option func(*VM)

// WithStdout sets the writer that `print` output and input() prompts are
// written to (default: none). `print` output is captured for Output()
// either way.
func WithStdout(w io.Writer) Option {
	return func(vm *VM) { vm.stdout = w }
}

// WithStdin supplies the reader `input()` blocks on. With no reader,
// input() immediately returns "" as on EOF.
func WithStdin(r io.Reader) Option {
	return func(vm *VM) { vm.stdin = bufio.NewReader(r) }
}

// WithRand overrides the built-in `random`'s source, for deterministic
// tests.
func WithRand(rng *rand.Rand) Option {
	return func(vm *VM) { vm.rng = rng }
}

// WithTrace makes the VM log every executed instruction to w as
// "%04d instruction" before it runs.
func WithTrace(w io.Writer) Option {
	return func(vm *VM) { vm.trace = w }
}

// New creates a VM over code. The function and label tables are built
// once up front by scanning for `begin_func` and `label` markers.
func New(code []ir.Instruction, opts ...Option) *VM {
	vm := &VM{
		code:      code,
		variables: make(map[string]Value),
		functions: make(map[string]int),
		labels:    make(map[string]int),
		rng:       rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.buildFunctionTable()
	vm.buildLabelTable()
	return vm
}

func (vm *VM) buildFunctionTable() {
	for i, ins := range vm.code {
		if ins.Op == ir.OpBeginFunc {
			vm.functions[ins.Arg1.Name] = i + 1
		}
	}
}

func (vm *VM) buildLabelTable() {
	for i, ins := range vm.code {
		if ins.Op == ir.OpLabel {
			vm.labels[ins.Result.Name] = i
		}
	}
}

// Output returns the captured `print` lines, in emission order.
func (vm *VM) Output() []string { return vm.output }

// Run executes the program from the start until it halts or errors.
func (vm *VM) Run() *diag.Error {
	vm.pc = 0
	vm.state = StateRunning
	return vm.runLoop()
}

// Extend appends more instructions (e.g. one REPL line's worth) to the
// VM's code and returns the index the new chunk starts at.
func (vm *VM) Extend(code []ir.Instruction) int {
	start := len(vm.code)
	vm.code = append(vm.code, code...)
	vm.buildFunctionTable()
	vm.buildLabelTable()
	return start
}

// RunFrom resumes execution at pc (typically the start index returned
// by Extend) and runs until it halts, errors, or runs off the end of
// the current code. Used by the REPL to execute only the newly
// appended instructions against the VM's existing variables.
func (vm *VM) RunFrom(pc int) *diag.Error {
	vm.pc = pc
	vm.state = StateRunning
	return vm.runLoop()
}

func (vm *VM) runLoop() *diag.Error {
	for vm.state == StateRunning {
		if vm.pc >= len(vm.code) {
			vm.state = StateHalted
			return nil
		}
		ins := vm.code[vm.pc]
		oldPC := vm.pc
		if vm.trace != nil {
			fmt.Fprintf(vm.trace, "%04d %s\n", vm.pc, ins.String())
		}
		if err := vm.step(ins); err != nil {
			vm.state = StateErrored
			return err
		}
		if vm.state == StateHalted {
			return nil
		}
		if vm.pc == oldPC {
			vm.pc++
		}
	}
	return nil
}

func (vm *VM) runtimeError(format string, args ...any) *diag.Error {
	var line, col int
	if vm.pc >= 0 && vm.pc < len(vm.code) {
		line, col = vm.code[vm.pc].Line, vm.code[vm.pc].Column
	}
	return diag.New(diag.StageRuntime, line, col, format, args...)
}

func (vm *VM) print(s string) {
	vm.output = append(vm.output, s)
	if vm.stdout != nil {
		io.WriteString(vm.stdout, s+" ")
	}
}

func (vm *VM) input(prompt string) string {
	// Unlike `print`, input()'s prompt goes to real output only; it
	// never becomes part of the captured Output() line stream.
	if vm.stdout != nil {
		io.WriteString(vm.stdout, prompt)
	}
	if vm.stdin == nil {
		return ""
	}
	line, err := vm.stdin.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimRight(line, "\r\n")
}

func (vm *VM) findLabel(name string) (int, bool) {
	idx, ok := vm.labels[name]
	return idx, ok
}

// skipFunctionBody advances past a `begin_func` encountered during
// straight-line fallthrough. The generator never nests definitions,
// but the scan is depth-correct anyway.
func (vm *VM) skipFunctionBody(from int) int {
	depth := 0
	for i := from; i < len(vm.code); i++ {
		switch vm.code[i].Op {
		case ir.OpBeginFunc:
			depth++
		case ir.OpEndFunc:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(vm.code)
}

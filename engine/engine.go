// Package engine drives the AYU control FSM and datapath one clock at
// a time: it owns the register file, memory, and pipeline latches, and
// is the only thing in the module that mutates them. Grounded on
// jmchacon-6502/cpu/cpu.go's Step/Run shape — a struct holding all
// machine state plus a clock-stepping method — generalized from the
// 6502's instruction-cycle state machine to AYU's 18-state FSM.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmchacon/ayusim/alu"
	"github.com/jmchacon/ayusim/control"
	"github.com/jmchacon/ayusim/decode"
	"github.com/jmchacon/ayusim/dump"
	"github.com/jmchacon/ayusim/loader"
	"github.com/jmchacon/ayusim/logger"
	"github.com/jmchacon/ayusim/memory"
)

// Engine is one AYU machine: 16 registers (R1 is the program counter
// by convention), a 65,536-word memory, and the control FSM plus
// pipeline latches that drive it one clock at a time.
type Engine struct {
	regs  [16]uint16
	mem   memory.Bank
	ir    uint16
	instr decode.Instruction

	// Pipeline latches, refreshed once per clock (spec.md §4.4 step 7)
	// and read by the *next* clock's ALU/memory/writeback stages.
	readA, readB       uint16
	memData            uint16
	aluOut             uint16
	aluZero, aluNegative bool

	fsm *control.FSM

	clock      uint64
	breakpoint *uint64 // nil means never (spec.md §6 --breakpoint default)
	dumpToFile bool

	log *slog.Logger

	firstTick bool // true until Step has run once; see spec.md §4.5
	stopped   bool
	snapshot  dump.Snapshot
}

// New returns an Engine over mem with registers zeroed, in its
// power-on state: the FSM starts at PcRead and no instruction has been
// decoded yet.
func New(mem memory.Bank, breakpoint *uint64, dumpToFile bool, log *slog.Logger) *Engine {
	if log == nil {
		log = logger.New(logger.NewHandler(io.Discard, slog.LevelError))
	}
	return &Engine{
		mem:        mem,
		fsm:        control.New(),
		breakpoint: breakpoint,
		dumpToFile: dumpToFile,
		log:        log,
		firstTick:  true,
	}
}

// NewFromFile loads an AYU program from path and returns a ready
// Engine, per spec.md §6's "engine construction API":
// (path, breakpoint, dump_to_file) → engine.
func NewFromFile(path string, breakpoint *uint64, dumpToFile bool, log *slog.Logger) (*Engine, error) {
	bank, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return New(bank, breakpoint, dumpToFile, log), nil
}

// NewFromArrays builds an Engine directly from a register file and a
// memory image, bypassing the text loader. Used by tests and by any
// caller constructing a machine state programmatically. Per spec.md
// §6, this constructor never sets a breakpoint.
func NewFromArrays(registers [16]uint16, mem [memory.Size]uint16, dumpToFile bool, log *slog.Logger) *Engine {
	e := New(memory.NewFromImage(mem[:]), nil, dumpToFile, log)
	e.regs = registers
	return e
}

// Registers returns a copy of the current register file.
func (e *Engine) Registers() [16]uint16 {
	return e.regs
}

// Clock returns the number of clocks executed so far.
func (e *Engine) Clock() uint64 {
	return e.clock
}

// Stopped reports whether the engine has terminated.
func (e *Engine) Stopped() bool {
	return e.stopped
}

// Run steps the engine until it stops (halt, invalid opcode, an
// unimplemented Special subcode, or the breakpoint clock), or until
// ctx is canceled. It returns the final snapshot. A canceled context
// is an operational escape hatch for callers embedding the engine in
// a larger program — it is not one of the simulated machine's own
// stop reasons, which never produce a Go error (spec.md §7).
func (e *Engine) Run(ctx context.Context) (dump.Snapshot, error) {
	for !e.stopped {
		if err := ctx.Err(); err != nil {
			return dump.Snapshot{}, err
		}
		e.step(ctx)
	}
	if e.dumpToFile {
		if err := dump.WriteFile("core.dump", e.snapshot, time.Now()); err != nil {
			return e.snapshot, fmt.Errorf("write core dump: %w", err)
		}
	}
	return e.snapshot, nil
}

// Step runs exactly one clock and reports whether the engine has now
// stopped. Exposed for tests and for callers (e.g. a future debugger
// front end) that want finer control than Run's loop-to-completion.
func (e *Engine) Step(ctx context.Context) bool {
	e.step(ctx)
	return e.stopped
}

// step executes the ten-step per-clock datapath sequence of
// spec.md §4.4. Every exported entry point funnels through here so
// the pipeline latches are only ever touched in one place.
func (e *Engine) step(ctx context.Context) {
	if e.stopped {
		return
	}

	if !e.firstTick {
		e.fsm.Advance(e.instr.Opcode, e.aluZero)
	}
	e.firstTick = false

	state := e.fsm.State()
	sig := e.fsm.Signals()
	logger.Trace(e.log, "clock", "clock", e.clock, "state", state, "instr", e.instr)

	// 1. ALU stage.
	if sig.AluOp != alu.Inactive {
		sourceA := e.readA
		// SaveWord's two memory-type operands are swapped relative to
		// LoadWord's (nibble_3 is the data register, not the address
		// register), so the shared Memory state's address computation
		// needs the *other* latch for this one opcode. See DESIGN.md.
		if state == control.Memory && e.instr.Opcode == decode.SaveWord {
			sourceA = e.readB
		}
		var sourceB uint16
		switch sig.AluSource {
		case control.AluSourceRegister:
			sourceB = e.readB
		case control.AluSourceConstant1:
			sourceB = 1
		case control.AluSourceMemoryOffset:
			sourceB = e.instr.Nibble2
		}
		out := alu.Execute(sourceA, sourceB, sig.AluOp)
		e.aluOut, e.aluZero, e.aluNegative = out.Result, out.Zero, out.Negative
		e.log.Debug("alu", "op", sig.AluOp, "a", sourceA, "b", sourceB, "result", out.Result)
	}

	// 2. Terminate check.
	if sig.Terminate {
		e.finish(dump.ReasonInvalidOpcode)
		return
	}

	// 3. Decode.
	if sig.Decode {
		e.instr = decode.Decode(e.ir)
		e.log.Debug("decoded", "instr", e.instr)
	}

	// 4. Memory read.
	if sig.MemoryRead {
		addr := e.address(sig)
		e.memData = e.mem.Read(addr)
		if sig.InstructionRegisterWrite {
			e.ir = e.memData
		}
		logger.Trace(e.log, "memory read", "addr", addr, "value", e.memData)
	}

	// 5. Memory write.
	if sig.MemoryWrite {
		addr := e.address(sig)
		e.mem.Write(addr, e.readA)
		logger.Trace(e.log, "memory write", "addr", addr, "value", e.readA)
	}

	// 6. Register writeback.
	if sig.RegisterWrite || sig.WritePC {
		dest := e.destination(sig)
		value := e.writebackValue(sig)
		if sig.WriteUpper {
			e.regs[dest] = (e.regs[dest] & 0x00FF) | (value << 8)
		} else {
			e.regs[dest] = value
		}
		e.log.Debug("register write", "reg", dest, "value", e.regs[dest])
	}

	// 7. Refresh pipeline read latches for the next clock.
	if sig.ReadPC {
		e.readA = e.regs[1]
		e.readB = e.regs[1]
	} else {
		e.readA = e.regs[e.instr.Nibble3]
		e.readB = e.regs[e.instr.Nibble4]
	}

	// 8. Special dispatch.
	if sig.ProcessSpecial {
		if e.instr.Nibble2 == 1 {
			e.finish(dump.ReasonHalt)
		} else {
			e.finish(dump.ReasonSpecialUnimplemented)
		}
		return
	}

	// 9. Breakpoint check.
	if e.breakpoint != nil && e.clock >= *e.breakpoint {
		e.finish(dump.ReasonBreakpoint)
		return
	}

	// 10. Clock increment.
	e.clock++
}

// address resolves the memory port address for the current signals:
// the live PC latch, or the address the Memory state computed into
// the ALU output.
func (e *Engine) address(sig control.Signals) uint16 {
	if sig.AddressSource == control.AddressAlu {
		return e.aluOut
	}
	return e.readB
}

// destination resolves which register a writeback targets. write_pc
// always wins and names register 1; otherwise write_register_target
// names the nibble. See the WriteRegisterTarget doc comment and
// DESIGN.md for why several states need an explicit nibble_3/nibble_4
// override rather than the Set-family's nibble_2 default.
func (e *Engine) destination(sig control.Signals) uint16 {
	if sig.WritePC {
		return 1
	}
	switch sig.WriteRegisterTarget {
	case control.TargetNibble3:
		return e.instr.Nibble3
	case control.TargetNibble4:
		return e.instr.Nibble4
	default:
		return e.instr.Nibble2
	}
}

// writebackValue resolves the value a register writeback stores,
// per register_write_source.
func (e *Engine) writebackValue(sig control.Signals) uint16 {
	switch sig.RegisterWriteSource {
	case control.WriteSourceAlu:
		return e.aluOut
	case control.WriteSourceMemory:
		return e.memData
	case control.WriteSourceAluZero:
		return boolToWord(e.aluZero)
	case control.WriteSourceAluNegative:
		return boolToWord(e.aluNegative)
	case control.WriteSourceInstructionByte2:
		return e.instr.Nibble3<<4 | e.instr.Nibble4
	case control.WriteSourceInstructionNibble2:
		return e.instr.Nibble2
	default:
		return 0
	}
}

func boolToWord(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}

// finish records the final snapshot and marks the engine stopped.
func (e *Engine) finish(reason dump.Reason) {
	e.snapshot = dump.Snapshot{
		Registers: e.regs,
		Memory:    e.mem.Snapshot(),
		Clock:     e.clock,
		Reason:    reason,
	}
	e.stopped = true
	e.log.Info("engine stopped", "reason", reason, "clock", e.clock)
}

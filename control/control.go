// Package control implements the AYU micro-architectural control
// FSM: the sequence of states the processor steps through to execute
// one instruction, and the control-signal bundle each state emits for
// the datapath to consume.
package control

import (
	"github.com/jmchacon/ayusim/alu"
	"github.com/jmchacon/ayusim/decode"
)

// State is one node of the control FSM.
type State int

const (
	PcRead State = iota
	InstructionFetch
	Decode
	SetLower
	SetUpper
	ArithmeticOperation
	ArithmeticWriteBack
	SetIf
	SetIfLess
	SetIfEqual
	Memory
	MemoryRead
	MemoryReadRegisterWriteback
	MemoryWrite
	SetPcTest
	SetPcWriteback
	Special
	Terminate
)

// String implements fmt.Stringer for log output.
func (s State) String() string {
	names := [...]string{
		"PcRead", "InstructionFetch", "Decode", "SetLower", "SetUpper",
		"ArithmeticOperation", "ArithmeticWriteBack", "SetIf", "SetIfLess",
		"SetIfEqual", "Memory", "MemoryRead", "MemoryReadRegisterWriteback",
		"MemoryWrite", "SetPcTest", "SetPcWriteback", "Special", "Terminate",
	}
	if int(s) < 0 || int(s) >= len(names) {
		return "Unknown"
	}
	return names[s]
}

// AddressSource selects which value feeds the memory address port.
// ProgramCounter is the zero value because it's the implicit default
// for InstructionFetch, the only state that reads memory without
// naming an address_source explicitly in spec.md §4.3's table — every
// other memory-accessing state (MemoryRead, MemoryWrite) sets Alu.
type AddressSource int

const (
	AddressProgramCounter AddressSource = iota
	AddressAlu
)

// RegisterWriteSource selects where a register writeback value comes
// from.
type RegisterWriteSource int

const (
	WriteSourceNone RegisterWriteSource = iota
	WriteSourceAlu
	WriteSourceMemory
	WriteSourceAluZero
	WriteSourceAluNegative
	WriteSourceInstructionByte2
	WriteSourceInstructionNibble2
)

// AluSource selects the second ALU operand.
type AluSource int

const (
	AluSourceNone AluSource = iota
	AluSourceRegister
	AluSourceConstant1
	AluSourceMemoryOffset
)

// WriteRegisterTarget selects which instruction nibble names the
// destination register, when write_pc is not asserted. Nibble2 is the
// default for the Set* family, whose destination register really is
// the instruction's second nibble (rD in `9_rD_HH_LL`/`A_rD_HH_LL`).
// Register-type ops (Add et al.) and SetIf*/LoadWord need an explicit
// override: their second nibble is not the destination (an unused
// don't-care slot for the register-type ops, the address offset for
// LoadWord), and the actual destination lives in
// nibble_3 or nibble_4 — see DESIGN.md for the full resolution.
type WriteRegisterTarget int

const (
	TargetNibble2 WriteRegisterTarget = iota
	TargetNibble3
	TargetNibble4
)

// Signals is the full control-signal bundle emitted for one state.
// Boolean fields default to false ("inactive") and enum fields
// default to their zero value (None/Inactive where the enum has one;
// AddressProgramCounter and TargetNibble2 otherwise) unless a state's
// case in SignalsFor sets them.
type Signals struct {
	ReadPC                    bool
	MemoryRead                bool
	MemoryWrite               bool
	InstructionRegisterWrite  bool
	Decode                    bool
	RegisterWrite             bool
	RegisterWriteSource       RegisterWriteSource
	WriteUpper                bool
	WritePC                   bool
	WriteRegisterTarget       WriteRegisterTarget
	AluOp                     alu.Operation
	AluSource                 AluSource
	AddressSource             AddressSource
	ProcessSpecial            bool
	Terminate                 bool
}

// SignalsFor returns the control-signal bundle a state emits,
// per the table in spec.md §4.3. latchedOpcode is only consulted for
// ArithmeticOperation, which needs the specific opcode within its
// coarse dispatch group to pick the ALU operation.
func SignalsFor(state State, latchedOpcode decode.Opcode) Signals {
	switch state {
	case PcRead:
		return Signals{ReadPC: true}
	case InstructionFetch:
		return Signals{
			MemoryRead:               true,
			InstructionRegisterWrite: true,
			AddressSource:            AddressProgramCounter,
			AluOp:                    alu.Add,
			AluSource:                AluSourceConstant1,
		}
	case Decode:
		return Signals{
			Decode:              true,
			WritePC:             true,
			RegisterWriteSource: WriteSourceAlu,
		}
	case SetLower:
		return Signals{
			RegisterWrite:       true,
			RegisterWriteSource: WriteSourceInstructionByte2,
		}
	case SetUpper:
		return Signals{
			RegisterWrite:       true,
			RegisterWriteSource: WriteSourceInstructionByte2,
			WriteUpper:          true,
		}
	case ArithmeticOperation:
		return Signals{
			AluOp:     alu.FromOpcode(latchedOpcode),
			AluSource: AluSourceRegister,
		}
	case ArithmeticWriteBack:
		return Signals{
			RegisterWrite:       true,
			RegisterWriteSource: WriteSourceAlu,
			WriteRegisterTarget: TargetNibble3,
		}
	case SetIf:
		return Signals{
			AluOp:     alu.Subtract,
			AluSource: AluSourceRegister,
		}
	case SetIfLess:
		return Signals{
			RegisterWrite:       true,
			RegisterWriteSource: WriteSourceAluNegative,
			WriteRegisterTarget: TargetNibble3,
		}
	case SetIfEqual:
		return Signals{
			RegisterWrite:       true,
			RegisterWriteSource: WriteSourceAluZero,
			WriteRegisterTarget: TargetNibble3,
		}
	case Memory:
		return Signals{
			AluOp:     alu.Add,
			AluSource: AluSourceMemoryOffset,
		}
	case MemoryRead:
		return Signals{
			AddressSource: AddressAlu,
			MemoryRead:    true,
		}
	case MemoryReadRegisterWriteback:
		return Signals{
			RegisterWrite:       true,
			RegisterWriteSource: WriteSourceMemory,
			WriteRegisterTarget: TargetNibble4,
		}
	case MemoryWrite:
		return Signals{
			AddressSource: AddressAlu,
			MemoryWrite:   true,
		}
	case SetPcTest:
		return Signals{
			AluOp:     alu.Subtract,
			AluSource: AluSourceRegister,
		}
	case SetPcWriteback:
		return Signals{
			RegisterWrite:       true,
			RegisterWriteSource: WriteSourceInstructionNibble2,
			WritePC:              true,
		}
	case Special:
		return Signals{ProcessSpecial: true}
	case Terminate:
		return Signals{Terminate: true}
	default:
		return Signals{}
	}
}

// Next computes the state the FSM transitions to, given the current
// state, the opcode latched at Decode, and the aluZero flag produced
// by SetPcTest's subtraction. It implements the transition table in
// spec.md §4.3.
func Next(current State, latchedOpcode decode.Opcode, aluZero bool) State {
	switch current {
	case PcRead:
		return InstructionFetch
	case InstructionFetch:
		return Decode
	case Decode:
		return dispatchDecode(latchedOpcode)
	case SetLower, SetUpper:
		return PcRead
	case ArithmeticOperation:
		return ArithmeticWriteBack
	case ArithmeticWriteBack:
		return PcRead
	case SetIf:
		if latchedOpcode == decode.SetIfLess {
			return SetIfLess
		}
		return SetIfEqual
	case SetIfLess, SetIfEqual:
		return PcRead
	case Memory:
		if latchedOpcode == decode.LoadWord {
			return MemoryRead
		}
		return MemoryWrite
	case MemoryRead:
		return MemoryReadRegisterWriteback
	case MemoryReadRegisterWriteback:
		return PcRead
	case MemoryWrite:
		return PcRead
	case SetPcTest:
		if latchedOpcode == decode.SetPcIf && aluZero {
			return SetPcWriteback
		}
		return PcRead
	case SetPcWriteback:
		return PcRead
	case Special:
		return PcRead
	case Terminate:
		return Terminate
	default:
		return Terminate
	}
}

// dispatchDecode resolves the state to enter immediately after Decode
// based on the just-decoded opcode.
func dispatchDecode(op decode.Opcode) State {
	switch op {
	case decode.SetLower:
		return SetLower
	case decode.SetUpper:
		return SetUpper
	case decode.Add, decode.Subtract, decode.And, decode.Or,
		decode.ShiftLeft, decode.ShiftRightLogical, decode.ShiftRightArithmetic:
		return ArithmeticOperation
	case decode.SetIfLess, decode.SetIfEqual:
		return SetIf
	case decode.LoadWord, decode.SaveWord:
		return Memory
	case decode.SetPcIf:
		return SetPcTest
	case decode.Special:
		return Special
	default:
		return Terminate
	}
}

// FSM tracks the processor's current control state plus the opcode
// latched at Decode (spec.md §9: SetPcTest needs the opcode past
// Decode to distinguish SetPcIf from a possible future SetPcIfNot
// variant, so it is stored here rather than re-derived from the
// instruction token late).
type FSM struct {
	state         State
	latchedOpcode decode.Opcode
}

// New returns an FSM in its initial state, PcRead.
func New() *FSM {
	return &FSM{state: PcRead, latchedOpcode: decode.Invalid}
}

// State returns the current state.
func (f *FSM) State() State {
	return f.state
}

// LatchedOpcode returns the opcode captured the last time the FSM
// passed through Decode.
func (f *FSM) LatchedOpcode() decode.Opcode {
	return f.latchedOpcode
}

// Signals returns the control-signal bundle for the current state.
func (f *FSM) Signals() Signals {
	return SignalsFor(f.state, f.latchedOpcode)
}

// Advance transitions the FSM to its next state. If the current state
// is Decode, opcode is latched for later states (SetIf family,
// SetPcTest/Writeback) to consult. aluZero is only meaningful when
// leaving SetPcTest.
func (f *FSM) Advance(opcode decode.Opcode, aluZero bool) {
	if f.state == Decode {
		f.latchedOpcode = opcode
	}
	f.state = Next(f.state, f.latchedOpcode, aluZero)
}

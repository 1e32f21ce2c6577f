// Package alu implements the AYU arithmetic/logic unit: a pure
// function from two 16-bit operands and an operation selector to a
// 16-bit result plus zero/negative flags.
package alu

import "github.com/jmchacon/ayusim/decode"

// Operation selects which computation the ALU performs on a given
// clock.
type Operation int

const (
	// Inactive is the zero value: states that don't drive the ALU this
	// clock (PcRead, MemoryReadRegisterWriteback, Special, Terminate...)
	// get it for free as Signals.AluOp's default. Callers must not read
	// Output.Result/Zero/Negative when the control signals select it.
	Inactive Operation = iota
	Add
	Subtract
	And
	Or
	ShiftLeft
	ShiftRightLogical
	ShiftRightArithmetic
)

// String implements fmt.Stringer for log output.
func (o Operation) String() string {
	switch o {
	case Add:
		return "Add"
	case Subtract:
		return "Subtract"
	case And:
		return "And"
	case Or:
		return "Or"
	case ShiftLeft:
		return "ShiftLeft"
	case ShiftRightLogical:
		return "ShiftRightLogical"
	case ShiftRightArithmetic:
		return "ShiftRightArithmetic"
	default:
		return "Inactive"
	}
}

// FromOpcode returns the ALU operation an ArithmeticOperation/SetIf
// state should run for the given decoded opcode. SetIfLess and
// SetIfEqual both resolve to Subtract — the control FSM reads the
// resulting Negative/Zero flag to produce the 0/1 writeback value.
func FromOpcode(op decode.Opcode) Operation {
	switch op {
	case decode.Add:
		return Add
	case decode.Subtract, decode.SetIfLess, decode.SetIfEqual:
		return Subtract
	case decode.And:
		return And
	case decode.Or:
		return Or
	case decode.ShiftLeft:
		return ShiftLeft
	case decode.ShiftRightLogical:
		return ShiftRightLogical
	case decode.ShiftRightArithmetic:
		return ShiftRightArithmetic
	default:
		return Inactive
	}
}

// Output holds the result of one ALU evaluation.
type Output struct {
	Result   uint16
	Zero     bool
	Negative bool
}

const negativeBit = 0x8000

// Execute computes a 16-bit result for the given operation over a and
// b. All arithmetic wraps modulo 2^16. The negative flag always tests
// bit 15 of the result, per spec.md §4.2 — the source implementation
// this was ported from tested bit 0 for Add/And/Or/ShiftLeft/
// ShiftRightLogical, a known bug that is deliberately not replicated
// here.
func Execute(a, b uint16, op Operation) Output {
	var result uint16
	switch op {
	case Add:
		result = a + b
	case Subtract:
		result = a - b
	case And:
		result = a & b
	case Or:
		result = a | b
	case ShiftLeft:
		if b >= 16 {
			result = 0
		} else {
			result = a << b
		}
	case ShiftRightLogical:
		if b >= 16 {
			result = 0
		} else {
			result = a >> b
		}
	case ShiftRightArithmetic:
		signed := a&negativeBit != 0
		if b >= 16 {
			if signed {
				result = 0xFFFF
			} else {
				result = 0
			}
		} else if b == 0 {
			result = a
		} else {
			result = a >> b
			if signed {
				result |= 0xFFFF << (16 - b)
			}
		}
	case Inactive:
		return Output{}
	}
	return Output{
		Result:   result,
		Zero:     result == 0,
		Negative: result&negativeBit != 0,
	}
}

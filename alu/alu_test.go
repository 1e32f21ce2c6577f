package alu

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmchacon/ayusim/decode"
)

func TestExecuteArithmetic(t *testing.T) {
	tests := []struct {
		name     string
		a, b     uint16
		op       Operation
		want     Output
	}{
		{"add", 17, 132, Add, Output{Result: 149}},
		{"add wraps", 0xFFFF, 1, Add, Output{Result: 0, Zero: true}},
		{"subtract", 75, 66, Subtract, Output{Result: 9}},
		{"subtract negative wraps", 0, 1, Subtract, Output{Result: 0xFFFF, Negative: true}},
		{"and", 0b10101010, 0b11110000, And, Output{Result: 0b10100000, Negative: false}},
		{"or", 0b10101010, 0b11110000, Or, Output{Result: 0b11111010}},
		{"shiftLeft", 0x0001, 15, ShiftLeft, Output{Result: 0x8000, Negative: true}},
		{"shiftLeft overflow", 0x0001, 16, ShiftLeft, Output{Result: 0, Zero: true}},
		{"shiftRightLogical", 0x8000, 15, ShiftRightLogical, Output{Result: 1}},
		{"shiftRightLogical overflow", 0x8000, 16, ShiftRightLogical, Output{Result: 0, Zero: true}},
		{"shiftRightArithmetic positive", 0x4000, 2, ShiftRightArithmetic, Output{Result: 0x1000}},
		{"shiftRightArithmetic sign-extends", 0b1010101000000000, 2, ShiftRightArithmetic, Output{Result: 0b1110101010000000, Negative: true}},
		{"shiftRightArithmetic by zero", 0x8001, 0, ShiftRightArithmetic, Output{Result: 0x8001, Negative: true}},
		{"shiftRightArithmetic overflow negative", 0x8000, 16, ShiftRightArithmetic, Output{Result: 0xFFFF, Negative: true}},
		{"shiftRightArithmetic overflow positive", 0x7FFF, 16, ShiftRightArithmetic, Output{Result: 0}},
		{"inactive", 5, 5, Inactive, Output{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Execute(tc.a, tc.b, tc.op)
			require.Equal(t, tc.want.Result, got.Result)
			require.Equal(t, tc.want.Negative, got.Negative, "negative flag")
			require.Equal(t, tc.want.Result == 0, got.Zero, "zero flag")
		})
	}
}

// TestNegativeFlagUsesBit15 pins down spec.md §4.2's explicit requirement:
// the negative flag always reflects bit 15 of the result, for every
// operation — not bit 0, which is what this simulator's original
// implementation tested for Add/And/Or/ShiftLeft/ShiftRightLogical.
func TestNegativeFlagUsesBit15(t *testing.T) {
	// Bit 0 set, bit 15 clear: negative must be false despite the
	// historical bit-0 bug this deliberately does not replicate.
	out := Execute(0x0001, 0x0000, Add)
	require.False(t, out.Negative)

	out = Execute(0x8000, 0x0000, Or)
	require.True(t, out.Negative)
}

func TestFromOpcodeSetIfVariants(t *testing.T) {
	require.Equal(t, Subtract, FromOpcode(decode.SetIfLess))
	require.Equal(t, Subtract, FromOpcode(decode.SetIfEqual))
	require.Equal(t, Subtract, FromOpcode(decode.Subtract))
	require.Equal(t, Inactive, FromOpcode(decode.SetLower))
}

func TestInactiveIsZeroValue(t *testing.T) {
	var op Operation
	require.Equal(t, Inactive, op)
}

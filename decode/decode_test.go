package decode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		word uint16
		want Instruction
	}{
		{"add", 0x0223, Instruction{Opcode: Add, Nibble2: 2, Nibble3: 2, Nibble4: 3, Type: TypeRegister}},
		{"subtract", 0x1223, Instruction{Opcode: Subtract, Nibble2: 2, Nibble3: 2, Nibble4: 3, Type: TypeRegister}},
		{"setIfLess", 0x4223, Instruction{Opcode: SetIfLess, Nibble2: 2, Nibble3: 2, Nibble4: 3, Type: TypeRegister}},
		{"setLower", 0x9211, Instruction{Opcode: SetLower, Nibble2: 2, Nibble3: 1, Nibble4: 1, Type: TypeSet}},
		{"setUpper", 0xA21F, Instruction{Opcode: SetUpper, Nibble2: 2, Nibble3: 1, Nibble4: 0xF, Type: TypeSet}},
		{"loadWord", 0xB122, Instruction{Opcode: LoadWord, Nibble2: 1, Nibble3: 2, Nibble4: 2, Type: TypeMemory}},
		{"saveWord", 0xC122, Instruction{Opcode: SaveWord, Nibble2: 1, Nibble3: 2, Nibble4: 2, Type: TypeMemory}},
		{"setPcIf", 0xD123, Instruction{Opcode: SetPcIf, Nibble2: 1, Nibble3: 2, Nibble4: 3, Type: TypeSpecial}},
		{"special", 0xF100, Instruction{Opcode: Special, Nibble2: 1, Nibble3: 0, Nibble4: 0, Type: TypeSpecial}},
		{"unassigned", 0xE000, Instruction{Opcode: Invalid, Nibble2: 0, Nibble3: 0, Nibble4: 0, Type: TypeInvalid}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Decode(tc.word))
		})
	}
}

func TestOpcodeString(t *testing.T) {
	require.Equal(t, "Add", Add.String())
	require.Equal(t, "Invalid", Invalid.String())
	require.Equal(t, "Invalid", Opcode(99).String())
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "Register", TypeRegister.String())
	require.Equal(t, "Invalid", TypeInvalid.String())
}

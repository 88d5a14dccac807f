package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisassemble(t *testing.T) {
	cases := []struct {
		raw  uint32
		want string
	}{
		{Encode(OpNOP, 0, 0, 0, 0), "NOP"},
		{Encode(OpHALT, 0, 0, 0, 0), "HALT"},
		{0x04221800, "ADD R1, R2, R3"},
		{Encode(OpADD, 1, 2, 0, 7), "ADD R1, R2, #7"},
		{0x80A000FF, "MOV R5, #255"},
		{Encode(OpMOV, 5, 0, 9, 0), "MOV R5, R9"},
		{0x41410010, "LDR R10, [R1, #16]"},
		{Encode(OpSTR, 2, 3, 0, 4), "STR R2, [R3, #4]"},
		{Encode(OpCMP, 0, 3, 4, 0), "CMP R3, R4"},
		{Encode(OpB, 0, 0, 0, 16), "B #16"},
		{Encode(OpBNE, 0, 0, 0, 0x7F8), "BNE #-8"},
	}
	for _, tc := range cases {
		t.Run(tc.want, func(t *testing.T) {
			require.Equal(t, tc.want, Disassemble(tc.raw))
		})
	}
}

func TestDisassembleUnknown(t *testing.T) {
	// opcode 0x2F is unassigned
	raw := uint32(0x2F) << 26
	require.Contains(t, Disassemble(raw), ".word")
}

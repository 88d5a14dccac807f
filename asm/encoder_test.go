package asm

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeSrc(t *testing.T, src string) []byte {
	t.Helper()
	prog := parse(t, src)
	require.NoError(t, Resolve(prog))
	bin, err := EncodeProgram(prog)
	require.NoError(t, err)
	return bin
}

func encodeErr(t *testing.T, src string) error {
	t.Helper()
	prog := parse(t, src)
	require.NoError(t, Resolve(prog))
	_, err := EncodeProgram(prog)
	require.Error(t, err)
	return err
}

func word(t *testing.T, bin []byte, i int) uint32 {
	t.Helper()
	require.GreaterOrEqual(t, len(bin), (i+1)*4)
	return binary.LittleEndian.Uint32(bin[i*4:])
}

func TestEncodePinnedScenarios(t *testing.T) {
	t.Run("ADD R1, R2, R3", func(t *testing.T) {
		bin := encodeSrc(t, "ADD R1, R2, R3\n")
		require.Equal(t, []byte{0x00, 0x18, 0x22, 0x04}, bin)
		require.Equal(t, uint32(0x04221800), word(t, bin, 0))
	})
	t.Run("MOV R5, #255", func(t *testing.T) {
		require.Equal(t, uint32(0x80A000FF), word(t, encodeSrc(t, "MOV R5, #255\n"), 0))
	})
	t.Run("LDR R10, [R1, #16]", func(t *testing.T) {
		require.Equal(t, uint32(0x41410010), word(t, encodeSrc(t, "LDR R10, [R1, #16]\n"), 0))
	})
	t.Run("MOV R0, #42 ; HALT", func(t *testing.T) {
		bin := encodeSrc(t, "MOV R0, #42\nHALT\n")
		require.Equal(t, []byte{0x2A, 0x00, 0x00, 0x80, 0x00, 0x00, 0x00, 0xFC}, bin)
	})
}

func TestEncodeRegisterForms(t *testing.T) {
	// immediate and register sources select different fields
	withImm := word(t, encodeSrc(t, "ADD R1, R2, #7\n"), 0)
	withReg := word(t, encodeSrc(t, "ADD R1, R2, R7\n"), 0)
	require.Equal(t, uint32(7), withImm&0x7FF)
	require.Zero(t, withImm>>11&0x1F)
	require.Equal(t, uint32(7), withReg>>11&0x1F)
	require.Zero(t, withReg&0x7FF)
}

func TestEncodeCmpUsesRn(t *testing.T) {
	w := word(t, encodeSrc(t, "CMP R3, #9\n"), 0)
	require.Zero(t, w>>21&0x1F, "CMP leaves Rd clear")
	require.Equal(t, uint32(3), w>>16&0x1F)
	require.Equal(t, uint32(9), w&0x7FF)
}

func TestEncodeNegativeMemoryOffset(t *testing.T) {
	w := word(t, encodeSrc(t, "STR R2, [R1, #-4]\n"), 0)
	require.Equal(t, uint32(0x7FC), w&0x7FF, "two's complement packed into 11 bits")
}

func TestEncodeValidationErrors(t *testing.T) {
	cases := []struct {
		name, src, want string
	}{
		{"halt operands", "HALT R1\n", "takes no operands"},
		{"add arity", "ADD R1, R2\n", "exactly 3 operands"},
		{"add dest", "ADD #1, R2, R3\n", "destination must be a register"},
		{"mov arity", "MOV R1\n", "exactly 2 operands"},
		{"mov imm range", "MOV R1, #2048\n", "out of range: 2048"},
		{"alu imm range", "ADD R1, R2, #4095\n", "out of range: 4095"},
		{"ldr needs memory", "LDR R1, R2\n", "memory syntax"},
		{"ldr offset range", "LDR R1, [R2, #1024]\n", "out of range: 1024"},
		{"str offset range", "STR R1, [R2, #-1025]\n", "out of range: -1025"},
		{"branch operand", "B R1\n", "immediate offset"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := encodeErr(t, tc.src)
			require.Contains(t, err.Error(), "Encoder:")
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

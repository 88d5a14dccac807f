package asm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aurelia-systems/aurelia/cpu"
)

func parse(t *testing.T, src string) *Program {
	t.Helper()
	tokens, err := Lex(src)
	require.NoError(t, err)
	prog, err := Parse(tokens)
	require.NoError(t, err)
	return prog
}

func TestParseRegisterInstruction(t *testing.T) {
	prog := parse(t, "ADD R1, R2, R3\n")
	require.Len(t, prog.Instructions, 1)

	in := prog.Instructions[0]
	require.Equal(t, cpu.OpADD, in.Op)
	require.Len(t, in.Operands, 3)
	for i, want := range []uint8{1, 2, 3} {
		require.Equal(t, OperandRegister, in.Operands[i].Kind)
		require.Equal(t, want, in.Operands[i].Reg)
	}
}

func TestParseImmediateAndAliases(t *testing.T) {
	prog := parse(t, "MOV SP, #0x10\nADD LR, SP, #1\n")
	require.Equal(t, uint8(cpu.RegSP), prog.Instructions[0].Operands[0].Reg)
	require.Equal(t, OperandImmediate, prog.Instructions[0].Operands[1].Kind)
	require.Equal(t, uint64(0x10), prog.Instructions[0].Operands[1].Imm)
	require.Equal(t, uint8(cpu.RegLR), prog.Instructions[1].Operands[0].Reg)
}

func TestParseMemoryOperand(t *testing.T) {
	t.Run("with offset", func(t *testing.T) {
		prog := parse(t, "LDR R1, [R2, #-8]\n")
		op := prog.Instructions[0].Operands[1]
		require.Equal(t, OperandMemory, op.Kind)
		require.Equal(t, uint8(2), op.Base)
		require.Equal(t, int64(-8), op.Offset)
		require.False(t, op.PreIndexed)
		require.False(t, op.WriteBack)
	})
	t.Run("bare base", func(t *testing.T) {
		prog := parse(t, "STR R0, [R4]\n")
		op := prog.Instructions[0].Operands[1]
		require.Equal(t, OperandMemory, op.Kind)
		require.Equal(t, uint8(4), op.Base)
		require.Zero(t, op.Offset)
	})
	t.Run("missing bracket", func(t *testing.T) {
		tokens, err := Lex("LDR R1, [R2, #4\n")
		require.NoError(t, err)
		_, err = Parse(tokens)
		require.Error(t, err)
		require.Contains(t, err.Error(), "']'")
	})
}

func TestParseLabels(t *testing.T) {
	prog := parse(t, "start:\nNOP\nloop: B loop\n")
	require.Equal(t, []LabelDef{
		{Name: "start", Index: 0},
		{Name: "loop", Index: 1},
	}, prog.Labels)

	require.Equal(t, OperandLabel, prog.Instructions[1].Operands[0].Kind)
	require.Equal(t, "loop", prog.Instructions[1].Operands[0].Label)
}

func TestParseDuplicateLabel(t *testing.T) {
	tokens, err := Lex("x:\nNOP\nx:\nNOP\n")
	require.NoError(t, err)
	_, err = Parse(tokens)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate label")
}

func TestParseStringDirective(t *testing.T) {
	prog := parse(t, ".string \"ab\\n\"\n")
	require.Equal(t, []byte{'a', 'b', '\n', 0}, prog.Data)
	require.Empty(t, prog.Instructions)
}

func TestParseSectionDirectives(t *testing.T) {
	prog := parse(t, ".text\nNOP\n.data\n.string \"x\"\n")
	require.Len(t, prog.Instructions, 1)
	require.Equal(t, []byte{'x', 0}, prog.Data)
}

func TestParseUnknownDirective(t *testing.T) {
	tokens, err := Lex(".bogus\n")
	require.NoError(t, err)
	_, err = Parse(tokens)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown directive")
}

func TestParseDiagnosticsCarryLine(t *testing.T) {
	tokens, err := Lex("NOP\nNOP\nADD R1, ,\n")
	require.NoError(t, err)
	_, err = Parse(tokens)
	require.Error(t, err)
	require.Contains(t, err.Error(), "[Line 3] Parser:")
}

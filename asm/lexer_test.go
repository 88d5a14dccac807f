package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestLexInstruction(t *testing.T) {
	tokens, err := Lex("ADD R1, R2, R3\n")
	require.NoError(t, err)
	require.Equal(t, []TokenKind{
		TokMnemonic, TokRegister, TokComma, TokRegister, TokComma,
		TokRegister, TokNewLine, TokEOF,
	}, kinds(tokens))
	require.Equal(t, "ADD", tokens[0].Text)
}

func TestLexCaseInsensitive(t *testing.T) {
	tokens, err := Lex("mov r5, #1")
	require.NoError(t, err)
	require.Equal(t, TokMnemonic, tokens[0].Kind)
	require.Equal(t, TokRegister, tokens[1].Kind)
}

func TestLexImmediates(t *testing.T) {
	cases := []struct {
		src  string
		want uint64
	}{
		{"#42", 42},
		{"#0x2A", 42},
		{"#0b101010", 42},
		{"#-4", ^uint64(0) - 3},
		{"#+7", 7},
		{"#0XFF", 255},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			tokens, err := Lex(tc.src)
			require.NoError(t, err)
			require.Equal(t, TokImmediate, tokens[0].Kind)
			require.Equal(t, tc.want, tokens[0].Value)
		})
	}
}

func TestLexLabels(t *testing.T) {
	tokens, err := Lex("loop:\n B loop\n")
	require.NoError(t, err)
	require.Equal(t, TokLabel, tokens[0].Kind)
	require.Equal(t, "loop", tokens[0].Text, "colon is stripped")
	require.Equal(t, TokLabelRef, tokens[3].Kind)
}

func TestLexRegistersAndAliases(t *testing.T) {
	tokens, err := Lex("MOV SP, LR\nMOV R31, R0")
	require.NoError(t, err)
	require.Equal(t, TokRegister, tokens[1].Kind)
	require.Equal(t, TokRegister, tokens[3].Kind)
	// something register-shaped but out of range is just an identifier
	tokens, err = Lex("R32")
	require.NoError(t, err)
	require.Equal(t, TokLabelRef, tokens[0].Kind)
}

func TestLexCommentsAndBlanks(t *testing.T) {
	tokens, err := Lex("  NOP ; this half is ignored\nHALT")
	require.NoError(t, err)
	require.Equal(t, []TokenKind{TokMnemonic, TokNewLine, TokMnemonic, TokEOF}, kinds(tokens))
}

func TestLexString(t *testing.T) {
	tokens, err := Lex(`.string "hi\n\t\"x\"\0"`)
	require.NoError(t, err)
	require.Equal(t, TokDirective, tokens[0].Kind)
	require.Equal(t, TokString, tokens[1].Kind)
	require.Equal(t, "hi\n\t\"x\"\x00", tokens[1].Text)
}

func TestLexTracksLines(t *testing.T) {
	tokens, err := Lex("NOP\nNOP\n NOP\n")
	require.NoError(t, err)
	require.Equal(t, 1, tokens[0].Line)
	require.Equal(t, 2, tokens[2].Line)
	require.Equal(t, 3, tokens[4].Line)
}

func TestLexErrors(t *testing.T) {
	t.Run("unterminated string", func(t *testing.T) {
		_, err := Lex("NOP\n.string \"oops")
		require.Error(t, err)
		require.Contains(t, err.Error(), "[Line 2] Lexer:")
	})
	t.Run("stray character", func(t *testing.T) {
		_, err := Lex("ADD R1, R2, @")
		require.Error(t, err)
		require.Contains(t, err.Error(), "Lexer")
	})
	t.Run("malformed immediate", func(t *testing.T) {
		_, err := Lex("MOV R1, #")
		require.Error(t, err)
	})
}

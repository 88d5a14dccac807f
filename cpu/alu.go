package cpu

import "github.com/aurelia-systems/aurelia/core"

// Flags is the architectural status word.
type Flags struct {
	Z bool // zero
	N bool // negative (bit 63 of the result)
	C bool // carry / borrow / last bit shifted out
	V bool // signed overflow
}

// AluOp selects the ALU function.
type AluOp uint8

const (
	AluADD AluOp = iota
	AluSUB
	AluAND
	AluOR
	AluXOR
	AluLSL
	AluLSR
	AluASR
)

// ALU is a pure function from (op, a, b, flags-in) to (result, flags-out).
//
// Carry: ADD sets it on unsigned wrap, SUB on borrow (a < b). Bitwise ops
// preserve the incoming carry. Shifts capture the last bit shifted out and
// preserve carry when the (6-bit masked) shift amount is zero. Overflow is
// the usual signed rule for ADD/SUB and cleared for everything else.
func ALU(op AluOp, a, b core.Word, in Flags) (core.Word, Flags) {
	var res core.Word
	var out Flags

	switch op {
	case AluADD:
		res = a + b
		out.C = res < a
		aNeg, bNeg, rNeg := a>>63 != 0, b>>63 != 0, res>>63 != 0
		out.V = aNeg == bNeg && aNeg != rNeg

	case AluSUB:
		res = a - b
		out.C = a < b
		aNeg, bNeg, rNeg := a>>63 != 0, b>>63 != 0, res>>63 != 0
		out.V = aNeg != bNeg && rNeg != aNeg

	case AluAND:
		res = a & b
		out.C = in.C

	case AluOR:
		res = a | b
		out.C = in.C

	case AluXOR:
		res = a ^ b
		out.C = in.C

	case AluLSL:
		shift := uint(b & 0x3F)
		if shift == 0 {
			res = a
			out.C = in.C
		} else {
			res = a << shift
			out.C = core.CheckBit(a, 64-shift)
		}

	case AluLSR:
		shift := uint(b & 0x3F)
		if shift == 0 {
			res = a
			out.C = in.C
		} else {
			res = a >> shift
			out.C = core.CheckBit(a, shift-1)
		}

	case AluASR:
		shift := uint(b & 0x3F)
		if shift == 0 {
			res = a
			out.C = in.C
		} else {
			res = core.Word(int64(a) >> shift)
			out.C = core.CheckBit(a, shift-1)
		}
	}

	out.Z = res == 0
	out.N = res>>63 != 0
	return res, out
}

package asm

import (
	"encoding/binary"

	"github.com/aurelia-systems/aurelia/cpu"
)

const (
	immUMax = 2047
)

// EncodeProgram validates every instruction's operand shape against its
// opcode and assembles the 32-bit words, emitted little-endian.
func EncodeProgram(prog *Program) ([]byte, error) {
	out := make([]byte, 0, len(prog.Instructions)*4)
	for i := range prog.Instructions {
		word, err := encodeInstruction(&prog.Instructions[i])
		if err != nil {
			return nil, err
		}
		out = binary.LittleEndian.AppendUint32(out, word)
	}
	return out, nil
}

func encodeInstruction(in *Instruction) (uint32, error) {
	var rd, rn, rm uint8
	var imm uint32

	fail := func(format string, args ...any) (uint32, error) {
		return 0, errorf("Encoder", in.Line, format, args...)
	}

	switch in.Op {
	case cpu.OpNOP, cpu.OpHALT:
		if len(in.Operands) != 0 {
			return fail("%s takes no operands", in.Mnemonic)
		}

	case cpu.OpB, cpu.OpBEQ, cpu.OpBNE:
		if len(in.Operands) != 1 {
			return fail("%s requires exactly 1 operand (offset)", in.Mnemonic)
		}
		if in.Operands[0].Kind != OperandImmediate {
			return fail("%s operand must be an immediate offset", in.Mnemonic)
		}
		offset := int64(in.Operands[0].Imm)
		if offset < branchMin || offset > branchMax {
			return fail("branch offset out of range: %d (must be in [-1024, +1023])", offset)
		}
		imm = uint32(offset) & 0x7FF

	case cpu.OpMOV:
		if len(in.Operands) != 2 {
			return fail("MOV requires exactly 2 operands (Rd, src)")
		}
		if in.Operands[0].Kind != OperandRegister {
			return fail("MOV destination must be a register")
		}
		rd = in.Operands[0].Reg
		switch src := in.Operands[1]; src.Kind {
		case OperandRegister:
			rm = src.Reg
		case OperandImmediate:
			if src.Imm > immUMax {
				return fail("MOV immediate out of range: %d (must be in [0, 2047])", src.Imm)
			}
			imm = uint32(src.Imm)
		default:
			return fail("MOV source must be a register or immediate")
		}

	case cpu.OpCMP:
		if len(in.Operands) != 2 {
			return fail("CMP requires exactly 2 operands (Rn, src)")
		}
		if in.Operands[0].Kind != OperandRegister {
			return fail("CMP first operand must be a register")
		}
		rn = in.Operands[0].Reg
		switch src := in.Operands[1]; src.Kind {
		case OperandRegister:
			rm = src.Reg
		case OperandImmediate:
			if src.Imm > immUMax {
				return fail("CMP immediate out of range: %d (must be in [0, 2047])", src.Imm)
			}
			imm = uint32(src.Imm)
		default:
			return fail("CMP second operand must be a register or immediate")
		}

	case cpu.OpADD, cpu.OpSUB, cpu.OpAND, cpu.OpOR, cpu.OpXOR,
		cpu.OpLSL, cpu.OpLSR, cpu.OpASR:
		if len(in.Operands) != 3 {
			return fail("%s requires exactly 3 operands (Rd, Rn, src)", in.Mnemonic)
		}
		if in.Operands[0].Kind != OperandRegister {
			return fail("%s destination must be a register", in.Mnemonic)
		}
		if in.Operands[1].Kind != OperandRegister {
			return fail("%s first source must be a register", in.Mnemonic)
		}
		rd = in.Operands[0].Reg
		rn = in.Operands[1].Reg
		switch src := in.Operands[2]; src.Kind {
		case OperandRegister:
			rm = src.Reg
		case OperandImmediate:
			if src.Imm > immUMax {
				return fail("%s immediate out of range: %d (must be in [0, 2047])",
					in.Mnemonic, src.Imm)
			}
			imm = uint32(src.Imm)
		default:
			return fail("%s second source must be a register or immediate", in.Mnemonic)
		}

	case cpu.OpLDR, cpu.OpSTR:
		if len(in.Operands) != 2 {
			return fail("%s requires exactly 2 operands (Rd, [Rn, #offset])", in.Mnemonic)
		}
		if in.Operands[0].Kind != OperandRegister {
			return fail("%s data operand must be a register", in.Mnemonic)
		}
		if in.Operands[1].Kind != OperandMemory {
			return fail("%s address operand must use memory syntax [Rn, #offset]", in.Mnemonic)
		}
		rd = in.Operands[0].Reg
		memOp := in.Operands[1]
		rn = memOp.Base
		if memOp.Offset < branchMin || memOp.Offset > branchMax {
			return fail("%s offset out of range: %d (must be in [-1024, +1023])",
				in.Mnemonic, memOp.Offset)
		}
		imm = uint32(memOp.Offset) & 0x7FF

	default:
		return fail("unknown opcode: %s", in.Mnemonic)
	}

	return cpu.Encode(in.Op, rd, rn, rm, imm), nil
}

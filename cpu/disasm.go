package cpu

import "fmt"

// Disassemble renders one instruction word in assembler syntax. It is the
// codec's inverse at the text level and is used by the disasm command.
func Disassemble(raw uint32) string {
	in := Decode(raw)

	switch in.Op {
	case OpNOP, OpHALT:
		return in.Op.String()

	case OpB, OpBEQ, OpBNE:
		return fmt.Sprintf("%s #%d", in.Op, int64(in.Imm))

	case OpLDR, OpSTR:
		return fmt.Sprintf("%s R%d, [R%d, #%d]", in.Op, in.Rd, in.Rn, in.Imm)

	case OpMOV:
		if in.Imm != 0 || in.Rm == 0 {
			return fmt.Sprintf("MOV R%d, #%d", in.Rd, in.Imm)
		}
		return fmt.Sprintf("MOV R%d, R%d", in.Rd, in.Rm)

	case OpCMP:
		if in.Imm != 0 || in.Rm == 0 {
			return fmt.Sprintf("CMP R%d, #%d", in.Rn, in.Imm)
		}
		return fmt.Sprintf("CMP R%d, R%d", in.Rn, in.Rm)

	case OpADD, OpSUB, OpAND, OpOR, OpXOR, OpLSL, OpLSR, OpASR:
		if in.Imm != 0 || in.Rm == 0 {
			return fmt.Sprintf("%s R%d, R%d, #%d", in.Op, in.Rd, in.Rn, in.Imm)
		}
		return fmt.Sprintf("%s R%d, R%d, R%d", in.Op, in.Rd, in.Rn, in.Rm)
	}
	return fmt.Sprintf(".word 0x%08X", raw)
}

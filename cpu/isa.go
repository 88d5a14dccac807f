// Package cpu implements the Aurelia core: the instruction set and its
// 32-bit codec, the flag-producing ALU and the five-stage pipeline state
// machine that drives the system bus.
package cpu

// Opcode tags. The numeric values are the ISA encoding; the encoder casts
// them straight into the opcode field (masked to its 6 bits, so HALT's
// conventional 0xFF tag lands on the wire as 0x3F).
type Opcode uint8

const (
	OpNOP Opcode = 0x00

	OpADD Opcode = 0x01
	OpSUB Opcode = 0x02
	OpAND Opcode = 0x03
	OpOR  Opcode = 0x04
	OpXOR Opcode = 0x05
	OpLSL Opcode = 0x06
	OpLSR Opcode = 0x07
	OpASR Opcode = 0x08
	OpCMP Opcode = 0x09

	OpLDR Opcode = 0x10
	OpSTR Opcode = 0x11

	OpMOV Opcode = 0x20

	OpB   Opcode = 0x30
	OpBEQ Opcode = 0x31
	OpBNE Opcode = 0x32

	OpHALT Opcode = 0xFF
)

func (op Opcode) String() string {
	switch op {
	case OpNOP:
		return "NOP"
	case OpADD:
		return "ADD"
	case OpSUB:
		return "SUB"
	case OpAND:
		return "AND"
	case OpOR:
		return "OR"
	case OpXOR:
		return "XOR"
	case OpLSL:
		return "LSL"
	case OpLSR:
		return "LSR"
	case OpASR:
		return "ASR"
	case OpCMP:
		return "CMP"
	case OpLDR:
		return "LDR"
	case OpSTR:
		return "STR"
	case OpMOV:
		return "MOV"
	case OpB:
		return "B"
	case OpBEQ:
		return "BEQ"
	case OpBNE:
		return "BNE"
	case OpHALT:
		return "HALT"
	}
	return "???"
}

// Kind is the operand shape of an instruction, derived from its opcode.
type Kind uint8

const (
	KindRegister Kind = iota
	KindImmediate
	KindBranch
)

// KindOf returns the operand shape for an opcode: loads, stores and MOV are
// immediate-shaped, branches are branch-shaped, everything else reads two
// registers.
func KindOf(op Opcode) Kind {
	switch op {
	case OpLDR, OpSTR, OpMOV:
		return KindImmediate
	case OpB, OpBEQ, OpBNE:
		return KindBranch
	}
	return KindRegister
}

// Instruction is the decoded form consumed by the pipeline.
type Instruction struct {
	Op   Opcode
	Rd   uint8
	Rn   uint8
	Rm   uint8
	Imm  uint64
	Kind Kind
}

// NumRegs is the size of the general-purpose register file.
const NumRegs = 32

// Register aliases used by the assembler.
const (
	RegSP = 30
	RegLR = 31
)

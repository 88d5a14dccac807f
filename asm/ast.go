package asm

import "github.com/aurelia-systems/aurelia/cpu"

// OperandKind discriminates the Operand variants.
type OperandKind uint8

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandMemory
	OperandLabel
)

// Operand is one instruction argument. Only the fields of the active Kind
// are meaningful. PreIndexed and WriteBack are parsed but unused by the
// current ISA; they stay for future addressing modes.
type Operand struct {
	Kind OperandKind

	Reg uint8  // OperandRegister
	Imm uint64 // OperandImmediate

	Base       uint8 // OperandMemory
	Offset     int64
	PreIndexed bool
	WriteBack  bool

	Label string // OperandLabel
}

// Instruction is one parsed statement, with its source position for
// diagnostics.
type Instruction struct {
	Op       cpu.Opcode
	Mnemonic string
	Operands []Operand
	Line     int
	Col      int
}

// LabelDef records a label and the instruction index it precedes.
type LabelDef struct {
	Name  string
	Index int
}

// Program is the parser output: the instruction stream, label definitions
// and the accumulated data segment.
type Program struct {
	Instructions []Instruction
	Labels       []LabelDef
	Data         []byte
}

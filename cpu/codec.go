package cpu

// Instruction word layout, fixed 32 bits:
//
//	[31:26] opcode  (6 bits)
//	[25:21] Rd      (5 bits)
//	[20:16] Rn      (5 bits)
//	[15:11] Rm      (5 bits)
//	[10:0]  imm     (11 bits)
//
// Words are stored little-endian in memory.
const (
	opcodeShift = 26
	rdShift     = 21
	rnShift     = 16
	rmShift     = 11

	opcodeMask = 0x3F
	regMask    = 0x1F
	immMask    = 0x7FF
)

// Encode packs the fields of a single instruction word. Fields are masked to
// their widths; range validation is the assembler's job.
func Encode(op Opcode, rd, rn, rm uint8, imm uint32) uint32 {
	var w uint32
	w |= (uint32(op) & opcodeMask) << opcodeShift
	w |= (uint32(rd) & regMask) << rdShift
	w |= (uint32(rn) & regMask) << rnShift
	w |= (uint32(rm) & regMask) << rmShift
	w |= imm & immMask
	return w
}

// Decode unpacks a raw instruction word. The 11-bit immediate is
// zero-extended, except for branches where bit 10 is the sign of a byte
// offset in [-1024, +1023].
func Decode(raw uint32) Instruction {
	op := Opcode(raw >> opcodeShift & opcodeMask)
	if op == OpHALT&opcodeMask {
		op = OpHALT
	}

	instr := Instruction{
		Op:   op,
		Rd:   uint8(raw >> rdShift & regMask),
		Rn:   uint8(raw >> rnShift & regMask),
		Rm:   uint8(raw >> rmShift & regMask),
		Imm:  uint64(raw & immMask),
		Kind: KindOf(op),
	}

	if instr.Kind == KindBranch && instr.Imm&0x400 != 0 {
		instr.Imm |= ^uint64(immMask)
	}
	return instr
}

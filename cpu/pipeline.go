package cpu

import (
	"github.com/aurelia-systems/aurelia/bus"
	"github.com/aurelia-systems/aurelia/core"
)

// Stage is the pipeline state. Fetch and Memory span two micro-ops because
// they transact on the bus; the other stages take one cycle each.
type Stage uint8

const (
	StageFetch Stage = iota
	StageDecode
	StageExecute
	StageMemory
	StageWriteBack
)

func (s Stage) String() string {
	switch s {
	case StageFetch:
		return "fetch"
	case StageDecode:
		return "decode"
	case StageExecute:
		return "execute"
	case StageMemory:
		return "memory"
	case StageWriteBack:
		return "writeback"
	}
	return "???"
}

// CPU is the five-stage in-order core. It is a bus master: Fetch and Memory
// assert the control lines and spin on Wait until the slave completes.
// Instructions retire strictly in program order.
type CPU struct {
	bus *bus.Bus

	// architectural state
	gpr   [NumRegs]core.Word
	pc    core.Addr
	flags Flags

	// pipeline state
	stage   Stage
	microOp int
	halted  bool

	// inter-stage latches
	instr   Instruction
	opA     core.Word
	opB     core.Word
	aluRes  core.Word
	memData core.Word
}

func New(b *bus.Bus) *CPU {
	return &CPU{bus: b}
}

// Reset zeroes the architectural and pipeline state and starts fetching at
// entry.
func (c *CPU) Reset(entry core.Addr) {
	c.gpr = [NumRegs]core.Word{}
	c.pc = entry
	c.flags = Flags{}
	c.stage = StageFetch
	c.microOp = 0
	c.halted = false
	c.instr = Instruction{}
	c.opA, c.opB, c.aluRes, c.memData = 0, 0, 0, 0
}

func (c *CPU) Reg(i uint8) core.Word {
	return c.gpr[i]
}

func (c *CPU) SetReg(i uint8, v core.Word) {
	c.gpr[i] = v
}

func (c *CPU) PC() core.Addr {
	return c.pc
}

func (c *CPU) SetPC(v core.Addr) {
	c.pc = v
}

func (c *CPU) Flags() Flags {
	return c.flags
}

func (c *CPU) Stage() Stage {
	return c.stage
}

func (c *CPU) Halted() bool {
	return c.halted
}

// Tick advances the pipeline one cycle. Bus state is observed as it stands
// at the start of the cycle; anything asserted here is evaluated by the bus
// tick that follows.
func (c *CPU) Tick() {
	if c.bus == nil || c.halted {
		return
	}

	switch c.stage {
	case StageFetch:
		c.fetch()
	case StageDecode:
		c.decode()
	case StageExecute:
		c.execute()
	case StageMemory:
		c.memory()
	case StageWriteBack:
		c.writeBack()
	}
}

func (c *CPU) fetch() {
	if c.microOp == 0 {
		c.bus.SetAddr(c.pc)
		c.bus.SetControl(bus.SigRead, true)
		c.bus.SetControl(bus.SigWrite, false)
		c.microOp = 1
		return
	}

	st := c.bus.State()
	if st.Control&bus.SigWait != 0 {
		return // slave still holding the transaction
	}

	// The data lines carry the 64-bit word starting at PC; the
	// instruction is its low half.
	c.instr = Decode(uint32(st.Data))
	c.bus.SetControl(bus.SigRead, false)
	c.stage = StageDecode
	c.microOp = 0
}

func (c *CPU) decode() {
	switch c.instr.Kind {
	case KindRegister:
		c.opA = c.gpr[c.instr.Rn]
		c.opB = c.gpr[c.instr.Rm]
	case KindImmediate:
		// base register for LDR/STR; MOV zeroes opA in Execute
		c.opA = c.gpr[c.instr.Rn]
		c.opB = c.instr.Imm
	case KindBranch:
		c.opB = c.instr.Imm
	}
	c.stage = StageExecute
}

func (c *CPU) execute() {
	switch c.instr.Op {
	case OpB, OpBEQ, OpBNE:
		taken := c.instr.Op == OpB ||
			(c.instr.Op == OpBEQ && c.flags.Z) ||
			(c.instr.Op == OpBNE && !c.flags.Z)
		if taken {
			// Relative to the branch's own PC; no increment at
			// the end of this instruction.
			c.pc += c.opB
			c.stage = StageFetch
			c.microOp = 0
			return
		}
		c.stage = StageWriteBack
		return

	case OpLDR, OpSTR:
		c.aluRes = c.opA + c.opB
		c.stage = StageMemory
		c.microOp = 0
		return

	case OpHALT:
		// The halt retires like any other instruction (PC moves past
		// it); further ticks are no-ops until Reset.
		c.halted = true
		c.pc += 4
		c.stage = StageFetch
		c.microOp = 0
		return

	case OpNOP:
		c.stage = StageWriteBack
		return

	case OpMOV:
		c.opA = 0
		c.aluRes, c.flags = ALU(AluADD, c.opA, c.opB, c.flags)

	case OpCMP:
		// flags only, WriteBack skips the register file
		_, c.flags = ALU(AluSUB, c.opA, c.opB, c.flags)

	default:
		var op AluOp
		switch c.instr.Op {
		case OpADD:
			op = AluADD
		case OpSUB:
			op = AluSUB
		case OpAND:
			op = AluAND
		case OpOR:
			op = AluOR
		case OpXOR:
			op = AluXOR
		case OpLSL:
			op = AluLSL
		case OpLSR:
			op = AluLSR
		case OpASR:
			op = AluASR
		}
		c.aluRes, c.flags = ALU(op, c.opA, c.opB, c.flags)
	}

	c.stage = StageWriteBack
}

func (c *CPU) memory() {
	if c.microOp == 0 {
		c.bus.SetAddr(c.aluRes)
		if c.instr.Op == OpLDR {
			c.bus.SetControl(bus.SigRead, true)
			c.bus.SetControl(bus.SigWrite, false)
		} else {
			c.bus.SetData(c.gpr[c.instr.Rd])
			c.bus.SetControl(bus.SigWrite, true)
			c.bus.SetControl(bus.SigRead, false)
		}
		c.microOp = 1
		return
	}

	st := c.bus.State()
	if st.Control&bus.SigWait != 0 {
		return
	}

	if c.instr.Op == OpLDR {
		c.memData = st.Data
		c.bus.SetControl(bus.SigRead, false)
	} else {
		c.bus.SetControl(bus.SigWrite, false)
	}
	c.stage = StageWriteBack
	c.microOp = 0
}

func (c *CPU) writeBack() {
	switch {
	case c.instr.Op == OpLDR:
		c.gpr[c.instr.Rd] = c.memData
	case c.instr.Op == OpSTR, c.instr.Op == OpCMP, c.instr.Op == OpNOP:
		// no register result
	case c.instr.Kind == KindBranch:
		// not-taken branch, nothing to write
	default:
		c.gpr[c.instr.Rd] = c.aluRes
	}

	c.pc += 4
	c.stage = StageFetch
	c.microOp = 0
}

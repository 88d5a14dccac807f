package asm

import "github.com/aurelia-systems/aurelia/cpu"

// branch offsets must fit the signed 11-bit immediate
const (
	branchMin = -1024
	branchMax = 1023
)

// Resolve rewrites label operands in place. Pass 1 assigns each label the
// byte address of the instruction it precedes (4 bytes per instruction);
// pass 2 turns branch targets into PC-relative byte offsets and other label
// uses into absolute addresses.
func Resolve(prog *Program) error {
	symbols := make(map[string]uint64, len(prog.Labels))
	for _, l := range prog.Labels {
		if _, dup := symbols[l.Name]; dup {
			return errorf("Resolver", 0, "duplicate label definition: %s", l.Name)
		}
		symbols[l.Name] = uint64(l.Index) * 4
	}

	for i := range prog.Instructions {
		instr := &prog.Instructions[i]
		cur := uint64(i) * 4

		for j := range instr.Operands {
			op := &instr.Operands[j]
			if op.Kind != OperandLabel {
				continue
			}

			target, ok := symbols[op.Label]
			if !ok {
				return errorf("Resolver", instr.Line, "undefined symbol: %s", op.Label)
			}

			switch instr.Op {
			case cpu.OpB, cpu.OpBEQ, cpu.OpBNE:
				// the CPU adds the offset to the branch's own PC
				diff := int64(target) - int64(cur)
				if diff < branchMin || diff > branchMax {
					return errorf("Resolver", instr.Line,
						"branch target out of range (%d)", diff)
				}
				*op = Operand{Kind: OperandImmediate, Imm: uint64(diff)}
			default:
				// absolute address, reserved for data addressing
				*op = Operand{Kind: OperandImmediate, Imm: target}
			}
		}
	}
	return nil
}

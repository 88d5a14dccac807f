package asm

import (
	"strconv"
	"strings"

	"github.com/aurelia-systems/aurelia/cpu"
)

var opcodes = map[string]cpu.Opcode{
	"NOP": cpu.OpNOP, "ADD": cpu.OpADD, "SUB": cpu.OpSUB, "AND": cpu.OpAND,
	"OR": cpu.OpOR, "XOR": cpu.OpXOR, "LSL": cpu.OpLSL, "LSR": cpu.OpLSR,
	"ASR": cpu.OpASR, "CMP": cpu.OpCMP, "MOV": cpu.OpMOV, "LDR": cpu.OpLDR,
	"STR": cpu.OpSTR, "B": cpu.OpB, "BEQ": cpu.OpBEQ, "BNE": cpu.OpBNE,
	"HALT": cpu.OpHALT,
}

type parser struct {
	tokens []Token
	pos    int

	prog    Program
	defined map[string]struct{}
}

// Parse turns the token stream into a Program. Grammar:
//
//	program   := { statement }
//	statement := label | directive | instruction | NewLine
//	operand   := register | immediate | labelref | "[" register [ "," immediate ] "]"
func Parse(tokens []Token) (*Program, error) {
	p := &parser{tokens: tokens, defined: make(map[string]struct{})}
	for !p.atEnd() {
		if err := p.statement(); err != nil {
			return nil, err
		}
	}
	return &p.prog, nil
}

func (p *parser) atEnd() bool {
	return p.peek().Kind == TokEOF
}

func (p *parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	t := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *parser) match(kind TokenKind) bool {
	if p.peek().Kind != kind {
		return false
	}
	p.pos++
	return true
}

func (p *parser) expect(kind TokenKind, context string) error {
	if p.match(kind) {
		return nil
	}
	return errorf("Parser", p.peek().Line, "expected %s %s, found %q", kind, context, p.peek().Text)
}

func (p *parser) statement() error {
	if p.match(TokNewLine) {
		return nil
	}
	switch p.peek().Kind {
	case TokLabel:
		return p.label()
	case TokDirective:
		return p.directive()
	case TokMnemonic:
		return p.instruction()
	}
	return errorf("Parser", p.peek().Line, "unexpected token %q", p.peek().Text)
}

func (p *parser) label() error {
	tok := p.advance()
	if _, dup := p.defined[tok.Text]; dup {
		return errorf("Parser", tok.Line, "duplicate label definition: %s", tok.Text)
	}
	p.defined[tok.Text] = struct{}{}
	p.prog.Labels = append(p.prog.Labels, LabelDef{Name: tok.Text, Index: len(p.prog.Instructions)})
	return nil
}

func (p *parser) directive() error {
	tok := p.advance()
	switch strings.ToLower(tok.Text) {
	case ".string":
		str := p.peek()
		if err := p.expect(TokString, "after .string"); err != nil {
			return err
		}
		p.prog.Data = append(p.prog.Data, str.Text...)
		p.prog.Data = append(p.prog.Data, 0)
	case ".data", ".text":
		// section markers, nothing to emit
	default:
		return errorf("Parser", tok.Line, "unknown directive: %s", tok.Text)
	}
	return p.endOfStatement("after directive")
}

func (p *parser) instruction() error {
	tok := p.advance()
	instr := Instruction{
		Op:       opcodes[strings.ToUpper(tok.Text)],
		Mnemonic: tok.Text,
		Line:     tok.Line,
		Col:      tok.Col,
	}

	if p.peek().Kind != TokNewLine && !p.atEnd() {
		for {
			op, err := p.operand()
			if err != nil {
				return err
			}
			instr.Operands = append(instr.Operands, op)
			if !p.match(TokComma) {
				break
			}
		}
	}

	if err := p.endOfStatement("after instruction"); err != nil {
		return err
	}
	p.prog.Instructions = append(p.prog.Instructions, instr)
	return nil
}

// endOfStatement consumes the trailing newline, tolerating a final
// statement that runs into EOF.
func (p *parser) endOfStatement(context string) error {
	if p.atEnd() {
		return nil
	}
	return p.expect(TokNewLine, context)
}

func (p *parser) operand() (Operand, error) {
	switch p.peek().Kind {
	case TokLeftBracket:
		return p.memoryOperand()
	case TokRegister:
		return p.registerOperand()
	case TokImmediate:
		tok := p.advance()
		return Operand{Kind: OperandImmediate, Imm: tok.Value}, nil
	case TokLabelRef:
		tok := p.advance()
		return Operand{Kind: OperandLabel, Label: tok.Text}, nil
	}
	return Operand{}, errorf("Parser", p.peek().Line, "expected operand, found %q", p.peek().Text)
}

func (p *parser) registerOperand() (Operand, error) {
	tok := p.peek()
	if err := p.expect(TokRegister, "operand"); err != nil {
		return Operand{}, err
	}
	idx, err := registerIndex(tok)
	if err != nil {
		return Operand{}, err
	}
	return Operand{Kind: OperandRegister, Reg: idx}, nil
}

func (p *parser) memoryOperand() (Operand, error) {
	open := p.advance() // '['

	base, err := p.registerOperand()
	if err != nil {
		return Operand{}, err
	}

	var offset int64
	if p.match(TokComma) {
		tok := p.peek()
		if err := p.expect(TokImmediate, "as memory offset"); err != nil {
			return Operand{}, err
		}
		offset = int64(tok.Value)
	}

	if !p.match(TokRightBracket) {
		return Operand{}, errorf("Parser", open.Line, "missing ']' in memory operand")
	}
	return Operand{Kind: OperandMemory, Base: base.Reg, Offset: offset}, nil
}

func registerIndex(tok Token) (uint8, error) {
	switch upper := strings.ToUpper(tok.Text); upper {
	case "SP":
		return cpu.RegSP, nil
	case "LR":
		return cpu.RegLR, nil
	case "PC":
		// one past the GPR file; accepted by the grammar, reserved
		// for future addressing modes
		return 32, nil
	default:
		n, err := strconv.Atoi(upper[1:])
		if err != nil || n < 0 || n > 31 {
			return 0, errorf("Parser", tok.Line, "invalid register %q", tok.Text)
		}
		return uint8(n), nil
	}
}

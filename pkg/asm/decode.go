package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/isa"
)

// DecodeLine converts one already-cleaned assembly line (mnemonic plus
// purely numeric operands — labels must already be resolved by the
// assembler) into a DecodedInst. An unrecognized mnemonic yields
// Op == isa.INVALID, Valid == false, and a nil error: the driver treats
// that as a NOP and keeps running (spec.md §7, decode errors are
// per-instruction, non-fatal). A recognized mnemonic with a malformed
// operand or an out-of-range register instead returns a non-nil error
// wrapping ErrMalformedOperand: spec.md §7 places that in the assembly
// errors bucket ("fatal; report line context and abort"), so the
// assembler's pass2 must check this error and abort rather than emit
// the instruction.
func DecodeLine(line string, pc uint32) (isa.DecodedInst, error) {
	fields := tokenize(line)
	if len(fields) == 0 {
		return isa.DecodedInst{Op: isa.NOP, Rd: -1, Rs1: -1, Rs2: -1, PC: pc, Valid: true}, nil
	}
	mnemonic := strings.ToUpper(fields[0])
	ops := fields[1:]

	unknown := isa.DecodedInst{Op: isa.INVALID, Rd: -1, Rs1: -1, Rs2: -1, PC: pc, Valid: false}
	malformed := func() (isa.DecodedInst, error) {
		return unknown, fmt.Errorf("%w: %q", ErrMalformedOperand, line)
	}

	switch mnemonic {
	case "ADD", "SUB", "MUL", "DIV":
		rd, rs1, rs2, ok := decodeRRR(ops)
		if !ok {
			return malformed()
		}
		return isa.DecodedInst{Op: mnemonicOp(mnemonic), Rd: rd, Rs1: rs1, Rs2: rs2, PC: pc, Valid: true}, nil

	case "ADDI", "SUBI":
		rd, rs1, imm, ok := decodeRRI(ops)
		if !ok {
			return malformed()
		}
		return isa.DecodedInst{Op: mnemonicOp(mnemonic), Rd: rd, Rs1: rs1, Imm: imm, Rs2: -1, PC: pc, Valid: true}, nil

	case "SIN", "COS":
		rd, rs1, ok := decodeRR(ops)
		if !ok {
			return malformed()
		}
		return isa.DecodedInst{Op: mnemonicOp(mnemonic), Rd: rd, Rs1: rs1, Rs2: -1, PC: pc, Valid: true}, nil

	case "LW":
		rd, rs1, imm, ok := decodeLoadStore(ops)
		if !ok {
			return malformed()
		}
		return isa.DecodedInst{Op: isa.LW, Rd: rd, Rs1: rs1, Imm: imm, Rs2: -1, PC: pc, Valid: true}, nil

	case "SW":
		rs2, rs1, imm, ok := decodeLoadStore(ops)
		if !ok {
			return malformed()
		}
		return isa.DecodedInst{Op: isa.SW, Rd: -1, Rs1: rs1, Rs2: rs2, Imm: imm, PC: pc, Valid: true}, nil

	case "BEQ", "BLT":
		rs1, rs2, imm, ok := decodeBranch(ops)
		if !ok {
			return malformed()
		}
		return isa.DecodedInst{Op: mnemonicOp(mnemonic), Rd: -1, Rs1: rs1, Rs2: rs2, Imm: imm, PC: pc, Valid: true}, nil

	case "DRAWPIX", "DRAWSTEP", "MOVETO", "LINETO":
		rs1, rs2, ok := decodeRR(ops)
		if !ok {
			return malformed()
		}
		return isa.DecodedInst{Op: mnemonicOp(mnemonic), Rd: -1, Rs1: rs1, Rs2: rs2, PC: pc, Valid: true}, nil

	case "SETCLR":
		if len(ops) != 1 {
			return malformed()
		}
		imm, ok := parseImmediate(ops[0])
		if !ok {
			return malformed()
		}
		return isa.DecodedInst{Op: isa.SETCLR, Rd: -1, Rs1: -1, Rs2: -1, Imm: imm, PC: pc, Valid: true}, nil

	case "CLEARFB":
		return isa.DecodedInst{Op: isa.CLEARFB, Rd: -1, Rs1: -1, Rs2: -1, PC: pc, Valid: true}, nil

	case "NOP":
		return isa.DecodedInst{Op: isa.NOP, Rd: -1, Rs1: -1, Rs2: -1, PC: pc, Valid: true}, nil

	default:
		return unknown, nil
	}
}

func mnemonicOp(m string) isa.Opcode {
	switch m {
	case "ADD":
		return isa.ADD
	case "ADDI":
		return isa.ADDI
	case "SUB":
		return isa.SUB
	case "SUBI":
		return isa.SUBI
	case "MUL":
		return isa.MUL
	case "DIV":
		return isa.DIV
	case "BEQ":
		return isa.BEQ
	case "BLT":
		return isa.BLT
	case "DRAWPIX":
		return isa.DRAWPIX
	case "DRAWSTEP":
		return isa.DRAWSTEP
	case "MOVETO":
		return isa.MOVETO
	case "LINETO":
		return isa.LINETO
	case "SIN":
		return isa.SIN
	case "COS":
		return isa.COS
	default:
		return isa.INVALID
	}
}

// tokenize splits an assembly line on whitespace and commas.
func tokenize(line string) []string {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	return fields
}

// parseRegister parses a register token of the form [xXrR]<digits>. It
// returns -1, true for a missing token (callers pass an empty string to
// mean "operand absent").
func parseRegister(tok string) (int, bool) {
	if tok == "" {
		return -1, true
	}
	if len(tok) < 2 {
		return 0, false
	}
	switch tok[0] {
	case 'x', 'X', 'r', 'R':
	default:
		return 0, false
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n < 0 || n >= isa.NumRegisters {
		return 0, false
	}
	return n, true
}

// parseImmediate accepts decimal, 0x-prefixed hex, and a leading minus.
func parseImmediate(tok string) (int32, bool) {
	v, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		return 0, false
	}
	return int32(v), true
}

func decodeRRR(ops []string) (rd, rs1, rs2 int, ok bool) {
	if len(ops) != 3 {
		return 0, 0, 0, false
	}
	var okRd, okRs1, okRs2 bool
	rd, okRd = parseRegister(ops[0])
	rs1, okRs1 = parseRegister(ops[1])
	rs2, okRs2 = parseRegister(ops[2])
	return rd, rs1, rs2, okRd && okRs1 && okRs2
}

func decodeRR(ops []string) (rs1, rs2 int, ok bool) {
	if len(ops) != 2 {
		return 0, 0, false
	}
	var okRs1, okRs2 bool
	rs1, okRs1 = parseRegister(ops[0])
	rs2, okRs2 = parseRegister(ops[1])
	return rs1, rs2, okRs1 && okRs2
}

func decodeRRI(ops []string) (rd, rs1 int, imm int32, ok bool) {
	if len(ops) != 3 {
		return 0, 0, 0, false
	}
	var okRd, okRs1, okImm bool
	rd, okRd = parseRegister(ops[0])
	rs1, okRs1 = parseRegister(ops[1])
	imm, okImm = parseImmediate(ops[2])
	return rd, rs1, imm, okRd && okRs1 && okImm
}

func decodeBranch(ops []string) (rs1, rs2 int, imm int32, ok bool) {
	if len(ops) != 3 {
		return 0, 0, 0, false
	}
	var okRs1, okRs2, okImm bool
	rs1, okRs1 = parseRegister(ops[0])
	rs2, okRs2 = parseRegister(ops[1])
	imm, okImm = parseImmediate(ops[2])
	return rs1, rs2, imm, okRs1 && okRs2 && okImm
}

// decodeLoadStore accepts either "imm(reg)" as a single token, or
// "imm reg"/"imm, reg" as two whitespace/comma-separated tokens. The
// register operand named here is always the base register (rs1); the
// caller supplies rd or rs2 separately from ops[0].
func decodeLoadStore(ops []string) (regOp, baseReg int, imm int32, ok bool) {
	if len(ops) == 2 && strings.Contains(ops[1], "(") {
		regOp, ok = parseRegister(ops[0])
		if !ok {
			return 0, 0, 0, false
		}
		imm, baseReg, ok = parseMemOperand(ops[1])
		return regOp, baseReg, imm, ok
	}
	if len(ops) == 3 {
		// whitespace-separated "rd imm rs1"
		var okReg, okImm, okBase bool
		regOp, okReg = parseRegister(ops[0])
		imm, okImm = parseImmediate(ops[1])
		baseReg, okBase = parseRegister(ops[2])
		return regOp, baseReg, imm, okReg && okImm && okBase
	}
	return 0, 0, 0, false
}

// parseMemOperand parses "imm(reg)" into (imm, reg).
func parseMemOperand(tok string) (imm int32, reg int, ok bool) {
	open := strings.IndexByte(tok, '(')
	close := strings.IndexByte(tok, ')')
	if open < 0 || close < open {
		return 0, 0, false
	}
	immTok := tok[:open]
	regTok := tok[open+1 : close]
	imm, okImm := parseImmediate(immTok)
	reg, okReg := parseRegister(regTok)
	return imm, reg, okImm && okReg
}

// Package isa defines the instruction set: the opcode space, the 32-bit
// encoded instruction layout, and the decoded instruction representation
// shared by the assembler, both execution drivers, and the trace recorder.
package isa

import "fmt"

// Opcode identifies one of the twenty instructions the processor supports.
// The numeric value is the 6-bit tag stored in bits 26-31 of an encoded
// instruction.
type Opcode uint32

// The following constants enumerate the full opcode space. Up to 64
// opcodes fit in the 6-bit field; we currently use 20 of them.
const (
	ADD Opcode = iota
	ADDI
	SUB
	SUBI
	MUL
	DIV
	LW
	SW
	BEQ
	BLT
	NOP
	DRAWPIX
	DRAWSTEP
	SETCLR
	CLEARFB
	MOVETO
	LINETO
	SIN
	COS
	INVALID
)

var opcodeNames = map[Opcode]string{
	ADD: "ADD", ADDI: "ADDI", SUB: "SUB", SUBI: "SUBI", MUL: "MUL", DIV: "DIV",
	LW: "LW", SW: "SW", BEQ: "BEQ", BLT: "BLT", NOP: "NOP",
	DRAWPIX: "DRAWPIX", DRAWSTEP: "DRAWSTEP", SETCLR: "SETCLR", CLEARFB: "CLEARFB",
	MOVETO: "MOVETO", LINETO: "LINETO", SIN: "SIN", COS: "COS", INVALID: "INVALID",
}

// String implements fmt.Stringer.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("<opcode %d>", uint32(op))
}

// The following constants define the bit layout of a 32-bit encoded
// instruction, MSB to LSB: opcode(6) rd(5) rs1(5) rs2(5) imm(11).
const (
	OpcodeBits = 6
	RegBits    = 5
	ImmBits    = 11

	OpcodeShift = 32 - OpcodeBits
	RdShift     = OpcodeShift - RegBits
	Rs1Shift    = RdShift - RegBits
	Rs2Shift    = Rs1Shift - RegBits

	OpcodeMask = uint32(1<<OpcodeBits - 1)
	RegMask    = uint32(1<<RegBits - 1)
	ImmMask    = uint32(1<<ImmBits - 1)

	// ImmMin and ImmMax bound the two's-complement range of the signed
	// 11-bit immediate field.
	ImmMin = -(1 << (ImmBits - 1))
	ImmMax = 1<<(ImmBits-1) - 1
)

// DecodedInst is the assembler- and pipeline-visible representation of one
// instruction: an opcode plus operands, sign-extended and ready for the
// executor. rd == -1 means "no writeback"; rs1/rs2 == -1 means "read as
// register zero".
type DecodedInst struct {
	Op    Opcode
	Rd    int
	Rs1   int
	Rs2   int
	Imm   int32
	PC    uint32
	Valid bool
}

// EncodedInst is one 32-bit assembled instruction word.
type EncodedInst uint32

// regField clamps an operand index to its wire encoding: absent operands
// (-1) and register zero both encode as 0.
func regField(reg int) uint32 {
	if reg <= 0 {
		return 0
	}
	return uint32(reg) & RegMask
}

// Encode packs a decoded instruction into its 32-bit wire format. The
// caller is responsible for having already range-checked Imm against
// [ImmMin, ImmMax]; Encode itself only masks the low ImmBits.
func Encode(d DecodedInst) EncodedInst {
	var word uint32
	word |= (uint32(d.Op) & OpcodeMask) << OpcodeShift
	word |= regField(d.Rd) << RdShift
	word |= regField(d.Rs1) << Rs1Shift
	word |= regField(d.Rs2) << Rs2Shift
	word |= uint32(d.Imm) & ImmMask
	return EncodedInst(word)
}

// signExtendImm sign-extends the low ImmBits of v using bit (ImmBits-1) as
// the sign bit.
func signExtendImm(v uint32) int32 {
	v &= ImmMask
	signBit := uint32(1) << (ImmBits - 1)
	if v&signBit != 0 {
		v |= ^ImmMask
	}
	return int32(v)
}

// Decode unpacks a 32-bit instruction word. Absent register operands are
// not distinguishable from register zero at this layer (the wire format
// has no room for -1); callers that need "no operand" semantics for rd
// get it from the opcode's operand-form grammar, not from the bit
// pattern. rs1/rs2 are returned as their raw field values, which is
// exactly "read as zero" when the field is 0, matching spec semantics.
func Decode(word EncodedInst, pc uint32) DecodedInst {
	w := uint32(word)
	op := Opcode((w >> OpcodeShift) & OpcodeMask)
	rd := int((w >> RdShift) & RegMask)
	rs1 := int((w >> Rs1Shift) & RegMask)
	rs2 := int((w >> Rs2Shift) & RegMask)
	imm := signExtendImm(w)
	return DecodedInst{
		Op: op, Rd: rd, Rs1: rs1, Rs2: rs2, Imm: imm, PC: pc,
		Valid: op != INVALID,
	}
}

// NumRegisters is the number of general-purpose registers. Register 0 is
// hard-wired to zero.
const NumRegisters = 32

// DataMemWords is the size, in 32-bit words, of data memory.
const DataMemWords = 4096

// CycleLimit protects both drivers against runaway programs.
const CycleLimit = 1_000_000

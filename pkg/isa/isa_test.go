package isa_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/isa"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []isa.DecodedInst{
		{Op: isa.ADD, Rd: 3, Rs1: 1, Rs2: 2},
		{Op: isa.ADDI, Rd: 1, Rs1: 0, Imm: 1023},
		{Op: isa.SUBI, Rd: 2, Rs1: 1, Imm: -1024},
		{Op: isa.BEQ, Rs1: 1, Rs2: 2, Imm: -3},
		{Op: isa.LW, Rd: 1, Rs1: 0, Imm: 0},
		{Op: isa.NOP},
	}

	for _, want := range cases {
		word := isa.Encode(want)
		got := isa.Decode(word, 0)
		assert.Equal(t, want.Op, got.Op)
		assert.Equal(t, want.Imm, got.Imm)
		if want.Rd > 0 {
			assert.Equal(t, want.Rd, got.Rd)
		}
		if want.Rs1 > 0 {
			assert.Equal(t, want.Rs1, got.Rs1)
		}
		if want.Rs2 > 0 {
			assert.Equal(t, want.Rs2, got.Rs2)
		}
	}
}

func TestImmediateSignExtension(t *testing.T) {
	word := isa.Encode(isa.DecodedInst{Op: isa.ADDI, Rd: 1, Rs1: 0, Imm: -1})
	got := isa.Decode(word, 0)
	assert.Equal(t, int32(-1), got.Imm)
}

func TestRegisterFileZeroIsReadOnly(t *testing.T) {
	var rf isa.RegisterFile
	rf.Write(0, 42)
	assert.Equal(t, int32(0), rf.Read(0))
}

func TestRegisterFileAbsentOperandReadsZero(t *testing.T) {
	var rf isa.RegisterFile
	rf.Write(5, 7)
	assert.Equal(t, int32(0), rf.Read(-1))
	assert.Equal(t, int32(7), rf.Read(5))
}

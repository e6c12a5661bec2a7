package executor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/executor"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/fb"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/isa"
)

func TestComputeArithmetic(t *testing.T) {
	res := executor.Compute(isa.DecodedInst{Op: isa.ADD, PC: 0}, 5, 7)
	assert.Equal(t, int32(12), res.ALUResult)
	assert.Equal(t, uint32(1), res.NextPC)
}

func TestComputeDivisionByZero(t *testing.T) {
	res := executor.Compute(isa.DecodedInst{Op: isa.DIV, PC: 0}, 10, 0)
	assert.True(t, res.DivByZero)
	assert.Equal(t, int32(0), res.ALUResult)
}

func TestComputeBranchTaken(t *testing.T) {
	res := executor.Compute(isa.DecodedInst{Op: isa.BEQ, PC: 4, Imm: -3}, 1, 1)
	assert.True(t, res.IsBranch)
	assert.True(t, res.BranchTaken)
	assert.Equal(t, uint32(1), res.TargetPC)
	assert.Equal(t, uint32(1), res.NextPC)
}

func TestComputeBranchNotTaken(t *testing.T) {
	res := executor.Compute(isa.DecodedInst{Op: isa.BLT, PC: 4, Imm: -3}, 5, 1)
	assert.False(t, res.BranchTaken)
	assert.Equal(t, uint32(5), res.NextPC)
}

func TestComputeLoadStoreAddress(t *testing.T) {
	res := executor.Compute(isa.DecodedInst{Op: isa.LW, PC: 0, Imm: 4}, 10, 0)
	assert.True(t, res.IsMemoryOp)
	assert.Equal(t, int32(14), res.MemAddr)
}

func TestApplyMemoryLoadStoreRoundTrip(t *testing.T) {
	var mem [isa.DataMemWords]int32
	_, violation := executor.ApplyMemory(isa.SW, 10, 99, &mem)
	assert.False(t, violation)

	loaded, violation := executor.ApplyMemory(isa.LW, 10, 0, &mem)
	assert.False(t, violation)
	assert.Equal(t, int32(99), loaded)
}

func TestApplyMemoryOutOfRangeIsViolationNotPanic(t *testing.T) {
	var mem [isa.DataMemWords]int32
	_, violation := executor.ApplyMemory(isa.LW, isa.DataMemWords+1, 0, &mem)
	assert.True(t, violation)
}

func TestApplyGraphicsDrawsPixel(t *testing.T) {
	fbDev := fb.New()
	executor.ApplyGraphics(isa.SETCLR, 0, 0, 0x00FF0000, fbDev)
	executor.ApplyGraphics(isa.DRAWPIX, 10, 10, 0, fbDev)
	assert.Equal(t, fb.Color(0xFFFF0000), fbDev.Pixel(10, 10))
}

func TestIsGraphics(t *testing.T) {
	assert.True(t, executor.IsGraphics(isa.DRAWPIX))
	assert.False(t, executor.IsGraphics(isa.ADD))
}

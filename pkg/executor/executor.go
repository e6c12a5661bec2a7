// Package executor implements the ISA semantics: the reference
// arithmetic, memory, control-flow, graphics, and trigonometric behavior
// both drivers (single-cycle and pipelined) execute against.
//
// The package is split into three pure/near-pure pieces on purpose, to
// match the partitioning discipline of spec.md §5 and §9:
//
//   - Compute: pure ALU/branch/trig arithmetic and address calculation.
//     No side effects, safe to call from any stage.
//   - ApplyMemory: the only function allowed to read or write data
//     memory.
//   - ApplyGraphics: the only function allowed to mutate a framebuffer,
//     and only ever called from the single-cycle driver's executor step
//     or the pipelined driver's IO stage.
package executor

import (
	"math"

	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/fb"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/isa"
)

// Result is the outcome of Compute: the ALU result (or target address),
// next-PC, and classification flags the caller uses to decide what else
// to do (memory access, graphics, branch flush).
type Result struct {
	ALUResult   int32
	NextPC      uint32
	IsMemoryOp  bool
	MemAddr     int32 // word index; only meaningful when IsMemoryOp
	IsBranch    bool
	BranchTaken bool
	TargetPC    uint32
	DivByZero   bool
}

// Compute executes the ALU/branch/trig semantics of spec.md §4.D. It
// never touches data memory or the framebuffer: LW/SW only get as far as
// address calculation here, and graphics opcodes return a zero
// ALUResult, leaving the actual pixel work to ApplyGraphics.
func Compute(d isa.DecodedInst, rs1Val, rs2Val int32) Result {
	r := Result{NextPC: d.PC + 1}

	switch d.Op {
	case isa.ADD:
		r.ALUResult = rs1Val + rs2Val
	case isa.ADDI:
		r.ALUResult = rs1Val + d.Imm
	case isa.SUB:
		r.ALUResult = rs1Val - rs2Val
	case isa.SUBI:
		r.ALUResult = rs1Val - d.Imm
	case isa.MUL:
		r.ALUResult = rs1Val * rs2Val
	case isa.DIV:
		if rs2Val == 0 {
			r.DivByZero = true
			r.ALUResult = 0
		} else {
			r.ALUResult = rs1Val / rs2Val
		}

	case isa.LW, isa.SW:
		r.IsMemoryOp = true
		r.MemAddr = rs1Val + d.Imm
		if d.Op == isa.SW {
			r.ALUResult = r.MemAddr
		}

	case isa.BEQ:
		r.IsBranch = true
		if rs1Val == rs2Val {
			r.BranchTaken = true
			r.TargetPC = uint32(int64(d.PC) + int64(d.Imm))
		} else {
			r.TargetPC = d.PC + 1
		}
		r.NextPC = r.TargetPC
	case isa.BLT:
		r.IsBranch = true
		if rs1Val < rs2Val {
			r.BranchTaken = true
			r.TargetPC = uint32(int64(d.PC) + int64(d.Imm))
		} else {
			r.TargetPC = d.PC + 1
		}
		r.NextPC = r.TargetPC

	case isa.SIN:
		r.ALUResult = int32(math.Round(math.Sin(float64(rs1Val)*math.Pi/180) * 100))
	case isa.COS:
		r.ALUResult = int32(math.Round(math.Cos(float64(rs1Val)*math.Pi/180) * 100))

	case isa.SETCLR, isa.CLEARFB, isa.DRAWPIX, isa.DRAWSTEP, isa.MOVETO, isa.LINETO:
		// Graphics opcodes carry no ALU result; ApplyGraphics does the
		// actual work using the raw operand values.

	case isa.NOP, isa.INVALID:
		// No effect.
	}

	return r
}

// ApplyMemory performs the data-memory side effect for LW/SW using the
// address Compute already calculated. Out-of-range addresses are
// reported back as a violation and otherwise skipped: the driver still
// advances PC and registers normally (spec.md §7).
func ApplyMemory(op isa.Opcode, addr int32, rs2Val int32, dataMem *[isa.DataMemWords]int32) (loaded int32, violation bool) {
	if addr < 0 || int(addr) >= isa.DataMemWords {
		return 0, true
	}
	switch op {
	case isa.LW:
		return dataMem[addr], false
	case isa.SW:
		dataMem[addr] = rs2Val
		return 0, false
	default:
		return 0, false
	}
}

// ApplyGraphics performs the framebuffer side effect for a graphics
// opcode. It must only ever be called by the single-cycle driver's
// executor step or the pipelined driver's IO stage (spec.md §5, §9).
func ApplyGraphics(op isa.Opcode, rs1Val, rs2Val, imm int32, fbDev *fb.Framebuffer) {
	switch op {
	case isa.DRAWPIX:
		fbDev.DrawPixel(int(rs1Val)&0xFFFF, int(rs2Val)&0xFFFF)
	case isa.DRAWSTEP:
		fbDev.Step(int(rs1Val), int(rs2Val))
	case isa.MOVETO:
		fbDev.MoveTo(int(rs1Val)&0xFFFF, int(rs2Val)&0xFFFF)
	case isa.LINETO:
		fbDev.LineTo(int(rs1Val)&0xFFFF, int(rs2Val)&0xFFFF)
	case isa.SETCLR:
		fbDev.SetColor(0xFF000000 | fb.Color(imm)&0x00FFFFFF)
	case isa.CLEARFB:
		fbDev.Clear()
	}
}

// IsGraphics reports whether op has a framebuffer side effect.
func IsGraphics(op isa.Opcode) bool {
	switch op {
	case isa.DRAWPIX, isa.DRAWSTEP, isa.MOVETO, isa.LINETO, isa.SETCLR, isa.CLEARFB:
		return true
	default:
		return false
	}
}

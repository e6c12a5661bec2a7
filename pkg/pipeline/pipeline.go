// Package pipeline implements the six-stage in-order pipelined driver
// (spec.md §4.F): IF, ID, EX, IO, MEM, WB, connected by five pipeline
// registers. Each cycle runs the stages in reverse order (WB, MEM, IO,
// EX, ID, IF) so that a stage can see values its downstream neighbors
// already produced this same cycle — this is what lets EX forward from
// IO/MEM and MEM/WB without a one-cycle lag, and what lets ID read a
// register WB just wrote.
//
// The pipeline must reach the exact same final register file, data
// memory, and framebuffer as package singlecycle for any program; that
// equivalence, not raw throughput, is the point of this package.
package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/asm"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/executor"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/fb"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/isa"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/trace"
)

// ifidLatch is the IF/ID pipeline register.
type ifidLatch struct {
	Valid bool
	Text  string
	PC    uint32
}

// idexLatch is the ID/EX pipeline register. Rs1Val/Rs2Val are the values
// read from the register file at decode time; Dec.Rs1/Dec.Rs2 are kept
// alongside them so EX can look them up in the forwarding tables by
// index.
type idexLatch struct {
	Valid  bool
	Dec    isa.DecodedInst
	Rs1Val int32
	Rs2Val int32
}

// exioLatch is the EX/IO pipeline register.
type exioLatch struct {
	Valid       bool
	Dec         isa.DecodedInst
	ALUResult   int32
	MemAddr     int32
	IsMemoryOp  bool
	BranchTaken bool
	TargetPC    uint32
	Rs1Val      int32
	Rs2Val      int32 // store value for SW
}

// iomemLatch is the IO/MEM pipeline register.
type iomemLatch struct {
	Valid      bool
	Dec        isa.DecodedInst
	ALUResult  int32
	MemAddr    int32
	IsMemoryOp bool
	Rs2Val     int32
}

// memwbLatch is the MEM/WB pipeline register.
type memwbLatch struct {
	Valid     bool
	Dec       isa.DecodedInst
	Rd        int
	WriteData int32
}

// forward resolves one EX-stage source operand, newest producer first:
// IO/MEM.alu_result, then MEM/WB.write_data, then the MEM/WB entry WB
// retired this cycle (its register write landed after this instruction's
// ID read), then the value ID already read from the register file.
// Register 0 (and the decoder's "absent operand" sentinel, -1) never
// forwards. The returned trace.HazardType classifies the resolution for
// trace output only (see original_source/include/hazard.h); it has no
// effect on the value chosen.
func forward(srcIdx int, io iomemLatch, mem memwbLatch, wb memwbLatch, regVal int32) (int32, trace.HazardType) {
	if srcIdx <= 0 {
		return regVal, trace.HazardNone
	}
	if io.Valid && io.Dec.Rd == srcIdx {
		return io.ALUResult, trace.HazardRAW
	}
	if mem.Valid && mem.Rd == srcIdx {
		return mem.WriteData, trace.HazardRAW
	}
	if wb.Valid && wb.Rd == srcIdx {
		return wb.WriteData, trace.HazardRAW
	}
	return regVal, trace.HazardNone
}

// Machine owns the architectural state one run mutates.
type Machine struct {
	Regs isa.RegisterFile
	Mem  [isa.DataMemWords]int32
	FB   *fb.Framebuffer

	Log *logrus.Logger
}

// New returns a Machine with a fresh framebuffer and the package-level
// logrus logger.
func New() *Machine {
	return &Machine{FB: fb.New(), Log: logrus.StandardLogger()}
}

// RunResult summarizes a completed run. Retired counts instructions that
// reached WB with Dec.Valid set, matching package singlecycle's
// definition so the two drivers' counts stay comparable for any program
// (spec.md §8 invariant 3).
type RunResult struct {
	Cycles     int
	Retired    int
	Terminated bool // false means the cycle cap was hit
}

// Run drives prog through the pipeline until IF has produced six
// consecutive bubbles (long enough to drain every in-flight
// instruction) or the cycle cap is reached.
func (m *Machine) Run(prog *asm.Program, rec *trace.Recorder) RunResult {
	var ifid ifidLatch
	var idex idexLatch
	var exio exioLatch
	var iomem iomemLatch
	var memwb memwbLatch

	pc := uint32(0)
	cycle := 0
	retired := 0
	drain := 0

	for cycle < isa.CycleLimit {
		// --- WB: consume MEM/WB from last cycle. ---
		if memwb.Valid {
			if memwb.Rd > 0 {
				m.Regs.Write(memwb.Rd, memwb.WriteData)
			}
			if memwb.Dec.Valid {
				retired++
			}
		}

		// --- MEM: consume IO/MEM from last cycle, publish new MEM/WB. ---
		var memwbNext memwbLatch
		if iomem.Valid {
			memwbNext.Valid = true
			memwbNext.Dec = iomem.Dec
			rd := iomem.Dec.Rd
			writeData := iomem.ALUResult
			if iomem.IsMemoryOp {
				loaded, violation := executor.ApplyMemory(iomem.Dec.Op, iomem.MemAddr, iomem.Rs2Val, &m.Mem)
				if violation {
					m.Log.WithFields(logrus.Fields{"pc": iomem.Dec.PC, "addr": iomem.MemAddr}).
						Warn("data memory access out of range, skipping")
				}
				if iomem.Dec.Op == isa.LW {
					writeData = loaded
				} else {
					rd = -1
				}
			}
			memwbNext.Rd = rd
			memwbNext.WriteData = writeData
		}

		// --- IO: consume EX/IO from last cycle, publish new IO/MEM. ---
		var iomemNext iomemLatch
		if exio.Valid {
			iomemNext = iomemLatch{
				Valid: true, Dec: exio.Dec, ALUResult: exio.ALUResult,
				MemAddr: exio.MemAddr, IsMemoryOp: exio.IsMemoryOp, Rs2Val: exio.Rs2Val,
			}
			if executor.IsGraphics(exio.Dec.Op) {
				executor.ApplyGraphics(exio.Dec.Op, exio.Rs1Val, exio.Rs2Val, exio.Dec.Imm, m.FB)
			}
		}

		// --- EX: consume ID/EX from last cycle, publish new EX/IO. ---
		var exioNext exioLatch
		var exHazard trace.HazardType
		if idex.Valid {
			rs1Val, h1 := forward(idex.Dec.Rs1, iomemNext, memwbNext, memwb, idex.Rs1Val)
			rs2Val, h2 := forward(idex.Dec.Rs2, iomemNext, memwbNext, memwb, idex.Rs2Val)
			if h1 != trace.HazardNone {
				exHazard = h1
			} else {
				exHazard = h2
			}
			res := executor.Compute(idex.Dec, rs1Val, rs2Val)
			if res.DivByZero {
				m.Log.WithField("pc", idex.Dec.PC).Warn("division by zero, result forced to 0")
			}
			exioNext = exioLatch{
				Valid: true, Dec: idex.Dec, ALUResult: res.ALUResult, MemAddr: res.MemAddr,
				IsMemoryOp: res.IsMemoryOp, BranchTaken: res.BranchTaken, TargetPC: res.TargetPC,
				Rs1Val: rs1Val, Rs2Val: rs2Val,
			}
		}

		// --- ID: consume IF/ID from last cycle, publish new ID/EX. ---
		var idexNext idexLatch
		var stall bool
		if ifid.Valid {
			// err is always nil here; see singlecycle.Machine.Run.
			dec, _ := asm.DecodeLine(ifid.Text, ifid.PC)
			if idex.Valid && idex.Dec.Op == isa.LW && idex.Dec.Rd > 0 &&
				(dec.Rs1 == idex.Dec.Rd || dec.Rs2 == idex.Dec.Rd) {
				stall = true
			} else {
				idexNext = idexLatch{
					Valid: true, Dec: dec,
					Rs1Val: m.Regs.Read(dec.Rs1), Rs2Val: m.Regs.Read(dec.Rs2),
				}
			}
		}

		// --- IF: fetch next instruction, or stall, or flush. ---
		var ifidNext ifidLatch
		branchFlush := exioNext.Valid && exioNext.BranchTaken
		switch {
		case branchFlush:
			pc = exioNext.TargetPC
			idexNext = idexLatch{} // flush: two bubbles (this one, and the IF/ID bubble below)
		case stall:
			ifidNext = ifid // freeze PC and IF/ID, re-issue the same decode next cycle
		default:
			if int(pc) < len(prog.Lines) {
				ifidNext = ifidLatch{Valid: true, Text: prog.Lines[pc], PC: pc}
				pc++
			}
		}

		idHazard := trace.HazardNone
		if stall {
			idHazard = trace.HazardLoadUse
		}
		ifHazard := trace.HazardNone
		if branchFlush {
			ifHazard = trace.HazardBranch
		}

		if rec != nil {
			rec.Record(buildCycleTrace(uint32(cycle), memwb, memwbNext, iomemNext, exioNext, exHazard, idexNext, idHazard, ifidNext, ifHazard, m.Regs))
		}

		if ifidNext.Valid {
			drain = 0
		} else {
			drain++
		}

		ifid, idex, exio, iomem, memwb = ifidNext, idexNext, exioNext, iomemNext, memwbNext
		cycle++

		if drain >= 6 {
			break
		}
	}

	return RunResult{Cycles: cycle, Retired: retired, Terminated: drain >= 6}
}

func buildCycleTrace(
	cycle uint32,
	memwbPrev, memwbNew memwbLatch,
	iomemNew iomemLatch,
	exioNew exioLatch, exHazard trace.HazardType,
	idexNew idexLatch, idHazard trace.HazardType,
	ifidNew ifidLatch, ifHazard trace.HazardType,
	regs isa.RegisterFile,
) trace.CycleTrace {
	stages := map[trace.StageName]trace.StageSnapshot{
		trace.WB:  {Valid: memwbPrev.Valid, PC: memwbPrev.Dec.PC, Op: memwbPrev.Dec.Op, Rd: memwbPrev.Rd, Result: memwbPrev.WriteData},
		trace.MEM: {Valid: memwbNew.Valid, PC: memwbNew.Dec.PC, Op: memwbNew.Dec.Op, Rd: memwbNew.Rd, Result: memwbNew.WriteData},
		trace.IO:  {Valid: iomemNew.Valid, PC: iomemNew.Dec.PC, Op: iomemNew.Dec.Op, Rd: iomemNew.Dec.Rd, Result: iomemNew.ALUResult},
		trace.EX:  {Valid: exioNew.Valid, PC: exioNew.Dec.PC, Op: exioNew.Dec.Op, Rd: exioNew.Dec.Rd, Rs1: exioNew.Dec.Rs1, Rs2: exioNew.Dec.Rs2, Result: exioNew.ALUResult, Hazard: exHazard},
		trace.ID:  {Valid: idexNew.Valid, PC: idexNew.Dec.PC, Op: idexNew.Dec.Op, Rd: idexNew.Dec.Rd, Rs1: idexNew.Dec.Rs1, Rs2: idexNew.Dec.Rs2, Imm: idexNew.Dec.Imm, Hazard: idHazard},
		trace.IF:  {Valid: ifidNew.Valid, Text: ifidNew.Text, PC: ifidNew.PC, Hazard: ifHazard},
	}
	return trace.CycleTrace{Cycle: cycle, Stages: stages, Regs: regs}
}

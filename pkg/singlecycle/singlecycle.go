// Package singlecycle implements the reference single-cycle driver
// (spec.md §4.E): one instruction per cycle, straight fetch-decode-
// execute-writeback, no hazards to resolve. Its final register file,
// data memory, and framebuffer are the ground truth the pipelined
// driver (package pipeline) is checked against.
package singlecycle

import (
	"github.com/sirupsen/logrus"

	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/asm"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/executor"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/fb"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/isa"
	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/trace"
)

// Machine owns the architectural state one run mutates: the register
// file, data memory, and framebuffer. A fresh Machine should be used for
// every run; it is not safe to reuse after Run returns.
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

// RunResult summarizes a completed run.
type RunResult struct {
	Cycles     int
	Retired    int
	Terminated bool // false means the cycle cap was hit
}

// Run executes prog to completion (PC running off the end of
// instruction memory) or until isa.CycleLimit cycles have elapsed. If
// rec is non-nil, one trace.CycleTrace is recorded per cycle.
func (m *Machine) Run(prog *asm.Program, rec *trace.Recorder) RunResult {
	pc := uint32(0)
	cycle := 0
	retired := 0

	for int(pc) < len(prog.Lines) && cycle < isa.CycleLimit {
		// err is always nil here: pass2 already aborted assembly on any
		// malformed operand or out-of-range register, so only an
		// unrecognized mnemonic (Valid == false, err == nil) can reach
		// the driver.
		dec, _ := asm.DecodeLine(prog.Lines[pc], pc)
		if !dec.Valid {
			m.Log.WithField("pc", pc).Warn("unknown instruction, executing as NOP")
		}

		rs1Val := m.Regs.Read(dec.Rs1)
		rs2Val := m.Regs.Read(dec.Rs2)
		res := executor.Compute(dec, rs1Val, rs2Val)

		writeValue := res.ALUResult
		switch {
		case res.IsMemoryOp:
			loaded, violation := executor.ApplyMemory(dec.Op, res.MemAddr, rs2Val, &m.Mem)
			if violation {
				m.Log.WithFields(logrus.Fields{"pc": pc, "addr": res.MemAddr}).
					Warn("data memory access out of range, skipping")
			}
			if dec.Op == isa.LW {
				writeValue = loaded
			}
		case res.DivByZero:
			m.Log.WithField("pc", pc).Warn("division by zero, result forced to 0")
		case executor.IsGraphics(dec.Op):
			executor.ApplyGraphics(dec.Op, rs1Val, rs2Val, dec.Imm, m.FB)
		}

		if dec.Rd > 0 {
			m.Regs.Write(dec.Rd, writeValue)
		}
		if dec.Valid {
			retired++
		}

		if rec != nil {
			rec.Record(trace.CycleTrace{
				Cycle: uint32(cycle),
				Stages: map[trace.StageName]trace.StageSnapshot{
					trace.EXEC: {
						Valid: true, Text: prog.Lines[pc], PC: pc,
						Op: dec.Op, Rd: dec.Rd, Rs1: dec.Rs1, Rs2: dec.Rs2,
						Imm: dec.Imm, Result: writeValue,
					},
				},
				Regs: m.Regs,
			})
		}

		pc = res.NextPC
		cycle++
	}

	terminated := int(pc) >= len(prog.Lines)
	if !terminated {
		m.Log.WithField("cycles", cycle).Warn("cycle limit reached, terminating run")
	}

	return RunResult{Cycles: cycle, Retired: retired, Terminated: terminated}
}

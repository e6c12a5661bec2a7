// Package trace implements the cycle-by-cycle trace recorder (spec.md
// §4.G): a per-cycle snapshot of every pipeline stage plus the register
// file, dumped as human-readable text at program end. It sits outside
// the correctness path — nothing here feeds back into execution.
package trace

import (
	"fmt"
	"io"
	"strings"

	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/isa"
)

// StageName identifies one of the six pipeline stages, or the single
// synthetic stage the single-cycle driver reports through.
type StageName string

const (
	IF   StageName = "IF"
	ID   StageName = "ID"
	EX   StageName = "EX"
	IO   StageName = "IO"
	MEM  StageName = "MEM"
	WB   StageName = "WB"
	EXEC StageName = "EXEC" // single-cycle driver's one stage per cycle
)

// HazardType classifies the hazard a stage snapshot was involved in,
// carried purely for trace/debugging output (original_source/include/
// hazard.h's NONE/RAW/LOAD_USE/BRANCH labels): RAW on an EX snapshot
// whose operand was forwarded, LOAD_USE on an ID snapshot during a
// load-use stall, BRANCH on an IF snapshot during a taken-branch flush.
// It never feeds back into which value forwarding selects.
type HazardType string

const (
	HazardNone     HazardType = ""
	HazardRAW      HazardType = "RAW"
	HazardLoadUse  HazardType = "LOAD_USE"
	HazardBranch   HazardType = "BRANCH"
)

// StageSnapshot is the recorded state of one stage during one cycle.
type StageSnapshot struct {
	Valid  bool
	Text   string
	PC     uint32
	Op     isa.Opcode
	Rd     int
	Rs1    int
	Rs2    int
	Imm    int32
	Result int32
	Hazard HazardType
}

func (s StageSnapshot) format() string {
	if !s.Valid {
		return "bubble"
	}
	suffix := ""
	if s.Hazard != HazardNone {
		suffix = fmt.Sprintf(" [%s]", s.Hazard)
	}
	if s.Text != "" {
		return fmt.Sprintf("%s (pc=%d)%s", s.Text, s.PC, suffix)
	}
	return fmt.Sprintf("%s rd=%d rs1=%d rs2=%d imm=%d result=%d (pc=%d)%s",
		s.Op, s.Rd, s.Rs1, s.Rs2, s.Imm, s.Result, s.PC, suffix)
}

// CycleTrace is one cycle's worth of stage snapshots plus the register
// file state after the cycle completed.
type CycleTrace struct {
	Cycle  uint32
	Stages map[StageName]StageSnapshot
	Regs   isa.RegisterFile
}

// Recorder accumulates CycleTrace entries across a run.
type Recorder struct {
	cycles []CycleTrace
	order  []StageName
}

// NewRecorder returns a recorder that will print stages in the given
// order (e.g. IF, ID, EX, IO, MEM, WB for the pipeline, or just EXEC for
// the single-cycle driver).
func NewRecorder(order ...StageName) *Recorder {
	return &Recorder{order: order}
}

// Record appends one cycle's snapshot.
func (r *Recorder) Record(ct CycleTrace) {
	r.cycles = append(r.cycles, ct)
}

// Len returns the number of recorded cycles.
func (r *Recorder) Len() int {
	return len(r.cycles)
}

// WriteText dumps the whole trace as ASCII text, one block per cycle,
// stage by stage, in the order given to NewRecorder.
func (r *Recorder) WriteText(w io.Writer) error {
	bw := &strings.Builder{}
	fmt.Fprintln(bw, strings.Repeat("=", 47))
	fmt.Fprintln(bw, "         CYCLE-BY-CYCLE EXECUTION TRACE")
	fmt.Fprintln(bw, strings.Repeat("=", 47))
	fmt.Fprintln(bw)

	for _, ct := range r.cycles {
		fmt.Fprintf(bw, "--- Cycle %d ---\n", ct.Cycle)
		for _, stage := range r.order {
			snap := ct.Stages[stage]
			fmt.Fprintf(bw, "  %s: %s\n", stage, snap.format())
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, strings.Repeat("=", 47))
	fmt.Fprintf(bw, "Total cycles: %d\n", len(r.cycles))
	fmt.Fprintln(bw, strings.Repeat("=", 47))

	_, err := io.WriteString(w, bw.String())
	return err
}

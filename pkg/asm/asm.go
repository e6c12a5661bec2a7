// Package asm contains the two-pass assembler for the processor's
// instruction set: pass 1 collects label addresses, pass 2 emits cleaned
// instruction text and the corresponding encoded 32-bit words.
//
// See the documentation of package isa for the instruction set and
// encoded instruction layout.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abdulMueedWaheed/Application-Specific-Processor-ASP-Simulator-for-CG/pkg/isa"
)

// AssembleError carries line context for a fatal assembly failure.
type AssembleError struct {
	Line int
	Err  error
}

func (e *AssembleError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Err)
}

func (e *AssembleError) Unwrap() error {
	return e.Err
}

// Program is the assembler's output: instruction memory in both of its
// forms (cleaned text, for re-parsing at runtime, and encoded words, for
// wire-format consumers) plus the label table pass 1 built. The two forms
// agree except for non-branch immediates wider than the 11-bit field,
// which the encoded word holds truncated to their low 11 bits (see pass2).
type Program struct {
	Lines  []string
	Words  []isa.EncodedInst
	Labels *LabelTable
}

// Assemble runs the two-pass assembler over r.
func Assemble(r io.Reader) (*Program, error) {
	rawLines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	labels, instrLines, err := pass1(rawLines)
	if err != nil {
		return nil, err
	}

	lines, words, err := pass2(instrLines, labels)
	if err != nil {
		return nil, err
	}

	return &Program{Lines: lines, Words: words, Labels: labels}, nil
}

type numberedLine struct {
	lineno int
	text   string
}

func readLines(r io.Reader) ([]numberedLine, error) {
	scanner := bufio.NewScanner(r)
	var out []numberedLine
	lineno := 0
	for scanner.Scan() {
		lineno++
		out = append(out, numberedLine{lineno: lineno, text: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// cleanLine trims whitespace and strips a trailing "# comment"; it
// returns "" for blank or comment-only lines.
func cleanLine(text string) string {
	if idx := strings.IndexByte(text, '#'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// pass1 walks the source once, tracking a running instruction counter,
// and returns the completed label table plus the list of lines that
// contribute an instruction (with any "LABEL:" prefix already stripped
// and the original line number preserved for error reporting).
func pass1(rawLines []numberedLine) (*LabelTable, []numberedLine, error) {
	labels := NewLabelTable()
	var instrLines []numberedLine
	pc := 0

	for _, nl := range rawLines {
		trimmed := cleanLine(nl.text)
		if trimmed == "" {
			continue
		}

		if idx := strings.IndexByte(trimmed, ':'); idx >= 0 {
			name := strings.TrimSpace(trimmed[:idx])
			rest := strings.TrimSpace(trimmed[idx+1:])
			if rest == "" {
				// Label-only line: record it, do not advance pc.
				if err := labels.Define(name, pc); err != nil {
					return nil, nil, &AssembleError{Line: nl.lineno, Err: err}
				}
				continue
			}
			// "LABEL: <instruction>" — record the label, then count the
			// trailing instruction exactly once.
			if err := labels.Define(name, pc); err != nil {
				return nil, nil, &AssembleError{Line: nl.lineno, Err: err}
			}
			instrLines = append(instrLines, numberedLine{lineno: nl.lineno, text: rest})
			pc++
			continue
		}

		instrLines = append(instrLines, numberedLine{lineno: nl.lineno, text: trimmed})
		pc++
	}

	return labels, instrLines, nil
}

// branchMnemonics resolve a third operand that may be a label instead of
// a numeric immediate.
var branchMnemonics = map[string]bool{"BEQ": true, "BLT": true}

// pass2 emits exactly the instruction-bearing lines collected in pass 1,
// resolving any label operand of BEQ/BLT into a PC-relative numeric
// immediate so that the cleaned text and the encoded word stay
// consistent and the runtime decoder never needs the label table.
//
// Only the resolved branch offset is range-checked against the 11-bit
// encoded immediate field. Other immediates (notably SETCLR's 24-bit
// color payload) legitimately exceed 11 bits; both drivers execute off
// the cleaned text form, so EncodedInst is a best-effort wire artifact
// for those opcodes, not the runtime's source of truth (spec.md §6).
func pass2(instrLines []numberedLine, labels *LabelTable) ([]string, []isa.EncodedInst, error) {
	lines := make([]string, 0, len(instrLines))
	words := make([]isa.EncodedInst, 0, len(instrLines))

	for pc, nl := range instrLines {
		resolved, branchImm, isBranch, err := resolveBranchLabel(nl.text, pc, labels)
		if err != nil {
			return nil, nil, &AssembleError{Line: nl.lineno, Err: err}
		}
		if isBranch && (branchImm < isa.ImmMin || branchImm > isa.ImmMax) {
			return nil, nil, &AssembleError{Line: nl.lineno, Err: fmt.Errorf("%w: branch offset %d", ErrImmediateOverflow, branchImm)}
		}

		dec, err := DecodeLine(resolved, uint32(pc))
		if err != nil {
			return nil, nil, &AssembleError{Line: nl.lineno, Err: err}
		}
		lines = append(lines, resolved)
		words = append(words, isa.Encode(dec))
	}

	return lines, words, nil
}

// resolveBranchLabel rewrites a BEQ/BLT line's trailing label operand (if
// any) into its PC-relative numeric immediate, and reports that offset
// back to the caller for range checking. Non-branch lines return
// isBranch == false; branch lines whose third operand already parses as
// a number are returned unchanged but still reported for range checking.
func resolveBranchLabel(text string, pc int, labels *LabelTable) (resolved string, offset int32, isBranch bool, err error) {
	fields := tokenize(text)
	if len(fields) != 4 || !branchMnemonics[strings.ToUpper(fields[0])] {
		return text, 0, false, nil
	}

	last := fields[3]
	if imm, perr := strconv.ParseInt(last, 0, 64); perr == nil {
		return text, int32(imm), true, nil
	}

	target, ok := labels.Lookup(last)
	if !ok {
		return "", 0, true, fmt.Errorf("%w: %q", ErrUnknownLabel, last)
	}
	offset = int32(target - pc)
	resolved = fmt.Sprintf("%s %s, %s, %d", fields[0], fields[1], fields[2], offset)
	return resolved, offset, true, nil
}

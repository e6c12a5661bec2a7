package asm

import "errors"

// The following sentinel errors are returned (possibly wrapped with
// fmt.Errorf's %w) by the assembler and decoder.
var (
	// ErrUnknownLabel indicates a branch or reference to a label that was
	// never defined in pass 1.
	ErrUnknownLabel = errors.New("asm: unknown label")

	// ErrMalformedOperand indicates an operand could not be parsed for
	// the instruction's grammar.
	ErrMalformedOperand = errors.New("asm: malformed operand")

	// ErrImmediateOverflow indicates a resolved immediate does not fit
	// in the signed 11-bit immediate field.
	ErrImmediateOverflow = errors.New("asm: immediate out of range")

	// ErrTooManyInstructions indicates the source produced more
	// instructions than fit in instruction memory addressing. Assemble
	// places no limit on the instruction count and never returns it.
	ErrTooManyInstructions = errors.New("asm: too many instructions")

	// ErrDuplicateLabel indicates the same label name was defined twice.
	ErrDuplicateLabel = errors.New("asm: duplicate label")
)

package isa

// RegisterFile is the 32-entry signed 32-bit general-purpose register
// file. Register 0 is hard-wired to zero: writes to it are silently
// dropped, matching spec.md §3's invariant.
//
// Each driver (single-cycle, pipelined) owns its own RegisterFile value
// so that two drivers can run side by side for the equivalence property
// in spec.md §8 (design note in spec.md §9).
type RegisterFile [NumRegisters]int32

// Read returns the value of register r. A negative index (the decoder's
// "absent operand" sentinel) reads as zero, same as register 0.
func (rf *RegisterFile) Read(r int) int32 {
	if r <= 0 || r >= NumRegisters {
		return 0
	}
	return rf[r]
}

// Write stores value into register r, except that writes to register 0
// (or an out-of-range/absent index) are silently dropped.
func (rf *RegisterFile) Write(r int, value int32) {
	if r <= 0 || r >= NumRegisters {
		return
	}
	rf[r] = value
}

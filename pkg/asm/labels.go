package asm

import "fmt"

// Label is one entry of the label table: a name bound to an instruction
// address (an index into instruction memory, not a byte offset).
type Label struct {
	Name    string
	Address int
}

// LabelTable is an ordered, name-unique set of label entries built during
// assembler pass 1.
type LabelTable struct {
	entries []Label
	index   map[string]int
}

// NewLabelTable returns an empty label table.
func NewLabelTable() *LabelTable {
	return &LabelTable{index: make(map[string]int)}
}

// Define records a new label at the given instruction address. It returns
// ErrDuplicateLabel if the name was already bound.
func (lt *LabelTable) Define(name string, address int) error {
	if _, exists := lt.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateLabel, name)
	}
	lt.index[name] = len(lt.entries)
	lt.entries = append(lt.entries, Label{Name: name, Address: address})
	return nil
}

// Lookup returns the address bound to name, if any.
func (lt *LabelTable) Lookup(name string) (int, bool) {
	i, ok := lt.index[name]
	if !ok {
		return 0, false
	}
	return lt.entries[i].Address, true
}

// Entries returns the label table contents in definition order.
func (lt *LabelTable) Entries() []Label {
	return lt.entries
}

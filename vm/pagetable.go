package vm

import (
	"encoding/json"
	"fmt"
)

// A PageTableEntry records whether a logical page is resident and, if so, in
// which frame. The frame of an unassigned entry is always zero and must not
// be read.
type PageTableEntry struct {
	Page     uint64
	Assigned bool
	Frame    uint64
}

// FrameNumber returns the frame that holds the page. The bool return value
// indicates if the page is resident.
func (e PageTableEntry) FrameNumber() (uint64, bool) {
	return e.Frame, e.Assigned
}

// MarshalJSON renders the frame as null when the page is not resident.
func (e PageTableEntry) MarshalJSON() ([]byte, error) {
	var frame *uint64
	if e.Assigned {
		f := e.Frame
		frame = &f
	}

	return json.Marshal(struct {
		Page     uint64  `json:"page"`
		Assigned bool    `json:"assigned"`
		Frame    *uint64 `json:"frame"`
	}{e.Page, e.Assigned, frame})
}

// A PageTable maps every logical page to the frame that holds it. Its size is
// fixed at creation.
type PageTable struct {
	entries []PageTableEntry
}

// NewPageTable creates a page table with numPages unassigned entries.
func NewPageTable(numPages uint64) *PageTable {
	pt := &PageTable{
		entries: make([]PageTableEntry, numPages),
	}
	pt.clear()

	return pt
}

// Len returns the number of entries.
func (pt *PageTable) Len() uint64 {
	return uint64(len(pt.entries))
}

// Lookup returns the frame of the given page. The bool return value indicates
// if the page is resident.
func (pt *PageTable) Lookup(page uint64) (uint64, bool) {
	pt.pageMustBeInRange(page)

	return pt.entries[page].FrameNumber()
}

// Entry returns a copy of the entry of the given page.
func (pt *PageTable) Entry(page uint64) PageTableEntry {
	pt.pageMustBeInRange(page)

	return pt.entries[page]
}

// Entries returns a copy of all the entries, ordered by page number.
func (pt *PageTable) Entries() []PageTableEntry {
	entries := make([]PageTableEntry, len(pt.entries))
	copy(entries, pt.entries)

	return entries
}

func (pt *PageTable) assign(page, frame uint64) {
	pt.pageMustBeInRange(page)

	if pt.entries[page].Assigned {
		panic(fmt.Sprintf("page %d is already assigned", page))
	}

	pt.entries[page] = PageTableEntry{Page: page, Assigned: true, Frame: frame}
}

func (pt *PageTable) clear() {
	for i := range pt.entries {
		pt.entries[i] = PageTableEntry{Page: uint64(i)}
	}
}

func (pt *PageTable) pageMustBeInRange(page uint64) {
	if page >= uint64(len(pt.entries)) {
		panic(fmt.Sprintf("page %d out of range [0, %d)",
			page, len(pt.entries)))
	}
}

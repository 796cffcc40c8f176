package vm

import (
	"encoding/json"
	"fmt"
)

// A FrameTableEntry records whether a physical frame holds a page and which.
// The page of an unoccupied entry is always zero and must not be read.
type FrameTableEntry struct {
	Frame    uint64
	Occupied bool
	Page     uint64
}

// PageNumber returns the page held in the frame. The bool return value
// indicates if the frame is occupied.
func (e FrameTableEntry) PageNumber() (uint64, bool) {
	return e.Page, e.Occupied
}

// MarshalJSON renders the page as null when the frame is free.
func (e FrameTableEntry) MarshalJSON() ([]byte, error) {
	var page *uint64
	if e.Occupied {
		p := e.Page
		page = &p
	}

	return json.Marshal(struct {
		Frame    uint64  `json:"frame"`
		Occupied bool    `json:"occupied"`
		Page     *uint64 `json:"page"`
	}{e.Frame, e.Occupied, page})
}

// A FrameTable is the inverse of the PageTable: it maps every physical frame
// to the page it holds.
type FrameTable struct {
	entries []FrameTableEntry
}

// NewFrameTable creates a frame table with numFrames free entries.
func NewFrameTable(numFrames uint64) *FrameTable {
	ft := &FrameTable{
		entries: make([]FrameTableEntry, numFrames),
	}
	ft.clear()

	return ft
}

// Len returns the number of frames.
func (ft *FrameTable) Len() uint64 {
	return uint64(len(ft.entries))
}

// Lookup returns the page held in the given frame. The bool return value
// indicates if the frame is occupied.
func (ft *FrameTable) Lookup(frame uint64) (uint64, bool) {
	ft.frameMustBeInRange(frame)

	return ft.entries[frame].PageNumber()
}

// Entry returns a copy of the entry of the given frame.
func (ft *FrameTable) Entry(frame uint64) FrameTableEntry {
	ft.frameMustBeInRange(frame)

	return ft.entries[frame]
}

// Entries returns a copy of all the entries, ordered by frame number.
func (ft *FrameTable) Entries() []FrameTableEntry {
	entries := make([]FrameTableEntry, len(ft.entries))
	copy(entries, ft.entries)

	return entries
}

func (ft *FrameTable) occupy(frame, page uint64) {
	ft.frameMustBeInRange(frame)

	if ft.entries[frame].Occupied {
		panic(fmt.Sprintf("frame %d is already occupied", frame))
	}

	ft.entries[frame] = FrameTableEntry{Frame: frame, Occupied: true, Page: page}
}

func (ft *FrameTable) clear() {
	for i := range ft.entries {
		ft.entries[i] = FrameTableEntry{Frame: uint64(i)}
	}
}

func (ft *FrameTable) frameMustBeInRange(frame uint64) {
	if frame >= uint64(len(ft.entries)) {
		panic(fmt.Sprintf("frame %d out of range [0, %d)",
			frame, len(ft.entries)))
	}
}

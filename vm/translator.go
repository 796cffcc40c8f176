package vm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/sarchlab/vmsim/sim"
)

// HookPosTranslate marks a completed translation. The hook item is the
// TranslationRecord that was appended to the history.
var HookPosTranslate = &sim.HookPos{Name: "Translate"}

// HookPosReset marks a reset. The hook item is a ResetEvent.
var HookPosReset = &sim.HookPos{Name: "Reset"}

// A ResetEvent describes a reset. Its ID comes from the same generator that
// stamps the translation records.
type ResetEvent struct {
	ID             string
	DroppedRecords int
}

// Translator turns logical addresses into physical addresses. It owns a page
// table, a frame table, a bump allocator over the frames and the history of
// all the translations it accepted.
//
// Hooks run synchronously while the translator is locked, so they must not
// call back into the same translator.
type Translator struct {
	*sim.HookableBase

	mu sync.RWMutex

	name        string
	config      Config
	idGenerator sim.IDGenerator

	pageTable     *PageTable
	frameTable    *FrameTable
	nextFreeFrame uint64
	history       History
}

// NewTranslator creates a translator with empty tables.
func NewTranslator(name string, config Config) (*Translator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	t := &Translator{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		config:       config,
		idGenerator:  sim.NewSequentialIDGenerator(),
		pageTable:    NewPageTable(config.NumPages),
		frameTable:   NewFrameTable(config.NumFrames),
	}

	return t, nil
}

// Name returns the name of the translator.
func (t *Translator) Name() string {
	return t.name
}

// Config returns the configuration the translator was built with.
func (t *Translator) Config() Config {
	return t.config
}

// ParseAddress parses a base-10 logical address as typed by a user. Leading
// and trailing spaces are ignored. Signs, fractions and other bases are
// rejected with ErrInvalidInput. Numbers too large to represent are reported
// as ErrAddressOutOfRange.
func ParseAddress(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty address", ErrInvalidInput)
	}

	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: %q is not a non-negative integer",
				ErrInvalidInput, s)
		}
	}

	addr, err := strconv.ParseUint(s, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %s", ErrAddressOutOfRange, s)
	}

	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return addr, nil
}

// TranslateInput parses s with ParseAddress and translates the result.
func (t *Translator) TranslateInput(s string) (TranslationRecord, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return TranslationRecord{}, err
	}

	return t.translate(addr)
}

// Translate resolves a logical address. Negative addresses are rejected with
// ErrInvalidInput and addresses past the end of the logical address space
// with ErrAddressOutOfRange; neither changes any state. Any other address
// produces exactly one record in the history. A page fault that finds no
// free frame is not an error: the record reports it with a nil frame.
func (t *Translator) Translate(logicalAddress int64) (TranslationRecord, error) {
	if logicalAddress < 0 {
		return TranslationRecord{}, fmt.Errorf(
			"%w: %d is negative", ErrInvalidInput, logicalAddress)
	}

	return t.translate(uint64(logicalAddress))
}

func (t *Translator) translate(addr uint64) (TranslationRecord, error) {
	maxAddress := t.config.MaxAddress()
	if addr > maxAddress {
		return TranslationRecord{}, fmt.Errorf(
			"%w: %d is larger than the maximum address %d",
			ErrAddressOutOfRange, addr, maxAddress)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	record := TranslationRecord{
		LogicalAddress: addr,
		PageNumber:     addr / t.config.PageSize,
		Offset:         addr % t.config.PageSize,
	}

	frame, found := t.pageTable.Lookup(record.PageNumber)
	switch {
	case found:
		record.Outcome = OutcomeHit
		record.Message = hitMessage(record.PageNumber, frame)
		t.resolve(&record, frame)
	case t.hasFreeFrame():
		frame = t.pageIn(record.PageNumber)
		record.PageFaulted = true
		record.Outcome = OutcomeFaultResolved
		record.Message = pageInMessage(record.PageNumber, frame)
		t.resolve(&record, frame)
	default:
		record.PageFaulted = true
		record.Outcome = OutcomeFaultExhausted
		record.Message = exhaustedMessage(record.PageNumber)
	}

	record.ID = t.idGenerator.Generate()
	record.Seq = uint64(t.history.Len()) + 1
	t.history.append(record)

	t.InvokeHook(sim.HookCtx{
		Domain: t,
		Pos:    HookPosTranslate,
		Item:   record.clone(),
	})

	return record.clone(), nil
}

func (t *Translator) resolve(record *TranslationRecord, frame uint64) {
	physical := frame*t.config.PageSize + record.Offset
	record.FrameNumber = &frame
	record.PhysicalAddress = &physical
}

func (t *Translator) hasFreeFrame() bool {
	return t.nextFreeFrame < t.config.NumFrames
}

// pageIn loads the page into the next free frame, keeping the page table
// and the frame table in step.
func (t *Translator) pageIn(page uint64) uint64 {
	frame := t.nextFreeFrame

	t.pageTable.assign(page, frame)
	t.frameTable.occupy(frame, page)
	t.nextFreeFrame++

	return frame
}

// Reset empties both tables and the history and makes every frame free
// again.
func (t *Translator) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	event := ResetEvent{
		ID:             t.idGenerator.Generate(),
		DroppedRecords: t.history.Len(),
	}

	t.pageTable.clear()
	t.frameTable.clear()
	t.nextFreeFrame = 0
	t.history.clear()

	t.InvokeHook(sim.HookCtx{
		Domain: t,
		Pos:    HookPosReset,
		Item:   event,
	})
}

// NextFreeFrame returns the allocation cursor. A value equal to the number
// of frames means no frame is left.
func (t *Translator) NextFreeFrame() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.nextFreeFrame
}

// History returns a copy of the translation history, oldest first.
func (t *Translator) History() []TranslationRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.history.Records()
}

// Package tracing records what the translators do into a DataRecorder.
package tracing

import (
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/vm"
)

// Table names used by the TranslationTracer.
const (
	TranslationTable = "translation"
	ResetTable       = "reset"
)

// TranslationEntry is the row written for every translation. Frame and
// physical address are -1 when the page fault could not be resolved.
type TranslationEntry struct {
	ID              string
	Translator      string
	Seq             int64
	LogicalAddress  int64
	PageNumber      int64
	Offset          int64
	PageFaulted     bool
	Outcome         string
	FrameNumber     int64
	PhysicalAddress int64
	Message         string
}

// ResetEntry is the row written for every reset.
type ResetEntry struct {
	ID             string
	Translator     string
	DroppedRecords int64
}

// TranslationTracer is a hook that stores translations and resets into a
// DataRecorder. One tracer can be shared by many translators.
type TranslationTracer struct {
	backend datarecording.DataRecorder
}

// NewTranslationTracer creates the tables the tracer writes to.
func NewTranslationTracer(
	backend datarecording.DataRecorder,
) *TranslationTracer {
	backend.CreateTable(TranslationTable, TranslationEntry{})
	backend.CreateTable(ResetTable, ResetEntry{})

	return &TranslationTracer{backend: backend}
}

// Func records the hook context.
func (t *TranslationTracer) Func(ctx sim.HookCtx) {
	name := ""
	if named, ok := ctx.Domain.(interface{ Name() string }); ok {
		name = named.Name()
	}

	switch ctx.Pos {
	case vm.HookPosTranslate:
		record, ok := ctx.Item.(vm.TranslationRecord)
		if !ok {
			return
		}

		t.backend.InsertData(TranslationTable, toEntry(name, record))
	case vm.HookPosReset:
		event, ok := ctx.Item.(vm.ResetEvent)
		if !ok {
			return
		}

		t.backend.InsertData(ResetTable, ResetEntry{
			ID:             event.ID,
			Translator:     name,
			DroppedRecords: int64(event.DroppedRecords),
		})
	}
}

func toEntry(name string, r vm.TranslationRecord) TranslationEntry {
	e := TranslationEntry{
		ID:              r.ID,
		Translator:      name,
		Seq:             int64(r.Seq),
		LogicalAddress:  int64(r.LogicalAddress),
		PageNumber:      int64(r.PageNumber),
		Offset:          int64(r.Offset),
		PageFaulted:     r.PageFaulted,
		Outcome:         r.Outcome.String(),
		FrameNumber:     -1,
		PhysicalAddress: -1,
		Message:         r.Message,
	}

	if frame, ok := r.Frame(); ok {
		e.FrameNumber = int64(frame)
	}

	if physical, ok := r.Physical(); ok {
		e.PhysicalAddress = int64(physical)
	}

	return e
}

package vm

import (
	"context"
	"log/slog"

	"github.com/sarchlab/vmsim/sim"
)

// LogHook writes every translation and reset of a translator to a
// structured logger. Faults are logged at info level, hits at debug level.
type LogHook struct {
	sim.LogHookBase
}

// NewLogHook creates a LogHook that writes to logger.
func NewLogHook(logger *slog.Logger) *LogHook {
	return &LogHook{
		LogHookBase: sim.LogHookBase{Logger: logger},
	}
}

// Func logs the hook context.
func (h *LogHook) Func(ctx sim.HookCtx) {
	name := ""
	if t, ok := ctx.Domain.(*Translator); ok {
		name = t.Name()
	}

	switch ctx.Pos {
	case HookPosTranslate:
		record, ok := ctx.Item.(TranslationRecord)
		if !ok {
			return
		}

		h.logRecord(name, record)
	case HookPosReset:
		event, ok := ctx.Item.(ResetEvent)
		if !ok {
			return
		}

		h.Info("reset",
			"translator", name,
			"id", event.ID,
			"dropped", event.DroppedRecords)
	}
}

func (h *LogHook) logRecord(name string, r TranslationRecord) {
	level := slog.LevelInfo
	if r.Outcome == OutcomeHit {
		level = slog.LevelDebug
	}

	if r.Outcome == OutcomeFaultExhausted {
		level = slog.LevelWarn
	}

	attrs := []any{
		"translator", name,
		"seq", r.Seq,
		"logical_address", r.LogicalAddress,
		"page", r.PageNumber,
		"offset", r.Offset,
		"outcome", r.Outcome.String(),
	}

	if frame, ok := r.Frame(); ok {
		physical, _ := r.Physical()
		attrs = append(attrs, "frame", frame, "physical_address", physical)
	}

	h.Log(context.Background(), level, r.Message, attrs...)
}

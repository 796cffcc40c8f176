package vm

// A Snapshot is a point-in-time copy of a translator's state, safe to hand
// to a display layer.
type Snapshot struct {
	Name          string              `json:"name"`
	Config        Config              `json:"config"`
	PageTable     []PageTableEntry    `json:"page_table"`
	FrameTable    []FrameTableEntry   `json:"frame_table"`
	NextFreeFrame uint64              `json:"next_free_frame"`
	History       []TranslationRecord `json:"history"`
	Stats         Stats               `json:"stats"`
}

// Stats summarizes the history of a translator.
type Stats struct {
	Translations uint64 `json:"translations"`
	Hits         uint64 `json:"hits"`
	Faults       uint64 `json:"faults"`
	Resolved     uint64 `json:"resolved"`
	Exhausted    uint64 `json:"exhausted"`
	FreeFrames   uint64 `json:"free_frames"`
}

// HitRatio returns the fraction of translations that hit. It is 0 when
// nothing was translated.
func (s Stats) HitRatio() float64 {
	if s.Translations == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Translations)
}

// Snapshot copies the current tables, allocation cursor and history.
func (t *Translator) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Snapshot{
		Name:          t.name,
		Config:        t.config,
		PageTable:     t.pageTable.Entries(),
		FrameTable:    t.frameTable.Entries(),
		NextFreeFrame: t.nextFreeFrame,
		History:       t.history.Records(),
		Stats:         t.stats(),
	}
}

// Stats counts the outcomes recorded since the last reset.
func (t *Translator) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.stats()
}

func (t *Translator) stats() Stats {
	s := Stats{
		Translations: uint64(t.history.Len()),
		FreeFrames:   t.config.NumFrames - t.nextFreeFrame,
	}

	for _, r := range t.history.records {
		switch r.Outcome {
		case OutcomeHit:
			s.Hits++
		case OutcomeFaultResolved:
			s.Faults++
			s.Resolved++
		case OutcomeFaultExhausted:
			s.Faults++
			s.Exhausted++
		}
	}

	return s
}

package vm

// History is the ordered log of accepted translations. Records are only ever
// appended; the log is emptied as a whole on reset.
type History struct {
	records []TranslationRecord
}

// Len returns the number of records.
func (h *History) Len() int {
	return len(h.records)
}

// Records returns a copy of all the records, oldest first.
func (h *History) Records() []TranslationRecord {
	records := make([]TranslationRecord, len(h.records))
	for i, r := range h.records {
		records[i] = r.clone()
	}

	return records
}

func (h *History) append(r TranslationRecord) {
	h.records = append(h.records, r)
}

func (h *History) clear() {
	h.records = nil
}

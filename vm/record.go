package vm

import "fmt"

// Outcome tells which branch of the translation path a record went through.
type Outcome int

// All the possible outcomes of a translation.
const (
	// OutcomeHit means the page was already resident.
	OutcomeHit Outcome = iota
	// OutcomeFaultResolved means the page faulted and was loaded into a
	// free frame.
	OutcomeFaultResolved
	// OutcomeFaultExhausted means the page faulted and no free frame was
	// left to load it into.
	OutcomeFaultExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeFaultResolved:
		return "fault_resolved"
	case OutcomeFaultExhausted:
		return "fault_exhausted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// A TranslationRecord is the immutable result of translating one logical
// address. FrameNumber and PhysicalAddress are nil when the page faulted and
// no frame was available.
type TranslationRecord struct {
	ID              string  `json:"id"`
	Seq             uint64  `json:"seq"`
	LogicalAddress  uint64  `json:"logical_address"`
	PageNumber      uint64  `json:"page_number"`
	Offset          uint64  `json:"offset"`
	PageFaulted     bool    `json:"page_faulted"`
	Outcome         Outcome `json:"outcome"`
	FrameNumber     *uint64 `json:"frame_number"`
	PhysicalAddress *uint64 `json:"physical_address"`
	Message         string  `json:"message"`
}

// Frame returns the frame number. The bool return value indicates if the
// address was resolved.
func (r TranslationRecord) Frame() (uint64, bool) {
	if r.FrameNumber == nil {
		return 0, false
	}

	return *r.FrameNumber, true
}

// Physical returns the physical address. The bool return value indicates if
// the address was resolved.
func (r TranslationRecord) Physical() (uint64, bool) {
	if r.PhysicalAddress == nil {
		return 0, false
	}

	return *r.PhysicalAddress, true
}

// clone returns a copy that does not share the optional fields.
func (r TranslationRecord) clone() TranslationRecord {
	if r.FrameNumber != nil {
		f := *r.FrameNumber
		r.FrameNumber = &f
	}

	if r.PhysicalAddress != nil {
		p := *r.PhysicalAddress
		r.PhysicalAddress = &p
	}

	return r
}

func hitMessage(page, frame uint64) string {
	return fmt.Sprintf("Page %d is already loaded in Frame %d.", page, frame)
}

func pageInMessage(page, frame uint64) string {
	return fmt.Sprintf(
		"Page Fault! Page is not loaded. Loading Page %d into Frame %d.",
		page, frame)
}

func exhaustedMessage(page uint64) string {
	return fmt.Sprintf(
		"Page Fault! Page is not loaded. No free frame available for Page %d.",
		page)
}

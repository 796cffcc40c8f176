package vm

import (
	"fmt"
	"math"
)

// Default geometry of the simulated machine: 1 KB pages, 8 logical pages and
// 4 physical frames.
const (
	DefaultPageSize  uint64 = 1024
	DefaultNumPages  uint64 = 8
	DefaultNumFrames uint64 = 4
)

// Config describes the geometry of the logical and physical memory. A Config
// is immutable once a Translator has been built from it.
type Config struct {
	PageSize  uint64 `json:"page_size"`
	NumPages  uint64 `json:"num_pages"`
	NumFrames uint64 `json:"num_frames"`
}

// DefaultConfig returns the configuration used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		PageSize:  DefaultPageSize,
		NumPages:  DefaultNumPages,
		NumFrames: DefaultNumFrames,
	}
}

// Validate checks that all dimensions are positive and that neither the
// logical nor the physical address space overflows.
func (c Config) Validate() error {
	if c.PageSize == 0 {
		return fmt.Errorf("%w: page size must be positive", ErrInvalidConfig)
	}

	if c.NumPages == 0 {
		return fmt.Errorf("%w: number of pages must be positive",
			ErrInvalidConfig)
	}

	if c.NumFrames == 0 {
		return fmt.Errorf("%w: number of frames must be positive",
			ErrInvalidConfig)
	}

	// Addresses are accepted as int64, so both spaces must fit in it.
	limit := uint64(math.MaxInt64) / c.PageSize
	if c.NumPages > limit {
		return fmt.Errorf("%w: %d pages of %d bytes overflow the address space",
			ErrInvalidConfig, c.NumPages, c.PageSize)
	}

	if c.NumFrames > limit {
		return fmt.Errorf("%w: %d frames of %d bytes overflow the address space",
			ErrInvalidConfig, c.NumFrames, c.PageSize)
	}

	return nil
}

// MaxAddress returns the largest valid logical address.
func (c Config) MaxAddress() uint64 {
	return c.NumPages*c.PageSize - 1
}

// String renders the configuration the way the CLI prints it.
func (c Config) String() string {
	return fmt.Sprintf("page size %d, %d pages, %d frames",
		c.PageSize, c.NumPages, c.NumFrames)
}

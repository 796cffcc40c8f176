package vm

import "errors"

var (
	// ErrInvalidInput is returned when a logical address is not a
	// well-formed non-negative integer.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAddressOutOfRange is returned when a logical address is larger than
	// the last address of the logical address space.
	ErrAddressOutOfRange = errors.New("address out of range")

	// ErrInvalidConfig is returned when a Config cannot describe a machine.
	ErrInvalidConfig = errors.New("invalid config")
)

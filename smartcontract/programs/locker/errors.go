package locker

import (
	"errors"
)

var (
	// ErrInvalidData is returned for malformed payloads, wrong account shapes and failed preconditions.
	ErrInvalidData = errors.New("invalid data")

	// ErrInvalidAlignment is returned when an entity buffer does not start on a 16-byte boundary.
	ErrInvalidAlignment = errors.New("invalid alignment")

	// ErrInvalidOwner is returned when an account is not owned by the expected program.
	ErrInvalidOwner = errors.New("invalid owner")

	// ErrNotRentExempt is returned when an entity account holds fewer lamports than the rent-exempt minimum.
	ErrNotRentExempt = errors.New("account not rent exempt")

	// ErrInvalidAuthority is returned when a signer or derived authority does not match the recorded one.
	ErrInvalidAuthority = errors.New("invalid authority")
)

// ErrorCode maps an error to the custom program error code reported to clients. Errors that are
// not program errors map to 0.
func ErrorCode(err error) uint32 {
	switch {
	case errors.Is(err, ErrInvalidData):
		return 1
	case errors.Is(err, ErrInvalidAlignment):
		return 2
	case errors.Is(err, ErrInvalidOwner):
		return 3
	case errors.Is(err, ErrNotRentExempt):
		return 4
	case errors.Is(err, ErrInvalidAuthority):
		return 5
	default:
		return 0
	}
}

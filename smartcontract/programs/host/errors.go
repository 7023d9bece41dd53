package host

import (
	"errors"
	"fmt"
)

var (
	ErrProgramNotFound             = errors.New("program not found")
	ErrMissingSignature            = errors.New("missing required signature")
	ErrPrivilegeEscalation         = errors.New("cross-program invocation with unauthorized signer or writable account")
	ErrMissingAccount              = errors.New("cross-program invocation references an account the caller was not given")
	ErrCallDepth                   = errors.New("cross-program invocation call depth too deep")
	ErrExternalAccountDataModified = errors.New("program modified data of an account it does not own")
	ErrReadonlyDataModified        = errors.New("program modified data of a read-only account")
	ErrAccountOwnerModified        = errors.New("program modified the owner of an account")
	ErrEmptyTransaction            = errors.New("transaction has no instructions")
)

// InstructionError reports which instruction of a transaction failed.
type InstructionError struct {
	Index int
	Err   error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d failed: %v", e.Index, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}

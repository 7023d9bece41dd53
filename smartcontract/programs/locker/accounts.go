package locker

import (
	"fmt"

	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

func expectAccounts(ctx *host.InvokeContext, method MethodKind, n int) ([]*host.AccountInfo, error) {
	if len(ctx.Accounts) != n {
		return nil, fmt.Errorf("%w: %s expects %d accounts, got %d", ErrInvalidData, method, n, len(ctx.Accounts))
	}
	return ctx.Accounts, nil
}

func requireSigner(info *host.AccountInfo, name string) error {
	if !info.IsSigner {
		return fmt.Errorf("%w: %s %s must sign", ErrInvalidAuthority, name, info.Key)
	}
	return nil
}

func requireWritable(info *host.AccountInfo, name string) error {
	if !info.IsWritable {
		return fmt.Errorf("%w: %s %s must be writable", ErrInvalidData, name, info.Key)
	}
	return nil
}

// loadLocker maps an initialised locker.
func loadLocker(ctx *host.InvokeContext, info *host.AccountInfo) (*Entity[LockerState], error) {
	e, err := Load[LockerState](ctx.ProgramID, info, ctx.Rent())
	if err != nil {
		return nil, err
	}
	if !e.Is() {
		return nil, fmt.Errorf("%w: account %s holds a %s entity, want locker", ErrInvalidData, info.Key, e.Header.Kind)
	}
	return e, nil
}

// loadEmptyLocker maps a locker-sized account that has not been initialised yet.
func loadEmptyLocker(ctx *host.InvokeContext, info *host.AccountInfo) (*Entity[LockerState], error) {
	e, err := Load[LockerState](ctx.ProgramID, info, ctx.Rent())
	if err != nil {
		return nil, err
	}
	if !e.IsEmpty() {
		return nil, fmt.Errorf("%w: locker %s is already initialized", ErrInvalidData, info.Key)
	}
	return e, nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

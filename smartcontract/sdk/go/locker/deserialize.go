package locker

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/locker/smartcontract/programs/host"
	lockerprog "github.com/malbeclabs/locker/smartcontract/programs/locker"
)

var (
	ErrNotLocker = errors.New("account is not an initialized locker")
)

// DeserializeLocker decodes a locker account snapshot. The data is copied into an aligned buffer
// and validated by the program's own codec; rent is not checked off-chain.
func DeserializeLocker(programID, pubkey, owner solana.PublicKey, data []byte) (*Locker, error) {
	if len(data) != LockerAccountSize {
		return nil, fmt.Errorf("account data has %d bytes, want %d", len(data), LockerAccountSize)
	}
	aligned := host.AlignedBytes(len(data))
	copy(aligned, data)

	info := &host.AccountInfo{Key: pubkey, Data: aligned, Owner: owner}
	e, err := lockerprog.Load[lockerprog.LockerState](programID, info, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load locker: %w", err)
	}
	if !e.Is() {
		return nil, fmt.Errorf("%w: kind %s", ErrNotLocker, e.Header.Kind)
	}
	return lockerFromEntity(e), nil
}

// DeserializeTokenBalance returns the balance of a packed SPL token account.
func DeserializeTokenBalance(data []byte) (uint64, error) {
	acct, err := host.DecodeTokenAccount(data)
	if err != nil {
		return 0, err
	}
	return acct.Amount, nil
}

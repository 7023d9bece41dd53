package locker

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	lockerprog "github.com/malbeclabs/locker/smartcontract/programs/locker"
)

// Locker is an off-chain snapshot of a locker account.
type Locker struct {
	PubKey           solana.PublicKey
	ID               uint64
	ParentID         uint64
	Root             uint64
	Owner            solana.PublicKey
	Mint             solana.PublicKey
	Vault            solana.PublicKey
	ProgramAuthority solana.PublicKey
	ReleaseDate      int64
}

// ReleaseTime returns the release date as a time.
func (l *Locker) ReleaseTime() time.Time {
	return time.Unix(l.ReleaseDate, 0).UTC()
}

// IsReleasable reports whether the locker can be withdrawn from at now.
func (l *Locker) IsReleasable(now time.Time) bool {
	return now.Unix() >= l.ReleaseDate
}

// IsRoot reports whether the locker was created directly rather than split off another.
func (l *Locker) IsRoot() bool {
	return l.ID == l.ParentID
}

// HasStaleAuthority reports whether the recorded program authority can no longer be derived from
// the current owner, which happens after an ownership change. Such lockers cannot be withdrawn
// from or split until ownership is handed back.
func (l *Locker) HasStaleAuthority(programID solana.PublicKey) (bool, error) {
	derived, _, err := DeriveProgramAuthorityPDA(programID, l.PubKey, l.Owner)
	if err != nil {
		return false, fmt.Errorf("failed to derive program authority: %w", err)
	}
	return derived != l.ProgramAuthority, nil
}

func lockerFromEntity(e *lockerprog.Entity[lockerprog.LockerState]) *Locker {
	return &Locker{
		PubKey:           e.Key,
		ID:               e.Header.ID,
		ParentID:         e.Header.ParentID,
		Root:             e.Header.Root,
		Owner:            e.Record.Owner,
		Mint:             e.Record.Mint,
		Vault:            e.Record.Vault,
		ProgramAuthority: e.Record.ProgramAuthority,
		ReleaseDate:      e.Record.ReleaseDate,
	}
}

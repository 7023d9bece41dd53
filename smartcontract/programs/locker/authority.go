package locker

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// FindProgramAuthority derives the address that holds token authority over the vault of locker
// for owner. Seeds: [locker, owner].
func FindProgramAuthority(programID, locker, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress([][]byte{locker[:], owner[:]}, programID)
}

// CreateProgramAuthority re-derives the program authority for a known bump seed.
func CreateProgramAuthority(programID, locker, owner solana.PublicKey, bump uint8) (solana.PublicKey, error) {
	return solana.CreateProgramAddress(authoritySeeds(locker, owner, bump), programID)
}

func authoritySeeds(locker, owner solana.PublicKey, bump uint8) [][]byte {
	return [][]byte{locker[:], owner[:], {bump}}
}

// verifyProgramAuthority checks that authority is the program authority derived from locker and
// owner, and returns the signer seeds for it.
func verifyProgramAuthority(programID, locker, owner, authority solana.PublicKey) ([][]byte, error) {
	derived, bump, err := FindProgramAuthority(programID, locker, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to derive program authority: %v", ErrInvalidAuthority, err)
	}
	if derived != authority {
		return nil, fmt.Errorf("%w: program authority %s does not match derived %s", ErrInvalidAuthority, authority, derived)
	}
	return authoritySeeds(locker, owner, bump), nil
}

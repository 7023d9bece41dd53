package locker

import (
	"github.com/gagliardetto/solana-go"
	lockerprog "github.com/malbeclabs/locker/smartcontract/programs/locker"
)

// DeriveProgramAuthorityPDA derives the vault authority of a locker.
// Seeds: [locker, owner]
func DeriveProgramAuthorityPDA(programID, locker, owner solana.PublicKey) (solana.PublicKey, uint8, error) {
	return lockerprog.FindProgramAuthority(programID, locker, owner)
}

// DeriveAllocatorPDA derives the PDA of the entity id allocator.
// Seeds: ["allocator"]
func DeriveAllocatorPDA(programID solana.PublicKey) (solana.PublicKey, uint8, error) {
	return lockerprog.FindAllocatorAddress(programID)
}

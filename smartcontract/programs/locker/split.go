package locker

import (
	"fmt"

	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

// split carves amount out of a locker into a new locker with the same owner, mint and release
// date. The new locker records its own program authority and descends from the source in the
// entity lineage.
//
// Accounts:
//
//	0. source locker
//	1. new locker (writable, empty)
//	2. source vault token wallet (writable)
//	3. new vault token wallet (writable, authority = new program authority)
//	4. allocator (writable)
//	5. source program authority
func split(ctx *host.InvokeContext, m Split) error {
	accounts, err := expectAccounts(ctx, MethodSplit, 6)
	if err != nil {
		return err
	}
	sourceInfo, newInfo, sourceVaultInfo, newVaultInfo, allocatorInfo := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]
	sourceAuthorityInfo := accounts[5]
	if err := firstError(
		requireWritable(newInfo, "new locker"),
		requireWritable(sourceVaultInfo, "source vault"),
		requireWritable(newVaultInfo, "new vault"),
		requireWritable(allocatorInfo, "allocator"),
	); err != nil {
		return err
	}
	if sourceInfo.Key == newInfo.Key {
		return fmt.Errorf("%w: source and new locker are the same account", ErrInvalidData)
	}
	if sourceVaultInfo.Key == newVaultInfo.Key {
		return fmt.Errorf("%w: source and new vault are the same account", ErrInvalidData)
	}

	source, err := loadLocker(ctx, sourceInfo)
	if err != nil {
		return err
	}
	target, err := loadEmptyLocker(ctx, newInfo)
	if err != nil {
		return err
	}
	allocator, err := loadAllocator(ctx, allocatorInfo)
	if err != nil {
		return err
	}
	state := source.Record

	if sourceVaultInfo.Key != state.Vault {
		return fmt.Errorf("%w: source vault %s, want %s", ErrInvalidData, sourceVaultInfo.Key, state.Vault)
	}
	seeds, err := verifyProgramAuthority(ctx.ProgramID, sourceInfo.Key, state.Owner, state.ProgramAuthority)
	if err != nil {
		return err
	}
	if sourceAuthorityInfo.Key != state.ProgramAuthority {
		return fmt.Errorf("%w: program authority %s, want %s", ErrInvalidAuthority, sourceAuthorityInfo.Key, state.ProgramAuthority)
	}
	newAuthority, _, err := FindProgramAuthority(ctx.ProgramID, newInfo.Key, state.Owner)
	if err != nil {
		return fmt.Errorf("%w: failed to derive program authority: %v", ErrInvalidAuthority, err)
	}

	sourceVault, err := loadWallet(sourceVaultInfo)
	if err != nil {
		return err
	}
	if sourceVault.Owner != state.ProgramAuthority {
		return fmt.Errorf("%w: source vault authority %s, want %s", ErrInvalidAuthority, sourceVault.Owner, state.ProgramAuthority)
	}
	newVault, err := loadWallet(newVaultInfo)
	if err != nil {
		return err
	}
	if newVault.Owner != newAuthority {
		return fmt.Errorf("%w: new vault authority %s, want %s", ErrInvalidAuthority, newVault.Owner, newAuthority)
	}
	if err := newVault.requireExclusive(); err != nil {
		return err
	}
	if newVault.Mint != state.Mint {
		return fmt.Errorf("%w: new vault mint %s, want %s", ErrInvalidData, newVault.Mint, state.Mint)
	}
	if m.Amount > sourceVault.Amount {
		return fmt.Errorf("%w: amount %d exceeds source vault balance %d", ErrInvalidData, m.Amount, sourceVault.Amount)
	}
	if !newVault.canReceive(m.Amount) {
		return fmt.Errorf("%w: new vault balance overflow", ErrInvalidData)
	}
	if _, err := allocator.NextID(); err != nil {
		return err
	}

	if err := transfer(ctx, m.Amount, sourceVaultInfo.Key, newVaultInfo.Key, state.ProgramAuthority, seeds); err != nil {
		return err
	}

	id, err := allocator.AllocateID()
	if err != nil {
		return err
	}
	*target.Record = LockerState{
		Owner:            state.Owner,
		Mint:             state.Mint,
		Vault:            newVaultInfo.Key,
		ProgramAuthority: newAuthority,
		ReleaseDate:      state.ReleaseDate,
	}
	target.Initialize(id, source.Header.ID, source.Header.Root)

	ctx.Log.Info("locker split", "source", sourceInfo.Key.String(), "locker", newInfo.Key.String(), "id", id, "amount", m.Amount)
	return nil
}

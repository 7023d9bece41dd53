package locker

import (
	"fmt"

	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

// createLock initialises an empty locker and moves the locked amount into its vault.
//
// Accounts:
//
//	0. locker (writable, empty)
//	1. source token wallet (writable)
//	2. source authority (signer)
//	3. vault token wallet (writable, authority = program authority)
//	4. program authority
//	5. owner
//	6. allocator (writable)
func createLock(ctx *host.InvokeContext, m CreateLock) error {
	accounts, err := expectAccounts(ctx, MethodCreateLock, 7)
	if err != nil {
		return err
	}
	lockerInfo, sourceInfo, sourceAuthority := accounts[0], accounts[1], accounts[2]
	vaultInfo, authorityInfo, ownerInfo, allocatorInfo := accounts[3], accounts[4], accounts[5], accounts[6]

	if err := firstError(
		requireWritable(lockerInfo, "locker"),
		requireWritable(sourceInfo, "source wallet"),
		requireWritable(vaultInfo, "vault"),
		requireWritable(allocatorInfo, "allocator"),
		requireSigner(sourceAuthority, "source authority"),
	); err != nil {
		return err
	}

	locker, err := loadEmptyLocker(ctx, lockerInfo)
	if err != nil {
		return err
	}
	allocator, err := loadAllocator(ctx, allocatorInfo)
	if err != nil {
		return err
	}

	derived, _, err := FindProgramAuthority(ctx.ProgramID, lockerInfo.Key, ownerInfo.Key)
	if err != nil {
		return fmt.Errorf("%w: failed to derive program authority: %v", ErrInvalidAuthority, err)
	}
	if authorityInfo.Key != derived {
		ctx.Log.Debug("provided program authority does not match expected authority", "provided", authorityInfo.Key.String(), "expected", derived.String())
		return fmt.Errorf("%w: program authority %s, want %s", ErrInvalidAuthority, authorityInfo.Key, derived)
	}

	if vaultInfo.Key == sourceInfo.Key {
		return fmt.Errorf("%w: vault and source wallet are the same account", ErrInvalidData)
	}
	vault, err := loadWallet(vaultInfo)
	if err != nil {
		return err
	}
	if vault.Owner != derived {
		ctx.Log.Debug("vault authority does not match program authority", "vault", vaultInfo.Key.String())
		return fmt.Errorf("%w: vault authority %s, want %s", ErrInvalidAuthority, vault.Owner, derived)
	}
	if err := vault.requireExclusive(); err != nil {
		return err
	}
	source, err := loadWallet(sourceInfo)
	if err != nil {
		return err
	}
	if vault.Mint != source.Mint {
		return fmt.Errorf("%w: vault mint %s does not match source mint %s", ErrInvalidData, vault.Mint, source.Mint)
	}

	now := ctx.Now()
	if m.UnlockDate <= now {
		ctx.Log.Debug("cannot create locker with an unlock date in the past", "unlock_date", m.UnlockDate, "now", now)
		return fmt.Errorf("%w: unlock date %d is not after %d", ErrInvalidData, m.UnlockDate, now)
	}

	if source.Owner != sourceAuthority.Key {
		return fmt.Errorf("%w: source authority %s does not own source wallet", ErrInvalidAuthority, sourceAuthority.Key)
	}
	if source.Amount < m.Amount {
		return fmt.Errorf("%w: source balance %d is less than %d", ErrInvalidData, source.Amount, m.Amount)
	}
	if !vault.canReceive(m.Amount) {
		return fmt.Errorf("%w: vault balance overflow", ErrInvalidData)
	}
	if _, err := allocator.NextID(); err != nil {
		return err
	}

	if err := transfer(ctx, m.Amount, sourceInfo.Key, vaultInfo.Key, sourceAuthority.Key); err != nil {
		return err
	}

	id, err := allocator.AllocateID()
	if err != nil {
		return err
	}
	*locker.Record = LockerState{
		Owner:            ownerInfo.Key,
		Mint:             source.Mint,
		Vault:            vaultInfo.Key,
		ProgramAuthority: derived,
		ReleaseDate:      m.UnlockDate,
	}
	locker.Initialize(id, id, id)

	ctx.Log.Info("locker created", "locker", lockerInfo.Key.String(), "id", id, "owner", ownerInfo.Key.String(), "amount", m.Amount, "release_date", m.UnlockDate)
	return nil
}

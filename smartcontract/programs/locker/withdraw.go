package locker

import (
	"fmt"

	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

// withdraw releases tokens from the vault once the release date has been reached.
//
// Accounts:
//
//	0. locker (writable)
//	1. vault token wallet (writable)
//	2. destination token wallet (writable)
//	3. program authority
//	4. owner (signer)
func withdraw(ctx *host.InvokeContext, m Withdraw) error {
	accounts, err := expectAccounts(ctx, MethodWithdraw, 5)
	if err != nil {
		return err
	}
	lockerInfo, vaultInfo, destinationInfo, authorityInfo, ownerInfo := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]
	if err := firstError(
		requireWritable(lockerInfo, "locker"),
		requireWritable(vaultInfo, "vault"),
		requireWritable(destinationInfo, "destination wallet"),
		requireSigner(ownerInfo, "owner"),
	); err != nil {
		return err
	}

	locker, err := loadLocker(ctx, lockerInfo)
	if err != nil {
		return err
	}
	state := locker.Record

	now := ctx.Now()
	if now < state.ReleaseDate {
		ctx.Log.Debug("locker is still locked", "locker", lockerInfo.Key.String(), "release_date", state.ReleaseDate, "now", now)
		return fmt.Errorf("%w: locker %s is locked until %d", ErrInvalidAuthority, lockerInfo.Key, state.ReleaseDate)
	}
	if ownerInfo.Key != state.Owner {
		return fmt.Errorf("%w: %s is not the owner of locker %s", ErrInvalidAuthority, ownerInfo.Key, lockerInfo.Key)
	}
	if vaultInfo.Key != state.Vault {
		return fmt.Errorf("%w: vault %s, want %s", ErrInvalidData, vaultInfo.Key, state.Vault)
	}
	if authorityInfo.Key != state.ProgramAuthority {
		return fmt.Errorf("%w: program authority %s, want %s", ErrInvalidAuthority, authorityInfo.Key, state.ProgramAuthority)
	}
	seeds, err := verifyProgramAuthority(ctx.ProgramID, lockerInfo.Key, state.Owner, state.ProgramAuthority)
	if err != nil {
		ctx.Log.Debug("recorded program authority is not derivable from the current owner", "locker", lockerInfo.Key.String())
		return err
	}

	vault, err := loadWallet(vaultInfo)
	if err != nil {
		return err
	}
	if vault.Owner != state.ProgramAuthority {
		return fmt.Errorf("%w: vault authority %s, want %s", ErrInvalidAuthority, vault.Owner, state.ProgramAuthority)
	}
	if destinationInfo.Key == vaultInfo.Key {
		return fmt.Errorf("%w: destination is the vault", ErrInvalidData)
	}
	destination, err := loadWallet(destinationInfo)
	if err != nil {
		return err
	}
	if destination.Mint != state.Mint {
		return fmt.Errorf("%w: destination mint %s, want %s", ErrInvalidData, destination.Mint, state.Mint)
	}
	if m.Amount > vault.Amount {
		return fmt.Errorf("%w: amount %d exceeds vault balance %d", ErrInvalidData, m.Amount, vault.Amount)
	}
	if !destination.canReceive(m.Amount) {
		return fmt.Errorf("%w: destination balance overflow", ErrInvalidData)
	}

	if err := transfer(ctx, m.Amount, vaultInfo.Key, destinationInfo.Key, state.ProgramAuthority, seeds); err != nil {
		return err
	}
	ctx.Log.Info("locker withdrawn", "locker", lockerInfo.Key.String(), "amount", m.Amount, "destination", destinationInfo.Key.String())
	return nil
}

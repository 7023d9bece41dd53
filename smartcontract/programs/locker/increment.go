package locker

import (
	"fmt"

	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

// increment tops up the vault of a locker. Anyone holding tokens of the locker's mint may call it;
// the release date is left untouched.
//
// Accounts:
//
//	0. locker
//	1. vault token wallet (writable)
//	2. source token wallet (writable)
//	3. source authority (signer)
func increment(ctx *host.InvokeContext, m Increment) error {
	accounts, err := expectAccounts(ctx, MethodIncrement, 4)
	if err != nil {
		return err
	}
	lockerInfo, vaultInfo, sourceInfo, sourceAuthority := accounts[0], accounts[1], accounts[2], accounts[3]
	if err := firstError(
		requireWritable(vaultInfo, "vault"),
		requireWritable(sourceInfo, "source wallet"),
		requireSigner(sourceAuthority, "source authority"),
	); err != nil {
		return err
	}

	locker, err := loadLocker(ctx, lockerInfo)
	if err != nil {
		return err
	}
	state := locker.Record
	if vaultInfo.Key != state.Vault {
		return fmt.Errorf("%w: vault %s, want %s", ErrInvalidData, vaultInfo.Key, state.Vault)
	}
	if sourceInfo.Key == vaultInfo.Key {
		return fmt.Errorf("%w: source wallet is the vault", ErrInvalidData)
	}
	vault, err := loadWallet(vaultInfo)
	if err != nil {
		return err
	}
	source, err := loadWallet(sourceInfo)
	if err != nil {
		return err
	}
	if source.Mint != state.Mint || vault.Mint != state.Mint {
		return fmt.Errorf("%w: wallet mint does not match locker mint %s", ErrInvalidData, state.Mint)
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

	if err := transfer(ctx, m.Amount, sourceInfo.Key, vaultInfo.Key, sourceAuthority.Key); err != nil {
		return err
	}
	ctx.Log.Info("locker incremented", "locker", lockerInfo.Key.String(), "amount", m.Amount)
	return nil
}

package locker

import (
	"fmt"

	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

// relock moves the release date of a locker strictly forward.
//
// Accounts:
//
//	0. locker (writable)
//	1. owner (signer)
func relock(ctx *host.InvokeContext, m ReLock) error {
	accounts, err := expectAccounts(ctx, MethodReLock, 2)
	if err != nil {
		return err
	}
	lockerInfo, ownerInfo := accounts[0], accounts[1]
	if err := firstError(
		requireWritable(lockerInfo, "locker"),
		requireSigner(ownerInfo, "owner"),
	); err != nil {
		return err
	}

	locker, err := loadLocker(ctx, lockerInfo)
	if err != nil {
		return err
	}
	state := locker.Record
	if ownerInfo.Key != state.Owner {
		ctx.Log.Debug("signer is not the locker owner", "locker", lockerInfo.Key.String(), "signer", ownerInfo.Key.String())
		return fmt.Errorf("%w: %s is not the owner of locker %s", ErrInvalidAuthority, ownerInfo.Key, lockerInfo.Key)
	}
	if m.UnlockDate <= state.ReleaseDate {
		ctx.Log.Debug("cannot relock to an earlier or equal unlock date", "unlock_date", m.UnlockDate, "release_date", state.ReleaseDate)
		return fmt.Errorf("%w: unlock date %d is not after release date %d", ErrInvalidData, m.UnlockDate, state.ReleaseDate)
	}

	state.ReleaseDate = m.UnlockDate
	ctx.Log.Info("locker relocked", "locker", lockerInfo.Key.String(), "release_date", m.UnlockDate)
	return nil
}

package locker

import (
	"fmt"

	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

// changeOwner transfers ownership of a locker. The recorded program authority is kept, so the
// vault stays under program control but withdrawals fail until ownership returns to an owner
// the authority was derived for.
//
// Accounts:
//
//	0. locker (writable)
//	1. current owner (signer)
//	2. new owner
func changeOwner(ctx *host.InvokeContext, _ ChangeOwner) error {
	accounts, err := expectAccounts(ctx, MethodChangeOwner, 3)
	if err != nil {
		return err
	}
	lockerInfo, ownerInfo, newOwnerInfo := accounts[0], accounts[1], accounts[2]
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
		return fmt.Errorf("%w: %s is not the owner of locker %s", ErrInvalidAuthority, ownerInfo.Key, lockerInfo.Key)
	}

	state.Owner = newOwnerInfo.Key
	ctx.Log.Info("locker owner changed", "locker", lockerInfo.Key.String(), "owner", newOwnerInfo.Key.String())
	return nil
}

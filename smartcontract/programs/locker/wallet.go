package locker

import (
	"fmt"
	"math"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/malbeclabs/locker/smartcontract/programs/host"
)

// wallet is a read-only view of an SPL token account.
type wallet struct {
	info *host.AccountInfo
	*token.Account
}

func loadWallet(info *host.AccountInfo) (*wallet, error) {
	if info.Owner != host.TokenProgramID {
		return nil, fmt.Errorf("%w: token wallet %s is owned by %s", ErrInvalidOwner, info.Key, info.Owner)
	}
	acct, err := host.DecodeTokenAccount(info.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: token wallet %s: %v", ErrInvalidData, info.Key, err)
	}
	if acct.State != token.Initialized {
		return nil, fmt.Errorf("%w: token wallet %s is not usable", ErrInvalidData, info.Key)
	}
	return &wallet{info: info, Account: acct}, nil
}

// canReceive reports whether amount can be credited without overflowing the balance.
func (w *wallet) canReceive(amount uint64) bool {
	return w.Amount <= math.MaxUint64-amount
}

// requireExclusive rejects vaults that a delegate or close authority could drain.
func (w *wallet) requireExclusive() error {
	if w.Delegate != nil || w.CloseAuthority != nil {
		return fmt.Errorf("%w: token wallet %s has a delegate or close authority", ErrInvalidAuthority, w.info.Key)
	}
	return nil
}

// transfer moves amount from source to destination through the token program. signerSeeds
// grant the program-derived authority its signature.
func transfer(ctx *host.InvokeContext, amount uint64, source, destination, authority solana.PublicKey, signerSeeds ...[][]byte) error {
	ix := token.NewTransferInstruction(amount, source, destination, authority, nil).Build()
	if err := ctx.Invoke(ix, signerSeeds...); err != nil {
		return fmt.Errorf("failed to transfer tokens: %w", err)
	}
	return nil
}

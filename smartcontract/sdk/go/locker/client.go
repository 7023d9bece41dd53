package locker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/jellydator/ttlcache/v3"
)

var (
	ErrAccountNotFound = errors.New("account not found")
)

// DefaultLockerCacheTTL bounds how long GetLocker serves a snapshot without refetching it.
const DefaultLockerCacheTTL = 5 * time.Second

type Client struct {
	log      *slog.Logger
	rpc      RPCClient
	executor *executor
	cache    *ttlcache.Cache[solana.PublicKey, *Locker]
}

func New(log *slog.Logger, rpc RPCClient, signer *solana.PrivateKey, programID solana.PublicKey, opts ...ExecutorOption) *Client {
	return &Client{
		log:      log,
		rpc:      rpc,
		executor: NewExecutor(log, rpc, signer, programID, opts...),
		cache: ttlcache.New(
			ttlcache.WithTTL[solana.PublicKey, *Locker](DefaultLockerCacheTTL),
			ttlcache.WithDisableTouchOnHit[solana.PublicKey, *Locker](),
		),
	}
}

func (c *Client) ProgramID() solana.PublicKey {
	if c.executor == nil {
		return solana.PublicKey{}
	}
	return c.executor.programID
}

func (c *Client) Signer() *solana.PrivateKey {
	if c.executor == nil {
		return nil
	}
	return c.executor.signer
}

// GetLocker fetches a locker account. Snapshots are cached briefly and dropped whenever this
// client submits a mutation touching the locker.
func (c *Client) GetLocker(ctx context.Context, pubkey solana.PublicKey) (*Locker, error) {
	if item := c.cache.Get(pubkey); item != nil {
		return item.Value(), nil
	}

	account, err := c.rpc.GetAccountInfo(ctx, pubkey)
	if err != nil {
		if errors.Is(err, solanarpc.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account data: %w", err)
	}
	if account.Value == nil {
		return nil, ErrAccountNotFound
	}

	locker, err := DeserializeLocker(c.executor.programID, pubkey, account.Value.Owner, account.Value.Data.GetBinary())
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize locker: %w", err)
	}
	c.cache.Set(pubkey, locker, ttlcache.DefaultTTL)
	return locker, nil
}

// GetLockers fetches every locker account of the program.
func (c *Client) GetLockers(ctx context.Context) ([]Locker, error) {
	return c.getLockers(ctx)
}

// GetLockersByOwner fetches the lockers currently owned by owner.
func (c *Client) GetLockersByOwner(ctx context.Context, owner solana.PublicKey) ([]Locker, error) {
	return c.getLockers(ctx, solanarpc.RPCFilter{
		Memcmp: &solanarpc.RPCFilterMemcmp{
			Offset: OwnerOffset,
			Bytes:  solana.Base58(owner.Bytes()),
		},
	})
}

func (c *Client) getLockers(ctx context.Context, filters ...solanarpc.RPCFilter) ([]Locker, error) {
	opts := &solanarpc.GetProgramAccountsOpts{
		Filters: append([]solanarpc.RPCFilter{
			{DataSize: LockerAccountSize},
			{
				Memcmp: &solanarpc.RPCFilterMemcmp{
					Offset: KindOffset,
					Bytes:  solana.Base58([]byte{byte(lockerKind)}),
				},
			},
		}, filters...),
	}

	accounts, err := c.rpc.GetProgramAccountsWithOpts(ctx, c.executor.programID, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get program accounts: %w", err)
	}

	lockers := make([]Locker, 0, len(accounts))
	for _, acct := range accounts {
		if acct.Account == nil || acct.Account.Data == nil {
			continue
		}
		locker, err := DeserializeLocker(c.executor.programID, acct.Pubkey, acct.Account.Owner, acct.Account.Data.GetBinary())
		if err != nil {
			c.log.Warn("failed to deserialize locker account", "pubkey", acct.Pubkey, "error", err)
			continue
		}
		lockers = append(lockers, *locker)
	}
	return lockers, nil
}

// GetMultipleLockers fetches the given lockers in batches. The result is positional; a nil
// entry means the account does not exist or is not a locker.
func (c *Client) GetMultipleLockers(ctx context.Context, pubkeys []solana.PublicKey) ([]*Locker, error) {
	lockers := make([]*Locker, len(pubkeys))
	err := c.getMultipleAccounts(ctx, pubkeys, func(i int, acct *solanarpc.Account) {
		locker, err := DeserializeLocker(c.executor.programID, pubkeys[i], acct.Owner, acct.Data.GetBinary())
		if err != nil {
			c.log.Debug("skipping non-locker account", "pubkey", pubkeys[i], "error", err)
			return
		}
		lockers[i] = locker
	})
	if err != nil {
		return nil, err
	}
	return lockers, nil
}

// GetTokenBalances fetches the balances of the given token wallets. Wallets that do not exist or
// are not token accounts are absent from the result.
func (c *Client) GetTokenBalances(ctx context.Context, wallets []solana.PublicKey) (map[solana.PublicKey]uint64, error) {
	balances := make(map[solana.PublicKey]uint64, len(wallets))
	err := c.getMultipleAccounts(ctx, wallets, func(i int, acct *solanarpc.Account) {
		if acct.Owner != solana.TokenProgramID {
			return
		}
		amount, err := DeserializeTokenBalance(acct.Data.GetBinary())
		if err != nil {
			c.log.Debug("skipping malformed token account", "pubkey", wallets[i], "error", err)
			return
		}
		balances[wallets[i]] = amount
	})
	if err != nil {
		return nil, err
	}
	return balances, nil
}

func (c *Client) getMultipleAccounts(ctx context.Context, pubkeys []solana.PublicKey, fn func(i int, acct *solanarpc.Account)) error {
	for start := 0; start < len(pubkeys); start += MaxMultipleAccounts {
		end := min(start+MaxMultipleAccounts, len(pubkeys))
		res, err := c.rpc.GetMultipleAccounts(ctx, pubkeys[start:end]...)
		if err != nil {
			return fmt.Errorf("failed to get multiple accounts: %w", err)
		}
		if len(res.Value) != end-start {
			return fmt.Errorf("unexpected number of accounts: got %d, want %d", len(res.Value), end-start)
		}
		for j, acct := range res.Value {
			if acct == nil || acct.Data == nil {
				continue
			}
			fn(start+j, acct)
		}
	}
	return nil
}

// GetLockerSignatures returns up to limit of the most recent transaction signatures touching a
// locker, newest first.
func (c *Client) GetLockerSignatures(ctx context.Context, locker solana.PublicKey, limit int) ([]*solanarpc.TransactionSignature, error) {
	opts := &solanarpc.GetSignaturesForAddressOpts{
		Commitment: solanarpc.CommitmentFinalized,
	}
	if limit > 0 {
		opts.Limit = &limit
	}
	sigs, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, locker, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}
	return sigs, nil
}

func (c *Client) GetSlot(ctx context.Context) (uint64, error) {
	slot, err := c.rpc.GetSlot(ctx, solanarpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get slot: %w", err)
	}
	return slot, nil
}

// CreateLockRequest describes a new locker funded from the client signer's wallet.
type CreateLockRequest struct {
	Locker       solana.PrivateKey
	Vault        solana.PrivateKey
	SourceWallet solana.PublicKey
	Mint         solana.PublicKey
	Owner        solana.PublicKey
	UnlockDate   int64
	Amount       uint64
}

// CreateLock allocates the locker and vault accounts and locks Amount in a single transaction.
func (c *Client) CreateLock(ctx context.Context, req CreateLockRequest) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	signer := c.Signer()
	if signer == nil {
		return solana.Signature{}, nil, ErrNoPrivateKey
	}
	lockerRent, vaultRent, err := c.rentLamports(ctx)
	if err != nil {
		return solana.Signature{}, nil, err
	}

	instructions, err := BuildCreateLockInstructions(c.executor.programID, CreateLockAccountsConfig{
		CreateLockInstructionConfig: CreateLockInstructionConfig{
			Locker:          req.Locker.PublicKey(),
			SourceWallet:    req.SourceWallet,
			SourceAuthority: signer.PublicKey(),
			Vault:           req.Vault.PublicKey(),
			Owner:           req.Owner,
			UnlockDate:      req.UnlockDate,
			Amount:          req.Amount,
		},
		Payer:              signer.PublicKey(),
		Mint:               req.Mint,
		LockerRentLamports: lockerRent,
		VaultRentLamports:  vaultRent,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instructions: %w", err)
	}

	sig, res, err := c.executor.ExecuteTransactions(ctx, instructions, &ExecuteTransactionOptions{
		Signers: []solana.PrivateKey{req.Locker, req.Vault},
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to execute instructions: %w", err)
	}
	return sig, res, nil
}

// ReLock moves a locker's release date forward.
func (c *Client) ReLock(ctx context.Context, config ReLockInstructionConfig) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	instruction, err := BuildReLockInstruction(c.executor.programID, config)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, instruction, config.Locker)
}

// Withdraw releases tokens from a locker's vault. When config.ProgramAuthority is unset the
// authority recorded in the locker is used.
func (c *Client) Withdraw(ctx context.Context, config WithdrawInstructionConfig) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	if config.ProgramAuthority.IsZero() {
		locker, err := c.GetLocker(ctx, config.Locker)
		if err != nil {
			return solana.Signature{}, nil, fmt.Errorf("failed to get locker: %w", err)
		}
		config.ProgramAuthority = locker.ProgramAuthority
	}
	instruction, err := BuildWithdrawInstruction(c.executor.programID, config)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, instruction, config.Locker)
}

// Increment tops up a locker's vault.
func (c *Client) Increment(ctx context.Context, config IncrementInstructionConfig) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	instruction, err := BuildIncrementInstruction(c.executor.programID, config)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, instruction, config.Locker)
}

// SplitRequest describes a split of Amount out of SourceLocker into freshly allocated accounts.
type SplitRequest struct {
	SourceLocker solana.PublicKey
	NewLocker    solana.PrivateKey
	NewVault     solana.PrivateKey
	Amount       uint64
}

// Split allocates the new locker and vault and splits into them in a single transaction.
func (c *Client) Split(ctx context.Context, req SplitRequest) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	signer := c.Signer()
	if signer == nil {
		return solana.Signature{}, nil, ErrNoPrivateKey
	}
	source, err := c.GetLocker(ctx, req.SourceLocker)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to get source locker: %w", err)
	}
	lockerRent, vaultRent, err := c.rentLamports(ctx)
	if err != nil {
		return solana.Signature{}, nil, err
	}

	instructions, err := BuildSplitInstructions(c.executor.programID, SplitAccountsConfig{
		SplitInstructionConfig: SplitInstructionConfig{
			SourceLocker: req.SourceLocker,
			NewLocker:    req.NewLocker.PublicKey(),
			SourceVault:  source.Vault,
			NewVault:     req.NewVault.PublicKey(),
			Amount:       req.Amount,

			SourceProgramAuthority: source.ProgramAuthority,
		},
		Payer:              signer.PublicKey(),
		Mint:               source.Mint,
		Owner:              source.Owner,
		LockerRentLamports: lockerRent,
		VaultRentLamports:  vaultRent,
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instructions: %w", err)
	}

	sig, res, err := c.executor.ExecuteTransactions(ctx, instructions, &ExecuteTransactionOptions{
		Signers: []solana.PrivateKey{req.NewLocker, req.NewVault},
	})
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to execute instructions: %w", err)
	}
	c.cache.Delete(req.SourceLocker)
	return sig, res, nil
}

// ChangeOwner hands a locker to a new owner.
func (c *Client) ChangeOwner(ctx context.Context, config ChangeOwnerInstructionConfig) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	instruction, err := BuildChangeOwnerInstruction(c.executor.programID, config)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to build instruction: %w", err)
	}
	return c.execute(ctx, instruction, config.Locker)
}

func (c *Client) execute(ctx context.Context, instruction solana.Instruction, locker solana.PublicKey) (solana.Signature, *solanarpc.GetTransactionResult, error) {
	defer c.cache.Delete(locker)
	sig, res, err := c.executor.ExecuteTransaction(ctx, instruction, nil)
	if err != nil {
		return solana.Signature{}, nil, fmt.Errorf("failed to execute instruction: %w", err)
	}
	return sig, res, nil
}

func (c *Client) rentLamports(ctx context.Context) (locker, vault uint64, err error) {
	locker, err = c.rpc.GetMinimumBalanceForRentExemption(ctx, LockerAccountSize, solanarpc.CommitmentFinalized)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get locker rent: %w", err)
	}
	vault, err = c.rpc.GetMinimumBalanceForRentExemption(ctx, TokenAccountSize, solanarpc.CommitmentFinalized)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get vault rent: %w", err)
	}
	return locker, vault, nil
}

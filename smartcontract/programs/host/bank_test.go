package host_test

import (
	"encoding/binary"
	"errors"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/locker/smartcontract/programs/host"
	"github.com/stretchr/testify/require"
)

type tokenFixture struct {
	bank  *host.Bank
	mint  solana.PublicKey
	owner solana.PublicKey
	src   solana.PublicKey
	dst   solana.PublicKey
}

func newTokenFixture(t *testing.T, srcAmount, dstAmount uint64) *tokenFixture {
	t.Helper()

	f := &tokenFixture{
		bank:  host.NewBank(log),
		mint:  solana.NewWallet().PublicKey(),
		owner: solana.NewWallet().PublicKey(),
		src:   solana.NewWallet().PublicKey(),
		dst:   solana.NewWallet().PublicKey(),
	}
	f.setTokenAccount(t, f.src, f.owner, srcAmount)
	f.setTokenAccount(t, f.dst, solana.NewWallet().PublicKey(), dstAmount)
	return f
}

func (f *tokenFixture) setTokenAccount(t *testing.T, key, owner solana.PublicKey, amount uint64) {
	t.Helper()
	acct, err := host.NewTokenAccount(f.bank.Rent(), f.mint, owner, amount)
	require.NoError(t, err)
	f.bank.SetAccount(key, acct)
}

func (f *tokenFixture) balance(t *testing.T, key solana.PublicKey) uint64 {
	t.Helper()
	acct := f.bank.Account(key)
	require.NotNil(t, acct)
	tok, err := host.DecodeTokenAccount(acct.Data)
	require.NoError(t, err)
	return tok.Amount
}

func TestHost_Rent_MinimumBalance(t *testing.T) {
	t.Parallel()

	rent := host.DefaultRent()
	require.Equal(t, uint64(2_505_600), rent.MinimumBalance(232))
	require.Equal(t, uint64(2_039_280), rent.MinimumBalance(host.TokenAccountSize))
	require.True(t, rent.IsExempt(2_505_600, 232))
	require.False(t, rent.IsExempt(2_505_599, 232))
}

func TestHost_AlignedBytes(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 95, 96, 104, 165, 232, 4096} {
		buf := host.AlignedBytes(n)
		require.Len(t, buf, n)
		require.True(t, host.IsAligned(buf), "buffer of %d bytes should be aligned", n)
	}

	buf := host.AlignedBytes(64)
	require.False(t, host.IsAligned(buf[1:]))
}

func TestHost_Bank_AccountIsCopied(t *testing.T) {
	t.Parallel()

	bank := host.NewBank(log)
	key := solana.NewWallet().PublicKey()
	bank.SetAccount(key, &host.Account{Lamports: 10, Data: []byte{1, 2, 3}, Owner: solana.SystemProgramID})

	acct := bank.Account(key)
	acct.Data[0] = 9
	acct.Lamports = 0

	again := bank.Account(key)
	require.Equal(t, []byte{1, 2, 3}, again.Data)
	require.Equal(t, uint64(10), again.Lamports)
	require.True(t, host.IsAligned(again.Data))
	require.Nil(t, bank.Account(solana.NewWallet().PublicKey()))
}

func TestHost_Bank_TokenTransfer(t *testing.T) {
	t.Parallel()

	f := newTokenFixture(t, 1000, 5)
	err := f.bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{
			token.NewTransferInstruction(400, f.src, f.dst, f.owner, nil).Build(),
		},
		Signers: []solana.PublicKey{f.owner},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(600), f.balance(t, f.src))
	require.Equal(t, uint64(405), f.balance(t, f.dst))
}

func TestHost_Bank_MissingSignature(t *testing.T) {
	t.Parallel()

	f := newTokenFixture(t, 1000, 0)
	err := f.bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{
			token.NewTransferInstruction(1, f.src, f.dst, f.owner, nil).Build(),
		},
	})
	require.ErrorIs(t, err, host.ErrMissingSignature)
	require.Equal(t, uint64(1000), f.balance(t, f.src))
}

func TestHost_Bank_TokenTransferErrors(t *testing.T) {
	t.Parallel()

	t.Run("insufficient funds", func(t *testing.T) {
		t.Parallel()
		f := newTokenFixture(t, 10, 0)
		err := f.bank.Process(&host.Transaction{
			Instructions: []solana.Instruction{token.NewTransferInstruction(11, f.src, f.dst, f.owner, nil).Build()},
			Signers:      []solana.PublicKey{f.owner},
		})
		require.ErrorIs(t, err, host.ErrTokenInsufficientFunds)
	})

	t.Run("wrong owner", func(t *testing.T) {
		t.Parallel()
		f := newTokenFixture(t, 10, 0)
		other := solana.NewWallet().PublicKey()
		err := f.bank.Process(&host.Transaction{
			Instructions: []solana.Instruction{token.NewTransferInstruction(1, f.src, f.dst, other, nil).Build()},
			Signers:      []solana.PublicKey{other},
		})
		require.ErrorIs(t, err, host.ErrTokenOwnerMismatch)
	})

	t.Run("mint mismatch", func(t *testing.T) {
		t.Parallel()
		f := newTokenFixture(t, 10, 0)
		acct, err := host.NewTokenAccount(f.bank.Rent(), solana.NewWallet().PublicKey(), f.owner, 0)
		require.NoError(t, err)
		f.bank.SetAccount(f.dst, acct)
		err = f.bank.Process(&host.Transaction{
			Instructions: []solana.Instruction{token.NewTransferInstruction(1, f.src, f.dst, f.owner, nil).Build()},
			Signers:      []solana.PublicKey{f.owner},
		})
		require.ErrorIs(t, err, host.ErrTokenMintMismatch)
	})
}

func TestHost_Bank_RollbackOnFailure(t *testing.T) {
	t.Parallel()

	f := newTokenFixture(t, 100, 0)
	err := f.bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{
			token.NewTransferInstruction(60, f.src, f.dst, f.owner, nil).Build(),
			token.NewTransferInstruction(60, f.src, f.dst, f.owner, nil).Build(),
		},
		Signers: []solana.PublicKey{f.owner},
	})
	require.ErrorIs(t, err, host.ErrTokenInsufficientFunds)

	var ixErr *host.InstructionError
	require.True(t, errors.As(err, &ixErr))
	require.Equal(t, 1, ixErr.Index)

	require.Equal(t, uint64(100), f.balance(t, f.src))
	require.Equal(t, uint64(0), f.balance(t, f.dst))
}

func TestHost_Bank_EmptyTransaction(t *testing.T) {
	t.Parallel()

	bank := host.NewBank(log)
	require.ErrorIs(t, bank.Process(&host.Transaction{}), host.ErrEmptyTransaction)
}

func TestHost_Bank_UnknownProgram(t *testing.T) {
	t.Parallel()

	bank := host.NewBank(log)
	err := bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{&solana.GenericInstruction{ProgID: solana.NewWallet().PublicKey()}},
	})
	require.ErrorIs(t, err, host.ErrProgramNotFound)
}

func TestHost_InvokeContext_Clock(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	bank := host.NewBank(log, host.WithClock(clock), host.WithoutRent())

	programID := solana.NewWallet().PublicKey()
	var seen []int64
	var rentSeen bool
	bank.RegisterProgram(programID, host.ProgramFunc(func(ctx *host.InvokeContext) error {
		seen = append(seen, ctx.Now())
		rentSeen = ctx.Rent() != nil
		return nil
	}))

	ix := &solana.GenericInstruction{ProgID: programID}
	require.NoError(t, bank.Process(&host.Transaction{Instructions: []solana.Instruction{ix}}))
	clock.Advance(time.Hour)
	require.NoError(t, bank.Process(&host.Transaction{Instructions: []solana.Instruction{ix}}))

	require.Equal(t, []int64{now.Unix(), now.Add(time.Hour).Unix()}, seen)
	require.False(t, rentSeen)
}

func TestHost_InvokeContext_SignedInvoke(t *testing.T) {
	t.Parallel()

	f := newTokenFixture(t, 0, 0)
	programID := solana.NewWallet().PublicKey()
	seed := []byte("vault")
	authority, bump, err := solana.FindProgramAddress([][]byte{seed}, programID)
	require.NoError(t, err)
	f.setTokenAccount(t, f.src, authority, 500)

	withSeeds := true
	f.bank.RegisterProgram(programID, host.ProgramFunc(func(ctx *host.InvokeContext) error {
		ix := token.NewTransferInstruction(200, f.src, f.dst, authority, nil).Build()
		if withSeeds {
			return ctx.Invoke(ix, [][]byte{seed, {bump}})
		}
		return ctx.Invoke(ix)
	}))

	tx := &host.Transaction{
		Instructions: []solana.Instruction{&solana.GenericInstruction{
			ProgID: programID,
			AccountValues: solana.AccountMetaSlice{
				solana.Meta(f.src).WRITE(),
				solana.Meta(f.dst).WRITE(),
				solana.Meta(authority),
			},
		}},
	}
	require.NoError(t, f.bank.Process(tx))
	require.Equal(t, uint64(300), f.balance(t, f.src))
	require.Equal(t, uint64(200), f.balance(t, f.dst))

	withSeeds = false
	err = f.bank.Process(tx)
	require.ErrorIs(t, err, host.ErrPrivilegeEscalation)
	require.Equal(t, uint64(300), f.balance(t, f.src))
}

func TestHost_InvokeContext_WritableEscalation(t *testing.T) {
	t.Parallel()

	f := newTokenFixture(t, 50, 0)
	programID := solana.NewWallet().PublicKey()
	f.bank.RegisterProgram(programID, host.ProgramFunc(func(ctx *host.InvokeContext) error {
		return ctx.Invoke(token.NewTransferInstruction(1, f.src, f.dst, f.owner, nil).Build())
	}))

	err := f.bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{&solana.GenericInstruction{
			ProgID: programID,
			AccountValues: solana.AccountMetaSlice{
				solana.Meta(f.src).WRITE(),
				solana.Meta(f.dst),
				solana.Meta(f.owner).SIGNER(),
			},
		}},
		Signers: []solana.PublicKey{f.owner},
	})
	require.ErrorIs(t, err, host.ErrPrivilegeEscalation)
}

func TestHost_Bank_DataModificationRules(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	owned := solana.NewWallet().PublicKey()
	foreign := solana.NewWallet().PublicKey()

	bank := host.NewBank(log)
	bank.SetAccount(owned, &host.Account{Lamports: 1, Data: make([]byte, 8), Owner: programID})
	bank.SetAccount(foreign, &host.Account{Lamports: 1, Data: make([]byte, 8), Owner: solana.SystemProgramID})
	bank.RegisterProgram(programID, host.ProgramFunc(func(ctx *host.InvokeContext) error {
		ctx.Accounts[0].Data[0] = 1
		return nil
	}))

	process := func(meta *solana.AccountMeta) error {
		return bank.Process(&host.Transaction{
			Instructions: []solana.Instruction{&solana.GenericInstruction{
				ProgID:        programID,
				AccountValues: solana.AccountMetaSlice{meta},
			}},
		})
	}

	require.ErrorIs(t, process(solana.Meta(foreign).WRITE()), host.ErrExternalAccountDataModified)
	require.ErrorIs(t, process(solana.Meta(owned)), host.ErrReadonlyDataModified)
	require.Equal(t, byte(0), bank.Account(owned).Data[0])

	require.NoError(t, process(solana.Meta(owned).WRITE()))
	require.Equal(t, byte(1), bank.Account(owned).Data[0])
}

func TestHost_InvokeContext_ForeignWriteBeforeInvoke(t *testing.T) {
	t.Parallel()

	f := newTokenFixture(t, 10, 0)
	programID := solana.NewWallet().PublicKey()
	f.bank.RegisterProgram(programID, host.ProgramFunc(func(ctx *host.InvokeContext) error {
		binary.LittleEndian.PutUint64(ctx.Accounts[0].Data[64:], 1_000_000)
		return ctx.Invoke(token.NewTransferInstruction(0, f.src, f.dst, f.owner, nil).Build())
	}))

	err := f.bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{&solana.GenericInstruction{
			ProgID: programID,
			AccountValues: solana.AccountMetaSlice{
				solana.Meta(f.src).WRITE(),
				solana.Meta(f.dst).WRITE(),
				solana.Meta(f.owner).SIGNER(),
			},
		}},
		Signers: []solana.PublicKey{f.owner},
	})
	require.ErrorIs(t, err, host.ErrExternalAccountDataModified)
	require.Equal(t, uint64(10), f.balance(t, f.src))
}

func TestHost_InvokeContext_OwnedWriteBeforeInvoke(t *testing.T) {
	t.Parallel()

	f := newTokenFixture(t, 10, 0)
	programID := solana.NewWallet().PublicKey()
	state := solana.NewWallet().PublicKey()
	f.bank.SetAccount(state, &host.Account{Lamports: 1, Data: make([]byte, 8), Owner: programID})
	f.bank.RegisterProgram(programID, host.ProgramFunc(func(ctx *host.InvokeContext) error {
		ctx.Accounts[3].Data[0] = 7
		if err := ctx.Invoke(token.NewTransferInstruction(4, f.src, f.dst, f.owner, nil).Build()); err != nil {
			return err
		}
		ctx.Accounts[3].Data[1] = 8
		return nil
	}))

	err := f.bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{&solana.GenericInstruction{
			ProgID: programID,
			AccountValues: solana.AccountMetaSlice{
				solana.Meta(f.src).WRITE(),
				solana.Meta(f.dst).WRITE(),
				solana.Meta(f.owner).SIGNER(),
				solana.Meta(state).WRITE(),
			},
		}},
		Signers: []solana.PublicKey{f.owner},
	})
	require.NoError(t, err)
	require.Equal(t, uint64(6), f.balance(t, f.src))
	require.Equal(t, uint64(4), f.balance(t, f.dst))
	require.Equal(t, []byte{7, 8}, f.bank.Account(state).Data[:2])
}

func TestHost_InvokeContext_AccountNotPassedToCaller(t *testing.T) {
	t.Parallel()

	f := newTokenFixture(t, 10, 0)
	programID := solana.NewWallet().PublicKey()
	f.bank.RegisterProgram(programID, host.ProgramFunc(func(ctx *host.InvokeContext) error {
		return ctx.Invoke(token.NewTransferInstruction(1, f.src, f.dst, f.owner, nil).Build())
	}))

	err := f.bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{
			&solana.GenericInstruction{
				ProgID: programID,
				AccountValues: solana.AccountMetaSlice{
					solana.Meta(f.src).WRITE(),
					solana.Meta(f.owner).SIGNER(),
				},
			},
			token.NewTransferInstruction(0, f.src, f.dst, f.owner, nil).Build(),
		},
		Signers: []solana.PublicKey{f.owner},
	})
	require.ErrorIs(t, err, host.ErrMissingAccount, "an account known to the transaction but not to the caller")
	require.Equal(t, uint64(10), f.balance(t, f.src))
}

func TestHost_Bank_SystemCreateAccount(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()
	created := solana.NewWallet().PublicKey()

	bank := host.NewBank(log)
	bank.SetAccount(payer, host.NewSystemAccount(10_000_000))

	ix := system.NewCreateAccountInstruction(3_000_000, 104, programID, payer, created).Build()
	require.NoError(t, bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{ix},
		Signers:      []solana.PublicKey{payer, created},
	}))

	acct := bank.Account(created)
	require.NotNil(t, acct)
	require.Equal(t, programID, acct.Owner)
	require.Equal(t, uint64(3_000_000), acct.Lamports)
	require.Equal(t, make([]byte, 104), acct.Data)
	require.True(t, host.IsAligned(acct.Data))
	require.Equal(t, uint64(7_000_000), bank.Account(payer).Lamports)

	err := bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{ix},
		Signers:      []solana.PublicKey{payer, created},
	})
	require.ErrorIs(t, err, host.ErrSystemAccountInUse)
	require.Equal(t, uint64(7_000_000), bank.Account(payer).Lamports)
}

func TestHost_Bank_SystemCreateAccountErrors(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	payer := solana.NewWallet().PublicKey()

	tests := []struct {
		name     string
		lamports uint64
		space    uint64
		signers  func(created solana.PublicKey) []solana.PublicKey
		wantErr  error
	}{
		{
			name:     "insufficient lamports",
			lamports: 1_000_001,
			space:    8,
			wantErr:  host.ErrSystemInsufficientFunds,
		},
		{
			name:     "space too large",
			lamports: 1,
			space:    host.MaxPermittedDataLength + 1,
			wantErr:  host.ErrSystemInvalidSpace,
		},
		{
			name:     "new account does not sign",
			lamports: 1,
			space:    8,
			signers:  func(solana.PublicKey) []solana.PublicKey { return []solana.PublicKey{payer} },
			wantErr:  host.ErrMissingSignature,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bank := host.NewBank(log)
			bank.SetAccount(payer, host.NewSystemAccount(1_000_000))
			created := solana.NewWallet().PublicKey()
			signers := []solana.PublicKey{payer, created}
			if tt.signers != nil {
				signers = tt.signers(created)
			}

			err := bank.Process(&host.Transaction{
				Instructions: []solana.Instruction{system.NewCreateAccountInstruction(tt.lamports, tt.space, programID, payer, created).Build()},
				Signers:      signers,
			})
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, bank.Account(created))
			require.Equal(t, uint64(1_000_000), bank.Account(payer).Lamports)
		})
	}
}

func TestHost_Bank_TokenInitializeAccount(t *testing.T) {
	t.Parallel()

	bank := host.NewBank(log)
	payer := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	owner := solana.NewWallet().PublicKey()
	bank.SetAccount(payer, host.NewSystemAccount(100_000_000))
	mintAcct, err := host.NewMintAccount(bank.Rent(), 6, 0)
	require.NoError(t, err)
	bank.SetAccount(mint, mintAcct)

	rentExempt := bank.Rent().MinimumBalance(host.TokenAccountSize)
	create := func(wallet, mint solana.PublicKey, lamports uint64) error {
		return bank.Process(&host.Transaction{
			Instructions: []solana.Instruction{
				system.NewCreateAccountInstruction(lamports, host.TokenAccountSize, host.TokenProgramID, payer, wallet).Build(),
				token.NewInitializeAccountInstruction(wallet, mint, owner, solana.SysVarRentPubkey).Build(),
			},
			Signers: []solana.PublicKey{payer, wallet},
		})
	}

	wallet := solana.NewWallet().PublicKey()
	require.NoError(t, create(wallet, mint, rentExempt))
	acct := bank.Account(wallet)
	require.Equal(t, host.TokenProgramID, acct.Owner)
	tok, err := host.DecodeTokenAccount(acct.Data)
	require.NoError(t, err)
	require.Equal(t, mint, tok.Mint)
	require.Equal(t, owner, tok.Owner)
	require.Equal(t, token.Initialized, tok.State)
	require.Equal(t, uint64(0), tok.Amount)

	err = bank.Process(&host.Transaction{
		Instructions: []solana.Instruction{token.NewInitializeAccountInstruction(wallet, mint, owner, solana.SysVarRentPubkey).Build()},
	})
	require.ErrorIs(t, err, host.ErrTokenAlreadyInUse)

	unknownMint := solana.NewWallet().PublicKey()
	rejected := solana.NewWallet().PublicKey()
	require.ErrorIs(t, create(rejected, unknownMint, rentExempt), host.ErrTokenInvalidMint)
	require.Nil(t, bank.Account(rejected), "the allocation rolls back with the failed initialisation")

	require.ErrorIs(t, create(rejected, mint, rentExempt-1), host.ErrTokenNotRentExempt)
	require.Nil(t, bank.Account(rejected))
}

func TestHost_Bank_OwnerReassignment(t *testing.T) {
	t.Parallel()

	programID := solana.NewWallet().PublicKey()
	newOwner := solana.NewWallet().PublicKey()
	zeroed := solana.NewWallet().PublicKey()
	dirty := solana.NewWallet().PublicKey()

	bank := host.NewBank(log)
	bank.SetAccount(zeroed, &host.Account{Lamports: 1, Data: make([]byte, 8), Owner: programID})
	bank.SetAccount(dirty, &host.Account{Lamports: 1, Data: []byte{1, 0, 0, 0}, Owner: programID})
	bank.RegisterProgram(programID, host.ProgramFunc(func(ctx *host.InvokeContext) error {
		ctx.Accounts[0].Owner = newOwner
		return nil
	}))

	process := func(meta *solana.AccountMeta) error {
		return bank.Process(&host.Transaction{
			Instructions: []solana.Instruction{&solana.GenericInstruction{
				ProgID:        programID,
				AccountValues: solana.AccountMetaSlice{meta},
			}},
		})
	}

	require.ErrorIs(t, process(solana.Meta(dirty).WRITE()), host.ErrAccountOwnerModified)
	require.ErrorIs(t, process(solana.Meta(zeroed)), host.ErrAccountOwnerModified)
	require.NoError(t, process(solana.Meta(zeroed).WRITE()))
	require.Equal(t, newOwner, bank.Account(zeroed).Owner)
}

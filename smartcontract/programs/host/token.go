package host

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// TokenProgramID is the address of the built-in SPL token program.
var TokenProgramID = solana.TokenProgramID

const (
	// TokenAccountSize is the packed length of an SPL token account.
	TokenAccountSize = 165

	// MintAccountSize is the packed length of an SPL token mint.
	MintAccountSize = token.MINT_SIZE

	tokenAmountOffset = 64
)

var (
	ErrTokenInvalidInstruction = errors.New("token: invalid instruction")
	ErrTokenInvalidAccount     = errors.New("token: invalid account")
	ErrTokenMintMismatch       = errors.New("token: account not associated with this mint")
	ErrTokenOwnerMismatch      = errors.New("token: owner does not match")
	ErrTokenInsufficientFunds  = errors.New("token: insufficient funds")
	ErrTokenOverflow           = errors.New("token: operation overflowed")
	ErrTokenAlreadyInUse       = errors.New("token: account already in use")
	ErrTokenInvalidMint        = errors.New("token: invalid mint")
	ErrTokenNotRentExempt      = errors.New("token: account not rent exempt")
)

// NewTokenAccount returns an initialised, rent-exempt token account holding amount of mint.
func NewTokenAccount(rent *Rent, mint, owner solana.PublicKey, amount uint64) (*Account, error) {
	buf := new(bytes.Buffer)
	acct := token.Account{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  token.Initialized,
	}
	err := acct.MarshalWithEncoder(bin.NewBinEncoder(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to encode token account: %w", err)
	}
	data := AlignedBytes(buf.Len())
	copy(data, buf.Bytes())
	return &Account{
		Lamports: rent.MinimumBalance(len(data)),
		Data:     data,
		Owner:    TokenProgramID,
	}, nil
}

// NewMintAccount returns an initialised, rent-exempt mint with no mint or freeze authority.
func NewMintAccount(rent *Rent, decimals uint8, supply uint64) (*Account, error) {
	buf := new(bytes.Buffer)
	mint := token.Mint{
		Supply:        supply,
		Decimals:      decimals,
		IsInitialized: true,
	}
	if err := mint.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, fmt.Errorf("failed to encode mint: %w", err)
	}
	data := AlignedBytes(buf.Len())
	copy(data, buf.Bytes())
	return &Account{
		Lamports: rent.MinimumBalance(len(data)),
		Data:     data,
		Owner:    TokenProgramID,
	}, nil
}

// DecodeTokenAccount parses the packed token account layout.
func DecodeTokenAccount(data []byte) (*token.Account, error) {
	if len(data) != TokenAccountSize {
		return nil, fmt.Errorf("%w: length %d", ErrTokenInvalidAccount, len(data))
	}
	var acct token.Account
	if err := acct.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalidAccount, err)
	}
	return &acct, nil
}

type tokenProgram struct{}

func (tokenProgram) Process(ctx *InvokeContext) error {
	dec := bin.NewBinDecoder(ctx.Data)
	tag, err := dec.ReadUint8()
	if err != nil {
		return ErrTokenInvalidInstruction
	}
	switch tag {
	case token.Instruction_InitializeAccount:
		if dec.HasRemaining() {
			return ErrTokenInvalidInstruction
		}
		return tokenInitializeAccount(ctx)
	case token.Instruction_Transfer:
		amount, err := dec.ReadUint64(bin.LE)
		if err != nil || dec.HasRemaining() {
			return ErrTokenInvalidInstruction
		}
		return tokenTransferProcess(ctx, amount)
	default:
		return fmt.Errorf("%w: unsupported instruction %d", ErrTokenInvalidInstruction, tag)
	}
}

// tokenInitializeAccount binds a freshly allocated token account to a mint and an owner.
// Accounts: account (writable), mint, owner, rent sysvar.
func tokenInitializeAccount(ctx *InvokeContext) error {
	if len(ctx.Accounts) < 4 {
		return fmt.Errorf("%w: expected 4 accounts, got %d", ErrTokenInvalidInstruction, len(ctx.Accounts))
	}
	acctInfo, mintInfo, ownerInfo := ctx.Accounts[0], ctx.Accounts[1], ctx.Accounts[2]

	if acctInfo.Owner != ctx.ProgramID || len(acctInfo.Data) != TokenAccountSize {
		return fmt.Errorf("%w: %s is not an allocated token account", ErrTokenInvalidAccount, acctInfo.Key)
	}
	if !acctInfo.IsWritable {
		return fmt.Errorf("%w: %s must be writable", ErrTokenInvalidAccount, acctInfo.Key)
	}
	existing, err := DecodeTokenAccount(acctInfo.Data)
	if err != nil {
		return err
	}
	if existing.State != token.Uninitialized {
		return fmt.Errorf("%w: %s", ErrTokenAlreadyInUse, acctInfo.Key)
	}
	if rent := ctx.Rent(); rent != nil && !rent.IsExempt(acctInfo.Lamports, len(acctInfo.Data)) {
		return fmt.Errorf("%w: %s", ErrTokenNotRentExempt, acctInfo.Key)
	}
	if mintInfo.Owner != ctx.ProgramID || len(mintInfo.Data) != MintAccountSize {
		return fmt.Errorf("%w: %s", ErrTokenInvalidMint, mintInfo.Key)
	}
	var mint token.Mint
	if err := mint.UnmarshalWithDecoder(bin.NewBinDecoder(mintInfo.Data)); err != nil || !mint.IsInitialized {
		return fmt.Errorf("%w: %s is not initialized", ErrTokenInvalidMint, mintInfo.Key)
	}

	buf := new(bytes.Buffer)
	acct := token.Account{
		Mint:  mintInfo.Key,
		Owner: ownerInfo.Key,
		State: token.Initialized,
	}
	if err := acct.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return fmt.Errorf("failed to encode token account: %w", err)
	}
	copy(acctInfo.Data, buf.Bytes())
	ctx.Log.Debug("token account initialized", "account", acctInfo.Key.String(), "mint", mintInfo.Key.String(), "owner", ownerInfo.Key.String())
	return nil
}

func tokenTransferProcess(ctx *InvokeContext, amount uint64) error {
	if len(ctx.Accounts) < 3 {
		return fmt.Errorf("%w: expected 3 accounts, got %d", ErrTokenInvalidInstruction, len(ctx.Accounts))
	}
	srcInfo, dstInfo, authority := ctx.Accounts[0], ctx.Accounts[1], ctx.Accounts[2]

	src, err := tokenAccountFor(ctx, srcInfo)
	if err != nil {
		return err
	}
	dst, err := tokenAccountFor(ctx, dstInfo)
	if err != nil {
		return err
	}
	if src.Mint != dst.Mint {
		return ErrTokenMintMismatch
	}
	if authority.Key != src.Owner {
		return fmt.Errorf("%w: %s is not the owner of %s", ErrTokenOwnerMismatch, authority.Key, srcInfo.Key)
	}
	if !authority.IsSigner {
		return fmt.Errorf("%w: %s", ErrMissingSignature, authority.Key)
	}
	if !srcInfo.IsWritable || !dstInfo.IsWritable {
		return fmt.Errorf("%w: source and destination must be writable", ErrTokenInvalidAccount)
	}
	if src.Amount < amount {
		return ErrTokenInsufficientFunds
	}
	if srcInfo.Key == dstInfo.Key {
		return nil
	}
	if dst.Amount > math.MaxUint64-amount {
		return ErrTokenOverflow
	}

	binary.LittleEndian.PutUint64(srcInfo.Data[tokenAmountOffset:], src.Amount-amount)
	binary.LittleEndian.PutUint64(dstInfo.Data[tokenAmountOffset:], dst.Amount+amount)
	ctx.Log.Debug("token transfer", "source", srcInfo.Key.String(), "destination", dstInfo.Key.String(), "amount", amount)
	return nil
}

func tokenAccountFor(ctx *InvokeContext, info *AccountInfo) (*token.Account, error) {
	if info.Owner != ctx.ProgramID {
		return nil, fmt.Errorf("%w: %s not owned by token program", ErrTokenInvalidAccount, info.Key)
	}
	acct, err := DecodeTokenAccount(info.Data)
	if err != nil {
		return nil, err
	}
	if acct.State != token.Initialized {
		return nil, fmt.Errorf("%w: %s is not initialized or frozen", ErrTokenInvalidAccount, info.Key)
	}
	return acct, nil
}

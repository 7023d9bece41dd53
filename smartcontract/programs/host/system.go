package host

import (
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// SystemProgramID is the address of the built-in system program.
var SystemProgramID = solana.SystemProgramID

// MaxPermittedDataLength bounds the space a single CreateAccount may allocate.
const MaxPermittedDataLength = 10 * 1024 * 1024

var (
	ErrSystemInvalidInstruction = errors.New("system: invalid instruction")
	ErrSystemAccountInUse       = errors.New("system: account already in use")
	ErrSystemInsufficientFunds  = errors.New("system: insufficient lamports")
	ErrSystemInvalidSpace       = errors.New("system: requested space exceeds the permitted length")
)

// NewSystemAccount returns a plain wallet account holding lamports.
func NewSystemAccount(lamports uint64) *Account {
	return &Account{Lamports: lamports, Data: AlignedBytes(0), Owner: SystemProgramID}
}

type systemProgram struct{}

func (systemProgram) Process(ctx *InvokeContext) error {
	dec := bin.NewBinDecoder(ctx.Data)
	tag, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return ErrSystemInvalidInstruction
	}
	switch tag {
	case system.Instruction_CreateAccount:
		lamports, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return ErrSystemInvalidInstruction
		}
		space, err := dec.ReadUint64(bin.LE)
		if err != nil {
			return ErrSystemInvalidInstruction
		}
		owner, err := dec.ReadNBytes(solana.PublicKeyLength)
		if err != nil || dec.HasRemaining() {
			return ErrSystemInvalidInstruction
		}
		return systemCreateAccount(ctx, lamports, space, solana.PublicKeyFromBytes(owner))
	default:
		return fmt.Errorf("%w: unsupported instruction %d", ErrSystemInvalidInstruction, tag)
	}
}

func systemCreateAccount(ctx *InvokeContext, lamports, space uint64, owner solana.PublicKey) error {
	if len(ctx.Accounts) < 2 {
		return fmt.Errorf("%w: expected 2 accounts, got %d", ErrSystemInvalidInstruction, len(ctx.Accounts))
	}
	funding, created := ctx.Accounts[0], ctx.Accounts[1]

	for _, info := range []*AccountInfo{funding, created} {
		if !info.IsSigner {
			return fmt.Errorf("%w: %s", ErrMissingSignature, info.Key)
		}
		if !info.IsWritable {
			return fmt.Errorf("%w: %s must be writable", ErrSystemInvalidInstruction, info.Key)
		}
	}
	if funding.Key == created.Key {
		return fmt.Errorf("%w: funding and new account are the same", ErrSystemInvalidInstruction)
	}
	if created.Lamports != 0 || len(created.Data) != 0 || created.Owner != ctx.ProgramID {
		return fmt.Errorf("%w: %s", ErrSystemAccountInUse, created.Key)
	}
	if space > MaxPermittedDataLength {
		return fmt.Errorf("%w: %d", ErrSystemInvalidSpace, space)
	}
	if funding.Owner != ctx.ProgramID || len(funding.Data) != 0 {
		return fmt.Errorf("%w: funding account %s must be a system account", ErrSystemInvalidInstruction, funding.Key)
	}
	if funding.Lamports < lamports {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrSystemInsufficientFunds, funding.Key, funding.Lamports, lamports)
	}

	funding.Lamports -= lamports
	created.Lamports = lamports
	created.Data = AlignedBytes(int(space))
	created.Owner = owner
	ctx.Log.Debug("account created", "account", created.Key.String(), "owner", owner.String(), "space", space, "lamports", lamports)
	return nil
}

package locker

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/near/borsh-go"
)

type CreateLockInstructionConfig struct {
	Locker          solana.PublicKey
	SourceWallet    solana.PublicKey
	SourceAuthority solana.PublicKey
	Vault           solana.PublicKey
	Owner           solana.PublicKey
	UnlockDate      int64
	Amount          uint64
}

func (c *CreateLockInstructionConfig) Validate() error {
	if c.Locker.IsZero() {
		return fmt.Errorf("locker public key is required")
	}
	if c.SourceWallet.IsZero() {
		return fmt.Errorf("source wallet public key is required")
	}
	if c.SourceAuthority.IsZero() {
		return fmt.Errorf("source authority public key is required")
	}
	if c.Vault.IsZero() {
		return fmt.Errorf("vault public key is required")
	}
	if c.Owner.IsZero() {
		return fmt.Errorf("owner public key is required")
	}
	if c.Vault == c.SourceWallet {
		return fmt.Errorf("vault and source wallet must differ")
	}
	return nil
}

func BuildCreateLockInstruction(
	programID solana.PublicKey,
	config CreateLockInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator uint8
		UnlockDate    int64
		Amount        uint64
	}{
		Discriminator: uint8(CreateLockInstructionIndex),
		UnlockDate:    config.UnlockDate,
		Amount:        config.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	authorityPDA, _, err := DeriveProgramAuthorityPDA(programID, config.Locker, config.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive program authority PDA: %w", err)
	}
	allocatorPDA, _, err := DeriveAllocatorPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive allocator PDA: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Locker, IsSigner: false, IsWritable: true},
		{PublicKey: config.SourceWallet, IsSigner: false, IsWritable: true},
		{PublicKey: config.SourceAuthority, IsSigner: true, IsWritable: false},
		{PublicKey: config.Vault, IsSigner: false, IsWritable: true},
		{PublicKey: authorityPDA, IsSigner: false, IsWritable: false},
		{PublicKey: config.Owner, IsSigner: false, IsWritable: false},
		{PublicKey: allocatorPDA, IsSigner: false, IsWritable: true},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}

// CreateLockAccountsConfig describes the accounts funded ahead of a CreateLock instruction.
type CreateLockAccountsConfig struct {
	CreateLockInstructionConfig

	Payer              solana.PublicKey
	Mint               solana.PublicKey
	LockerRentLamports uint64
	VaultRentLamports  uint64
}

func (c *CreateLockAccountsConfig) Validate() error {
	if err := c.CreateLockInstructionConfig.Validate(); err != nil {
		return err
	}
	if c.Payer.IsZero() {
		return fmt.Errorf("payer public key is required")
	}
	if c.Mint.IsZero() {
		return fmt.Errorf("mint public key is required")
	}
	if c.LockerRentLamports == 0 || c.VaultRentLamports == 0 {
		return fmt.Errorf("rent lamports are required")
	}
	return nil
}

// BuildCreateLockInstructions returns the full instruction sequence for a new locker: the vault
// token account is created and initialised under the derived program authority, the locker
// account is allocated to the program, and CreateLock runs last. The vault and locker keys must
// sign the resulting transaction.
func BuildCreateLockInstructions(
	programID solana.PublicKey,
	config CreateLockAccountsConfig,
) ([]solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	authorityPDA, _, err := DeriveProgramAuthorityPDA(programID, config.Locker, config.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive program authority PDA: %w", err)
	}

	createVault := system.NewCreateAccountInstruction(
		config.VaultRentLamports,
		TokenAccountSize,
		solana.TokenProgramID,
		config.Payer,
		config.Vault,
	).Build()
	initVault := token.NewInitializeAccountInstruction(
		config.Vault,
		config.Mint,
		authorityPDA,
		solana.SysVarRentPubkey,
	).Build()
	createLocker := system.NewCreateAccountInstruction(
		config.LockerRentLamports,
		LockerAccountSize,
		programID,
		config.Payer,
		config.Locker,
	).Build()
	createLock, err := BuildCreateLockInstruction(programID, config.CreateLockInstructionConfig)
	if err != nil {
		return nil, err
	}

	return []solana.Instruction{createVault, initVault, createLocker, createLock}, nil
}

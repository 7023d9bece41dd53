package locker

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/near/borsh-go"
)

type SplitInstructionConfig struct {
	SourceLocker solana.PublicKey
	NewLocker    solana.PublicKey
	SourceVault  solana.PublicKey
	NewVault     solana.PublicKey
	Amount       uint64

	// SourceProgramAuthority is the authority recorded on the source locker. The program signs
	// the vault transfer for it.
	SourceProgramAuthority solana.PublicKey
}

func (c *SplitInstructionConfig) Validate() error {
	if c.SourceLocker.IsZero() {
		return fmt.Errorf("source locker public key is required")
	}
	if c.NewLocker.IsZero() {
		return fmt.Errorf("new locker public key is required")
	}
	if c.SourceVault.IsZero() {
		return fmt.Errorf("source vault public key is required")
	}
	if c.NewVault.IsZero() {
		return fmt.Errorf("new vault public key is required")
	}
	if c.SourceProgramAuthority.IsZero() {
		return fmt.Errorf("source program authority public key is required")
	}
	if c.SourceLocker == c.NewLocker {
		return fmt.Errorf("source and new locker must differ")
	}
	return nil
}

func BuildSplitInstruction(
	programID solana.PublicKey,
	config SplitInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator uint8
		Amount        uint64
	}{
		Discriminator: uint8(SplitInstructionIndex),
		Amount:        config.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	allocatorPDA, _, err := DeriveAllocatorPDA(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive allocator PDA: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.SourceLocker, IsSigner: false, IsWritable: false},
		{PublicKey: config.NewLocker, IsSigner: false, IsWritable: true},
		{PublicKey: config.SourceVault, IsSigner: false, IsWritable: true},
		{PublicKey: config.NewVault, IsSigner: false, IsWritable: true},
		{PublicKey: allocatorPDA, IsSigner: false, IsWritable: true},
		{PublicKey: config.SourceProgramAuthority, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}

// SplitAccountsConfig describes the accounts funded ahead of a Split instruction.
type SplitAccountsConfig struct {
	SplitInstructionConfig

	Payer              solana.PublicKey
	Mint               solana.PublicKey
	Owner              solana.PublicKey
	LockerRentLamports uint64
	VaultRentLamports  uint64
}

func (c *SplitAccountsConfig) Validate() error {
	if err := c.SplitInstructionConfig.Validate(); err != nil {
		return err
	}
	if c.Payer.IsZero() {
		return fmt.Errorf("payer public key is required")
	}
	if c.Mint.IsZero() {
		return fmt.Errorf("mint public key is required")
	}
	if c.Owner.IsZero() {
		return fmt.Errorf("owner public key is required")
	}
	if c.LockerRentLamports == 0 || c.VaultRentLamports == 0 {
		return fmt.Errorf("rent lamports are required")
	}
	return nil
}

// BuildSplitInstructions returns the instruction sequence that allocates the new locker and its
// vault, then splits into them. The new vault is initialised under the authority derived for the
// new locker and the source owner. A zero SourceProgramAuthority is derived from the source
// locker and owner.
func BuildSplitInstructions(
	programID solana.PublicKey,
	config SplitAccountsConfig,
) ([]solana.Instruction, error) {
	if config.SourceProgramAuthority.IsZero() && !config.SourceLocker.IsZero() && !config.Owner.IsZero() {
		sourceAuthority, _, err := DeriveProgramAuthorityPDA(programID, config.SourceLocker, config.Owner)
		if err != nil {
			return nil, fmt.Errorf("failed to derive source program authority PDA: %w", err)
		}
		config.SourceProgramAuthority = sourceAuthority
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	authorityPDA, _, err := DeriveProgramAuthorityPDA(programID, config.NewLocker, config.Owner)
	if err != nil {
		return nil, fmt.Errorf("failed to derive program authority PDA: %w", err)
	}

	splitIx, err := BuildSplitInstruction(programID, config.SplitInstructionConfig)
	if err != nil {
		return nil, err
	}

	return []solana.Instruction{
		system.NewCreateAccountInstruction(config.VaultRentLamports, TokenAccountSize, solana.TokenProgramID, config.Payer, config.NewVault).Build(),
		token.NewInitializeAccountInstruction(config.NewVault, config.Mint, authorityPDA, solana.SysVarRentPubkey).Build(),
		system.NewCreateAccountInstruction(config.LockerRentLamports, LockerAccountSize, programID, config.Payer, config.NewLocker).Build(),
		splitIx,
	}, nil
}

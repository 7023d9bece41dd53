package locker

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type WithdrawInstructionConfig struct {
	Locker      solana.PublicKey
	Vault       solana.PublicKey
	Destination solana.PublicKey
	Owner       solana.PublicKey
	Amount      uint64

	// ProgramAuthority is the authority recorded in the locker. When zero it is derived from
	// Locker and Owner, which only matches lockers whose ownership never changed.
	ProgramAuthority solana.PublicKey
}

func (c *WithdrawInstructionConfig) Validate() error {
	if c.Locker.IsZero() {
		return fmt.Errorf("locker public key is required")
	}
	if c.Vault.IsZero() {
		return fmt.Errorf("vault public key is required")
	}
	if c.Destination.IsZero() {
		return fmt.Errorf("destination public key is required")
	}
	if c.Owner.IsZero() {
		return fmt.Errorf("owner public key is required")
	}
	return nil
}

func BuildWithdrawInstruction(
	programID solana.PublicKey,
	config WithdrawInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator uint8
		Amount        uint64
	}{
		Discriminator: uint8(WithdrawInstructionIndex),
		Amount:        config.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	authority := config.ProgramAuthority
	if authority.IsZero() {
		authority, _, err = DeriveProgramAuthorityPDA(programID, config.Locker, config.Owner)
		if err != nil {
			return nil, fmt.Errorf("failed to derive program authority PDA: %w", err)
		}
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Locker, IsSigner: false, IsWritable: true},
		{PublicKey: config.Vault, IsSigner: false, IsWritable: true},
		{PublicKey: config.Destination, IsSigner: false, IsWritable: true},
		{PublicKey: authority, IsSigner: false, IsWritable: false},
		{PublicKey: config.Owner, IsSigner: true, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}

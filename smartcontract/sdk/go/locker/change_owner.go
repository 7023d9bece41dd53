package locker

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type ChangeOwnerInstructionConfig struct {
	Locker       solana.PublicKey
	CurrentOwner solana.PublicKey
	NewOwner     solana.PublicKey
}

func (c *ChangeOwnerInstructionConfig) Validate() error {
	if c.Locker.IsZero() {
		return fmt.Errorf("locker public key is required")
	}
	if c.CurrentOwner.IsZero() {
		return fmt.Errorf("current owner public key is required")
	}
	if c.NewOwner.IsZero() {
		return fmt.Errorf("new owner public key is required")
	}
	return nil
}

func BuildChangeOwnerInstruction(
	programID solana.PublicKey,
	config ChangeOwnerInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	// The amount field is carried on the wire but unused by the program.
	data, err := borsh.Serialize(struct {
		Discriminator uint8
		Amount        uint64
	}{
		Discriminator: uint8(ChangeOwnerInstructionIndex),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Locker, IsSigner: false, IsWritable: true},
		{PublicKey: config.CurrentOwner, IsSigner: true, IsWritable: false},
		{PublicKey: config.NewOwner, IsSigner: false, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}

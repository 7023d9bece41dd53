package locker

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type ReLockInstructionConfig struct {
	Locker     solana.PublicKey
	Owner      solana.PublicKey
	UnlockDate int64
}

func (c *ReLockInstructionConfig) Validate() error {
	if c.Locker.IsZero() {
		return fmt.Errorf("locker public key is required")
	}
	if c.Owner.IsZero() {
		return fmt.Errorf("owner public key is required")
	}
	return nil
}

func BuildReLockInstruction(
	programID solana.PublicKey,
	config ReLockInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator uint8
		UnlockDate    int64
	}{
		Discriminator: uint8(ReLockInstructionIndex),
		UnlockDate:    config.UnlockDate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Locker, IsSigner: false, IsWritable: true},
		{PublicKey: config.Owner, IsSigner: true, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}

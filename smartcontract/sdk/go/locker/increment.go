package locker

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/near/borsh-go"
)

type IncrementInstructionConfig struct {
	Locker          solana.PublicKey
	Vault           solana.PublicKey
	SourceWallet    solana.PublicKey
	SourceAuthority solana.PublicKey
	Amount          uint64
}

func (c *IncrementInstructionConfig) Validate() error {
	if c.Locker.IsZero() {
		return fmt.Errorf("locker public key is required")
	}
	if c.Vault.IsZero() {
		return fmt.Errorf("vault public key is required")
	}
	if c.SourceWallet.IsZero() {
		return fmt.Errorf("source wallet public key is required")
	}
	if c.SourceAuthority.IsZero() {
		return fmt.Errorf("source authority public key is required")
	}
	return nil
}

func BuildIncrementInstruction(
	programID solana.PublicKey,
	config IncrementInstructionConfig,
) (solana.Instruction, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	data, err := borsh.Serialize(struct {
		Discriminator uint8
		Amount        uint64
	}{
		Discriminator: uint8(IncrementInstructionIndex),
		Amount:        config.Amount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize args: %w", err)
	}

	accounts := []*solana.AccountMeta{
		{PublicKey: config.Locker, IsSigner: false, IsWritable: false},
		{PublicKey: config.Vault, IsSigner: false, IsWritable: true},
		{PublicKey: config.SourceWallet, IsSigner: false, IsWritable: true},
		{PublicKey: config.SourceAuthority, IsSigner: true, IsWritable: false},
	}

	return &solana.GenericInstruction{
		ProgID:        programID,
		AccountValues: accounts,
		DataBytes:     data,
	}, nil
}

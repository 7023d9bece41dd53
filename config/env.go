package config

import (
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

const (
	EnvMainnetBeta = "mainnet-beta"
	EnvMainnet     = "mainnet"
	EnvTestnet     = "testnet"
	EnvDevnet      = "devnet"
	EnvLocalnet    = "localnet"
)

const (
	// LedgerRPCURLEnvVar overrides the RPC endpoint of the selected environment.
	LedgerRPCURLEnvVar = "LOCKER_LEDGER_RPC_URL"

	// ProgramIDEnvVar sets the locker program ID. Required on every environment but localnet.
	ProgramIDEnvVar = "LOCKER_PROGRAM_ID"
)

var (
	ErrInvalidEnvironment = fmt.Errorf("invalid environment")
	ErrMissingProgramID   = fmt.Errorf("missing locker program ID")
)

type NetworkConfig struct {
	Moniker            string
	LedgerPublicRPCURL string
	LockerProgramID    solana.PublicKey
}

func NetworkConfigForEnv(env string) (*NetworkConfig, error) {
	var (
		moniker   string
		rpcURL    string
		programID string
	)
	switch env {
	case EnvMainnetBeta, EnvMainnet:
		moniker, rpcURL = EnvMainnetBeta, MainnetLedgerPublicRPCURL
	case EnvTestnet:
		moniker, rpcURL = EnvTestnet, TestnetLedgerPublicRPCURL
	case EnvDevnet:
		moniker, rpcURL = EnvDevnet, DevnetLedgerPublicRPCURL
	case EnvLocalnet:
		moniker, rpcURL, programID = EnvLocalnet, LocalnetLedgerPublicRPCURL, LocalnetLockerProgramID
	default:
		// Localnet is left out of the message on purpose.
		return nil, fmt.Errorf("%w %q, must be one of: %s, %s, %s", ErrInvalidEnvironment, env, EnvMainnetBeta, EnvTestnet, EnvDevnet)
	}

	if override := os.Getenv(ProgramIDEnvVar); override != "" {
		programID = override
	}
	if programID == "" {
		return nil, fmt.Errorf("%w for %s, set %s", ErrMissingProgramID, moniker, ProgramIDEnvVar)
	}
	lockerProgramID, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse locker program ID: %w", err)
	}

	config := &NetworkConfig{
		Moniker:            moniker,
		LedgerPublicRPCURL: rpcURL,
		LockerProgramID:    lockerProgramID,
	}

	ledgerRPCURL := os.Getenv(LedgerRPCURLEnvVar)
	if ledgerRPCURL != "" {
		config.LedgerPublicRPCURL = ledgerRPCURL
	}

	return config, nil
}

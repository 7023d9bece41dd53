package config

const (
	// Public cluster RPC endpoints. The locker program address on these clusters is deployment
	// specific and must be supplied through LOCKER_PROGRAM_ID or --program-id.
	MainnetLedgerPublicRPCURL = "https://api.mainnet-beta.solana.com"
	TestnetLedgerPublicRPCURL = "https://api.testnet.solana.com"
	DevnetLedgerPublicRPCURL  = "https://api.devnet.solana.com"

	// Localnet constants, matching a solana-test-validator started with the program preloaded.
	LocalnetLedgerPublicRPCURL = "http://localhost:8899"
	LocalnetLockerProgramID    = "EZrX4sFcdfxY7ZYbZU7AHChUii9GMiGWEKgj1aCQjwQX"
)

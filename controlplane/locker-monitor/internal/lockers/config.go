package lockers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/locker/smartcontract/sdk/go/locker"
)

const (
	defaultBatchSize  = locker.MaxMultipleAccounts
	defaultPoolSize   = 4
	defaultMaxRetries = 5
)

type LockerClient interface {
	ProgramID() solana.PublicKey
	GetLockers(ctx context.Context) ([]locker.Locker, error)
	GetTokenBalances(ctx context.Context, wallets []solana.PublicKey) (map[solana.PublicKey]uint64, error)
	GetSlot(ctx context.Context) (uint64, error)
}

type Config struct {
	Logger   *slog.Logger
	Client   LockerClient
	Metrics  *Metrics
	Clock    clockwork.Clock
	Interval time.Duration

	// BatchSize is the number of vaults fetched per request, at most locker.MaxMultipleAccounts.
	BatchSize int

	// PoolSize bounds the number of vault batches fetched concurrently.
	PoolSize int

	// MaxRetries bounds the attempts for each RPC call within a tick.
	MaxRetries uint
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Client == nil {
		return errors.New("client is required")
	}
	if c.Metrics == nil {
		return errors.New("metrics is required")
	}
	if c.Interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	if c.BatchSize > locker.MaxMultipleAccounts {
		return errors.New("batch size must not exceed 100")
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.PoolSize <= 0 {
		c.PoolSize = defaultPoolSize
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = defaultMaxRetries
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
	return nil
}

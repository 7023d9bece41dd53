package lockers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"github.com/malbeclabs/locker/smartcontract/sdk/go/locker"
)

const (
	watcherName = "lockers"
)

type LockerWatcher struct {
	log  *slog.Logger
	cfg  *Config
	pool pond.ResultPool[map[solana.PublicKey]uint64]
}

func NewLockerWatcher(cfg *Config) (*LockerWatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LockerWatcher{
		log:  cfg.Logger.With("watcher", watcherName),
		cfg:  cfg,
		pool: pond.NewResultPool[map[solana.PublicKey]uint64](cfg.PoolSize),
	}, nil
}

func (w *LockerWatcher) Name() string {
	return watcherName
}

func (w *LockerWatcher) Run(ctx context.Context) error {
	defer w.pool.StopAndWait()

	ticker := w.cfg.Clock.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	err := w.Tick(ctx)
	if err != nil {
		w.log.Error("failed to tick", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("context done, stopping")
			return nil
		case <-ticker.Chan():
			err := w.Tick(ctx)
			if err != nil {
				w.log.Error("failed to tick", "error", err)
			}
		}
	}
}

// Tick scans every locker of the program and refreshes the gauges. A failed scan leaves the
// previous values in place.
func (w *LockerWatcher) Tick(ctx context.Context) error {
	w.log.Debug("ticking lockers")
	start := w.cfg.Clock.Now()
	defer func() {
		w.cfg.Metrics.TickDuration.Observe(w.cfg.Clock.Since(start).Seconds())
	}()

	slot, err := retry(ctx, w, "get slot", func() (uint64, error) {
		return w.cfg.Client.GetSlot(ctx)
	})
	if err != nil {
		w.cfg.Metrics.Errors.WithLabelValues(MetricErrorTypeGetSlot).Inc()
		w.log.Warn("failed to get slot", "error", err)
	} else {
		w.cfg.Metrics.Slot.Set(float64(slot))
	}

	lockers, err := retry(ctx, w, "get lockers", func() ([]locker.Locker, error) {
		return w.cfg.Client.GetLockers(ctx)
	})
	if err != nil {
		w.cfg.Metrics.Errors.WithLabelValues(MetricErrorTypeGetLockers).Inc()
		return fmt.Errorf("failed to get lockers: %w", err)
	}

	balances, err := w.getVaultBalances(ctx, lockers)
	if err != nil {
		w.cfg.Metrics.Errors.WithLabelValues(MetricErrorTypeGetVaultBalances).Inc()
		return fmt.Errorf("failed to get vault balances: %w", err)
	}

	w.record(lockers, balances)
	return nil
}

func (w *LockerWatcher) getVaultBalances(ctx context.Context, lockers []locker.Locker) (map[solana.PublicKey]uint64, error) {
	group := w.pool.NewGroupContext(ctx)
	for start := 0; start < len(lockers); start += w.cfg.BatchSize {
		end := min(start+w.cfg.BatchSize, len(lockers))
		vaults := make([]solana.PublicKey, 0, end-start)
		for _, l := range lockers[start:end] {
			vaults = append(vaults, l.Vault)
		}
		group.SubmitErr(func() (map[solana.PublicKey]uint64, error) {
			return retry(ctx, w, "get vault balances", func() (map[solana.PublicKey]uint64, error) {
				return w.cfg.Client.GetTokenBalances(ctx, vaults)
			})
		})
	}

	results, err := group.Wait()
	if err != nil {
		return nil, err
	}

	balances := make(map[solana.PublicKey]uint64, len(lockers))
	for _, result := range results {
		for vault, amount := range result {
			balances[vault] = amount
		}
	}
	return balances, nil
}

func (w *LockerWatcher) record(lockers []locker.Locker, balances map[solana.PublicKey]uint64) {
	now := w.cfg.Clock.Now()
	programID := w.cfg.Client.ProgramID()

	var releasable, stale, missing int
	locked := make(map[solana.PublicKey]float64)
	for i := range lockers {
		l := &lockers[i]
		if l.IsReleasable(now) {
			releasable++
		}

		isStale, err := l.HasStaleAuthority(programID)
		if err != nil {
			w.cfg.Metrics.Errors.WithLabelValues(MetricErrorTypeDeriveAuthority).Inc()
			w.log.Warn("failed to check program authority", "locker", l.PubKey.String(), "error", err)
		} else if isStale {
			stale++
		}

		amount, ok := balances[l.Vault]
		if !ok {
			missing++
			w.log.Warn("vault missing or not a token account", "locker", l.PubKey.String(), "vault", l.Vault.String())
			continue
		}
		locked[l.Mint] += float64(amount)
	}

	w.cfg.Metrics.Lockers.Set(float64(len(lockers)))
	w.cfg.Metrics.Releasable.Set(float64(releasable))
	w.cfg.Metrics.StaleAuthority.Set(float64(stale))
	w.cfg.Metrics.MissingVaults.Set(float64(missing))
	w.cfg.Metrics.Families.Set(float64(len(locker.NewLineage(lockers).Roots())))

	w.cfg.Metrics.LockedAmount.Reset()
	for mint, amount := range locked {
		w.cfg.Metrics.LockedAmount.WithLabelValues(mint.String()).Set(amount)
	}

	w.log.Debug("lockers scanned", "lockers", len(lockers), "releasable", releasable, "stale", stale, "missingVaults", missing, "mints", len(locked))
}

func retry[T any](ctx context.Context, w *LockerWatcher, op string, fn func() (T, error)) (T, error) {
	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		if attempt > 0 {
			w.log.Warn("rpc call failed, retrying", "op", op, "attempt", attempt)
		}
		attempt++
		return fn()
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(w.cfg.MaxRetries))
}

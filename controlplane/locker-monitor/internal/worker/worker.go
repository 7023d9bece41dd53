package worker

import (
	"context"
	"log/slog"

	"github.com/malbeclabs/locker/controlplane/locker-monitor/internal/lockers"
)

type Watcher interface {
	Name() string
	Run(ctx context.Context) error
}

type Worker struct {
	log *slog.Logger
	cfg *Config

	watchers []Watcher
}

func New(cfg *Config) (*Worker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lockerMetrics := lockers.NewMetrics()
	lockerMetrics.Register(cfg.Registerer)
	lockerWatcher, err := lockers.NewLockerWatcher(&lockers.Config{
		Logger:     cfg.Logger,
		Client:     cfg.Client,
		Metrics:    lockerMetrics,
		Clock:      cfg.Clock,
		Interval:   cfg.Interval,
		BatchSize:  cfg.BatchSize,
		PoolSize:   cfg.PoolSize,
		MaxRetries: cfg.MaxRetries,
	})
	if err != nil {
		return nil, err
	}

	return &Worker{
		log:      cfg.Logger,
		cfg:      cfg,
		watchers: []Watcher{lockerWatcher},
	}, nil
}

func (w *Worker) Run(ctx context.Context) error {
	w.log.Info("Starting worker")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for _, watcher := range w.watchers {
		go func(watcher Watcher) {
			name := watcher.Name()
			w.log.Info("Starting watcher", "name", name)
			err := watcher.Run(ctx)
			if err != nil {
				w.log.Error("Failed to run watcher", "name", name, "error", err)
				cancel()
			}
		}(watcher)
	}

	<-ctx.Done()
	w.log.Info("Shutting down worker")

	return nil
}

package worker

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/malbeclabs/locker/controlplane/locker-monitor/internal/lockers"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	Logger     *slog.Logger
	Client     lockers.LockerClient
	Clock      clockwork.Clock
	Registerer prometheus.Registerer
	Interval   time.Duration
	BatchSize  int
	PoolSize   int
	MaxRetries uint
}

func (c *Config) Validate() error {
	if c.Logger == nil {
		return errors.New("logger is required")
	}
	if c.Client == nil {
		return errors.New("locker client is required")
	}
	if c.Interval <= 0 {
		return errors.New("interval must be greater than 0")
	}
	if c.Registerer == nil {
		c.Registerer = prometheus.DefaultRegisterer
	}
	return nil
}

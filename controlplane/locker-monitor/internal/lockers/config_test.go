package lockers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLockerMonitor_Lockers_Config_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		return &Config{
			Logger:   newTestLogger(t),
			Client:   &mockLockerClient{},
			Metrics:  NewMetrics(),
			Interval: time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid"},
		{name: "missing logger", mutate: func(c *Config) { c.Logger = nil }, wantErr: "logger is required"},
		{name: "missing client", mutate: func(c *Config) { c.Client = nil }, wantErr: "client is required"},
		{name: "missing metrics", mutate: func(c *Config) { c.Metrics = nil }, wantErr: "metrics is required"},
		{name: "zero interval", mutate: func(c *Config) { c.Interval = 0 }, wantErr: "interval must be greater than 0"},
		{name: "oversized batch", mutate: func(c *Config) { c.BatchSize = 101 }, wantErr: "batch size must not exceed 100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := cfg.Validate()
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestLockerMonitor_Lockers_Config_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		Logger:   newTestLogger(t),
		Client:   &mockLockerClient{},
		Metrics:  NewMetrics(),
		Interval: time.Second,
	}
	require.NoError(t, cfg.Validate())
	require.Equal(t, defaultBatchSize, cfg.BatchSize)
	require.Equal(t, defaultPoolSize, cfg.PoolSize)
	require.Equal(t, uint(defaultMaxRetries), cfg.MaxRetries)
	require.NotNil(t, cfg.Clock)
}

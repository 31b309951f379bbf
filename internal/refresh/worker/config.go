package worker

import "time"

// Config controls the refresh worker loop.
type Config struct {
	PollInterval time.Duration
	CycleTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 2 * time.Minute,
		CycleTimeout: 15 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.CycleTimeout <= 0 {
		c.CycleTimeout = defaults.CycleTimeout
	}
	return c
}

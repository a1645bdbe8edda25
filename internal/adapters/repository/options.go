package repository

import "time"

// MemoryOption applies a configuration option to the memory stores.
type MemoryOption func(*memoryConfig)

type memoryConfig struct {
	now func() time.Time
}

// WithClock overrides the time source used for generated timestamps.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *memoryConfig) {
		if now != nil {
			c.now = now
		}
	}
}

func newMemoryConfig(opts []MemoryOption) memoryConfig {
	c := memoryConfig{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

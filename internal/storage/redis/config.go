package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// HistoryTTL expires a seed's match history after inactivity.
	HistoryTTL time.Duration

	// MaxRecordsPerSeed bounds the history list length per seed.
	MaxRecordsPerSeed int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:               "redis://localhost:6379",
		PoolSize:          10,
		MinIdleConns:      2,
		HistoryTTL:        24 * time.Hour,
		MaxRecordsPerSeed: 50,
	}
}

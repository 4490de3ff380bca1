// internal/workers/matching/compute-matches/config.go
package computematches

import "time"

type Config struct {
	Timeout     time.Duration
	MaxPoolSize int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		MaxPoolSize: 500,
	}
}

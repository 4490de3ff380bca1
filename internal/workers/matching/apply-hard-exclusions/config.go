// internal/workers/matching/apply-hard-exclusions/config.go
package applyhardexclusions

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

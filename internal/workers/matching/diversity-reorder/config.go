// internal/workers/matching/diversity-reorder/config.go
package diversityreorder

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}

// internal/workers/data-access/query-trainer-pool/config.go
package querytrainerpool

import "time"

type Config struct {
	Timeout      time.Duration
	TrainerIndex string
	MaxPoolSize  int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      15 * time.Second,
		TrainerIndex: "trainers",
		MaxPoolSize:  500,
	}
}

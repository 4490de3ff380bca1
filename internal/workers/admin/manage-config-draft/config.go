// internal/workers/admin/manage-config-draft/config.go
package manageconfigdraft

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}

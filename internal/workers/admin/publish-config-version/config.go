// internal/workers/admin/publish-config-version/config.go
package publishconfigversion

import "time"

type Config struct {
	Timeout     time.Duration
	SenderEmail string
	AdminEmail  string
	AdminPhone  string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     15 * time.Second,
		SenderEmail: "noreply@fitmatch.io",
	}
}

// internal/workflow/claim/config.go
package claim

import "time"

type Config struct {
	ReviewerRoleID string
	// GatewayTimeout bounds each individual gateway call inside a
	// claim so a hung call cannot hold the message lock forever.
	GatewayTimeout time.Duration
}

func LoadConfig(reviewerRoleID string, gatewayTimeout time.Duration) *Config {
	return &Config{
		ReviewerRoleID: reviewerRoleID,
		GatewayTimeout: gatewayTimeout,
	}
}

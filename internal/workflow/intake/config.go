// internal/workflow/intake/config.go
package intake

import "time"

type Config struct {
	// ReviewChannelID is where rendered applications are posted.
	ReviewChannelID string
	// QueueSize bounds the hand-off channel between the HTTP handler
	// and the poster.
	QueueSize int
	// PostTimeout bounds the gateway send for one application.
	PostTimeout time.Duration
	// MaxBodyBytes bounds the inbound request body.
	MaxBodyBytes int64
}

func LoadConfig(reviewChannelID string, queueSize int, postTimeout time.Duration) *Config {
	return &Config{
		ReviewChannelID: reviewChannelID,
		QueueSize:       queueSize,
		PostTimeout:     postTimeout,
		MaxBodyBytes:    64 * 1024,
	}
}

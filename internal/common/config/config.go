// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct. Everything is
// environment-provided; there is no config file beyond an optional
// .env for local development.
type Config struct {
	App     AppConfig
	Discord DiscordConfig
	HTTP    HTTPConfig
	Intake  IntakeConfig
	Logging LoggingConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

// DiscordConfig holds the gateway credential and the fixed channel,
// category and role identifiers the claim workflow operates on.
type DiscordConfig struct {
	BotToken         string
	GuildID          string
	ReviewerRoleID   string
	TicketCategoryID string
	ReviewChannelID  string
	OpsChannelID     string
	// GatewayTimeout bounds every outbound gateway call so a hung
	// round trip cannot hold a claim lock forever.
	GatewayTimeout time.Duration
}

type HTTPConfig struct {
	Port int
}

type IntakeConfig struct {
	QueueSize int
}

type LoggingConfig struct {
	Level  string
	Format string
}

// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"whitelist-bot/internal/common/errors"
)

// Load builds the configuration from the environment. Missing or
// malformed identifiers are a deploy-time error: the process must not
// start and discover them mid-claim.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "whitelist-bot")
	v.SetDefault("APP_ENVIRONMENT", "development")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("INTAKE_QUEUE_SIZE", 64)
	v.SetDefault("GATEWAY_TIMEOUT_MS", 15000)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Environment: v.GetString("APP_ENVIRONMENT"),
		},
		Discord: DiscordConfig{
			BotToken:         v.GetString("BOT_TOKEN"),
			GuildID:          v.GetString("GUILD_ID"),
			ReviewerRoleID:   v.GetString("REVIEWER_ROLE_ID"),
			TicketCategoryID: v.GetString("TICKET_CATEGORY_ID"),
			ReviewChannelID:  v.GetString("REVIEW_CHANNEL_ID"),
			OpsChannelID:     v.GetString("OPS_CHANNEL_ID"),
			GatewayTimeout:   time.Duration(v.GetInt("GATEWAY_TIMEOUT_MS")) * time.Millisecond,
		},
		HTTP: HTTPConfig{
			Port: v.GetInt("HTTP_PORT"),
		},
		Intake: IntakeConfig{
			QueueSize: v.GetInt("INTAKE_QUEUE_SIZE"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadEnvFile loads a .env from the working directory or the project
// root so tests and tools can run from subdirectories.
func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func validateConfig(cfg *Config) error {
	required := map[string]string{
		"BOT_TOKEN":          cfg.Discord.BotToken,
		"GUILD_ID":           cfg.Discord.GuildID,
		"REVIEWER_ROLE_ID":   cfg.Discord.ReviewerRoleID,
		"TICKET_CATEGORY_ID": cfg.Discord.TicketCategoryID,
		"REVIEW_CHANNEL_ID":  cfg.Discord.ReviewChannelID,
	}
	var missing []string
	for name, value := range required {
		if value == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return errors.NewConfigInvalidError(
			fmt.Sprintf("missing required environment variables: %s", strings.Join(missing, ", ")))
	}

	// OPS_CHANNEL_ID is intentionally optional: without it failure
	// reports degrade to log-only.

	if cfg.Discord.GatewayTimeout <= 0 {
		return errors.NewConfigInvalidError("GATEWAY_TIMEOUT_MS must be positive")
	}
	if cfg.Intake.QueueSize <= 0 {
		return errors.NewConfigInvalidError("INTAKE_QUEUE_SIZE must be positive")
	}
	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return errors.NewConfigInvalidError(fmt.Sprintf("HTTP_PORT out of range: %d", cfg.HTTP.Port))
	}
	return nil
}

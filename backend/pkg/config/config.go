package config

import (
	"fmt"
	"os"
	"strconv"

	apperrors "teamgraph/backend/pkg/errors"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Discord
	DiscordBotToken           string
	DiscordGuildID            string // Guild collected by the collector binary
	DiscordMessagesPerChannel int    // Single page per channel, capped at 100

	// Analysis
	LabelIterations        int
	TSNESteps              int
	TSNEPerplexity         float64
	LayoutAdjustmentFactor float64
	AnalysisSeed           uint64 // 0 seeds from the clock
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                      getEnv("PORT", "8080"),
		Env:                       getEnv("ENV", "development"),
		Neo4jURI:                  getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:                 getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:             getEnv("NEO4J_PASSWORD", "password"),
		DiscordBotToken:           getEnv("DISCORD_BOT_TOKEN", ""),
		DiscordGuildID:            getEnv("DISCORD_GUILD_ID", ""),
		DiscordMessagesPerChannel: getEnvInt("DISCORD_MESSAGES_PER_CHANNEL", 100),
		LabelIterations:           getEnvInt("LABEL_ITERATIONS", 10),
		TSNESteps:                 getEnvInt("TSNE_STEPS", 1000),
		TSNEPerplexity:            getEnvFloat("TSNE_PERPLEXITY", 30),
		LayoutAdjustmentFactor:    getEnvFloat("LAYOUT_ADJUSTMENT_FACTOR", 500),
	}

	seed, err := getEnvUint64("ANALYSIS_SEED", 0)
	if err != nil {
		return nil, apperrors.NewConfigValidationFailed("ANALYSIS_SEED", "must be an unsigned 64-bit integer")
	}
	cfg.AnalysisSeed = seed

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_URI")
	}
	if c.Neo4jUser == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_USER")
	}
	if c.Neo4jPassword == "" {
		return apperrors.NewConfigMissingRequired("NEO4J_PASSWORD")
	}
	if c.DiscordMessagesPerChannel < 1 || c.DiscordMessagesPerChannel > 100 {
		return apperrors.NewConfigValidationFailed("DISCORD_MESSAGES_PER_CHANNEL", "must be between 1 and 100")
	}
	if c.LabelIterations < 1 {
		return apperrors.NewConfigValidationFailed("LABEL_ITERATIONS", "must be positive")
	}
	if c.TSNESteps < 1 {
		return apperrors.NewConfigValidationFailed("TSNE_STEPS", "must be positive")
	}
	if c.TSNEPerplexity <= 1 {
		return apperrors.NewConfigValidationFailed("TSNE_PERPLEXITY", "must be greater than 1")
	}
	// Discord token is only needed by the collector
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvUint64(key string, defaultValue uint64) (uint64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseUint(value, 10, 64)
}

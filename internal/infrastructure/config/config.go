// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MongoDB
	MongoURI      string
	MongoDB       string
	MongoUser     string
	MongoPassword string

	// PostgreSQL (airline and airport reference data)
	PostgresURI string

	// Flight data providers
	AeroDataBoxAPIKey       string
	AeroDataBoxDailyLimit   int
	AviationStackAPIKey     string
	AviationStackDailyLimit int
	FlightRadarDailyLimit   int
	BudgetReserveMargin     int

	// Poll loop
	PollCycleInterval   time.Duration
	DefaultPollInterval time.Duration
	InterTaskDelay      time.Duration
	ShutdownGracePeriod time.Duration

	// Disruption policy
	DelayJitterMinutes    int
	DelayThresholdMinutes int
	SearchWindow          time.Duration
	RecommendationTTL     time.Duration

	// Gmail (notification channel)
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSender       string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		MongoURI:      getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:       getEnv("MONGO_DB", "flightwatch"),
		MongoUser:     getEnv("MONGO_USER", ""),
		MongoPassword: getEnv("MONGO_PASSWORD", ""),

		PostgresURI: getEnv("POSTGRES_DSN", ""),

		AeroDataBoxAPIKey:       getEnv("RAPIDAPI_KEY", ""),
		AeroDataBoxDailyLimit:   getEnvAsInt("AERODATABOX_DAILY_LIMIT", 150),
		AviationStackAPIKey:     getEnv("AVIATIONSTACK_API_KEY", ""),
		AviationStackDailyLimit: getEnvAsInt("AVIATIONSTACK_DAILY_LIMIT", 3),
		FlightRadarDailyLimit:   getEnvAsInt("FLIGHTRADAR_DAILY_LIMIT", 1000),
		BudgetReserveMargin:     getEnvAsInt("BUDGET_RESERVE_MARGIN", 10),

		PollCycleInterval:   time.Duration(getEnvAsInt("POLL_CYCLE_INTERVAL", 30)) * time.Second,
		DefaultPollInterval: time.Duration(getEnvAsInt("DEFAULT_POLL_INTERVAL", 900)) * time.Second,
		InterTaskDelay:      time.Duration(getEnvAsInt("INTER_TASK_DELAY", 2)) * time.Second,
		ShutdownGracePeriod: time.Duration(getEnvAsInt("SHUTDOWN_GRACE_PERIOD", 30)) * time.Second,

		DelayJitterMinutes:    getEnvAsInt("DELAY_JITTER_MINUTES", 15),
		DelayThresholdMinutes: getEnvAsInt("DELAY_THRESHOLD_MINUTES", 120),
		SearchWindow:          time.Duration(getEnvAsInt("SEARCH_WINDOW_HOURS", 6)) * time.Hour,
		RecommendationTTL:     time.Duration(getEnvAsInt("RECOMMENDATION_TTL_HOURS", 2)) * time.Hour,

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),
		GmailSender:       getEnv("GMAIL_SENDER", ""),
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

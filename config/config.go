package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

var (
	AppConfig Config
)

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"-"`
	Name     string `json:"name"`
	SSLMode  string `json:"ssl_mode"`
}

// Enabled reports whether a Postgres backend is configured; otherwise the
// seeded in-memory repositories are used.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type Config struct {
	Environment string `json:"environment"`
	ServerPort  string `json:"server_port"`

	// Durable local key-value store for the session record and visitor id
	SessionFilePath string `json:"session_file_path"`

	// Artificial backend latency in milliseconds, 0 disables it
	SimulatedLatencyMS int `json:"simulated_latency_ms"`

	// Entitlement checks are presence-only by default; strict mode
	// requires truthy values (see billing.HasEntitlement)
	EntitlementStrictTruthiness bool `json:"entitlement_strict_truthiness"`

	// Billing worker sweep interval in seconds
	BillingSweepSeconds int `json:"billing_sweep_seconds"`

	// Error reporting is disabled when the DSN is empty
	SentryDSN string `json:"-"`

	Database DatabaseConfig `json:"database"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func LoadConfig() error {
	AppConfig = Config{
		Environment:                 getEnv("ENVIRONMENT", "development"),
		ServerPort:                  getEnv("SERVER_PORT", "5000"),
		SessionFilePath:             getEnv("SESSION_FILE_PATH", ".drivenmind/session.json"),
		SimulatedLatencyMS:          getEnvAsInt("SIMULATED_LATENCY_MS", 0),
		EntitlementStrictTruthiness: getEnvAsBool("ENTITLEMENT_STRICT_TRUTHINESS", false),
		BillingSweepSeconds:         getEnvAsInt("BILLING_SWEEP_SECONDS", 60),
		SentryDSN:                   getEnv("SENTRY_DSN", ""),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "drivenmind"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
	}

	if AppConfig.Database.Enabled() && AppConfig.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required when DB_HOST is set")
	}
	if AppConfig.SessionFilePath == "" {
		return fmt.Errorf("SESSION_FILE_PATH must not be empty")
	}

	logConfig()
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	switch getEnv(key, "") {
	case "1", "true", "TRUE", "yes":
		return true
	case "0", "false", "FALSE", "no":
		return false
	default:
		return fallback
	}
}

func logConfig() {
	log.Println("Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Session file: %s", AppConfig.SessionFilePath)
	if AppConfig.Database.Enabled() {
		log.Printf("Database: %s@%s:%s/%s",
			AppConfig.Database.User,
			AppConfig.Database.Host,
			AppConfig.Database.Port,
			AppConfig.Database.Name)
	} else {
		log.Printf("Database: in-memory (seeded demo data)")
	}
}

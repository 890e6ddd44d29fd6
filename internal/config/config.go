package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port        string
	DataDir     string // directory backing the file key-value store
	GeminiModel string
	GCSBucket   string // optional: archive uploaded statements when set
	BQProject   string // optional: analytics sink when set
	BQDataset   string
	// StoreLatency simulates the lookup delay of a remote identity service
	// on session restore. Zero disables it.
	StoreLatency time.Duration
}

// Load reads configuration from environment variables (.env file).
// GEMINI_API_KEY is read by the genai SDK itself and is not stored here.
func Load() (*Config, error) {
	// Load .env if present. In production, env variables are set directly.
	_ = godotenv.Load()

	return &Config{
		Port:         getEnv("PORT", "8080"),
		DataDir:      getEnv("DATA_DIR", "data"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GCSBucket:    getEnv("GCS_BUCKET", ""),
		BQProject:    getEnv("BQ_PROJECT", ""),
		BQDataset:    getEnv("BQ_DATASET", "analyzer"),
		StoreLatency: 500 * time.Millisecond,
	}, nil
}

// Helper function to get env var or return default.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

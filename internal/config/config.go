package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DatabasePath     string
	RulesDir         string
	AlmanacDir       string
	OutputDir        string
	GeminiAPIKey     string
	GeminiModel      string
	ReportDetail     string
	DefaultLongitude float64
	DefaultLatitude  float64
	AnnualYears      int
	LogLevel         string
	Port             int
	DevMode          bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnvAsInt("GO_PORT", 8001),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		DatabasePath:     getEnv("DATABASE_PATH", "./data/charts.db"),
		RulesDir:         getEnv("RULES_DIR", ""), // empty means embedded defaults
		AlmanacDir:       getEnv("ALMANAC_DIR", ""),
		OutputDir:        getEnv("OUTPUT_DIR", "./output"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ReportDetail:     getEnv("REPORT_DETAIL", "detailed"),
		DefaultLongitude: getEnvAsFloat("DEFAULT_LONGITUDE", 120.0),
		DefaultLatitude:  getEnvAsFloat("DEFAULT_LATITUDE", 39.9),
		AnnualYears:      getEnvAsInt("ANNUAL_YEARS", 10),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("GO_PORT must be between 1 and 65535, got %d", c.Port)
	}

	switch c.ReportDetail {
	case "simple", "normal", "detailed", "comprehensive":
	default:
		return fmt.Errorf("REPORT_DETAIL must be one of simple|normal|detailed|comprehensive, got %q", c.ReportDetail)
	}

	if c.AnnualYears < 1 || c.AnnualYears > 100 {
		return fmt.Errorf("ANNUAL_YEARS must be between 1 and 100, got %d", c.AnnualYears)
	}

	// Note: Gemini credentials optional; report endpoints are disabled
	// without them.

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

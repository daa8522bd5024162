package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// Redis (optional). Empty address disables the distributed lock and the
	// report cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Classifier
	ClassifierMinConfidence float64
	ClassifierTimeout       time.Duration
	RuleTablePath           string // Empty = built-in table

	// Gemini-backed statistical stage (optional). Empty key keeps the
	// in-process token scorer.
	GeminiAPIKey string
	GeminiModel  string

	// Tax rules
	TaxTablePath string // Empty = built-in tables

	// Reporting
	DefaultTimezone string
	WeekStartDay    string
	SummaryCacheTTL time.Duration

	// Rate limiting, in ulule/limiter format (e.g. "120-M").
	IngestRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("REDIS_ADDR", "")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CLASSIFIER_MIN_CONFIDENCE", 0.55)
	viper.SetDefault("CLASSIFIER_TIMEOUT", "5s")
	viper.SetDefault("RULE_TABLE_PATH", "")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	viper.SetDefault("TAX_TABLE_PATH", "")
	viper.SetDefault("DEFAULT_TIMEZONE", "UTC")
	viper.SetDefault("WEEK_START_DAY", "Monday")
	viper.SetDefault("SUMMARY_CACHE_TTL", "5m")
	viper.SetDefault("INGEST_RATE_LIMIT", "120-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")

	cfg.ClassifierMinConfidence = viper.GetFloat64("CLASSIFIER_MIN_CONFIDENCE")
	if cfg.ClassifierMinConfidence < 0 || cfg.ClassifierMinConfidence > 1 {
		log.Printf("Warning: CLASSIFIER_MIN_CONFIDENCE %.2f outside [0,1]. Defaulting to 0.55.\n", cfg.ClassifierMinConfidence)
		cfg.ClassifierMinConfidence = 0.55
	}

	classifierTimeoutStr := viper.GetString("CLASSIFIER_TIMEOUT")
	classifierTimeout, err := time.ParseDuration(classifierTimeoutStr)
	if err != nil {
		classifierTimeout = 5 * time.Second
		log.Printf("Warning: Invalid value for CLASSIFIER_TIMEOUT ('%s'). Defaulting to %s.\n", classifierTimeoutStr, classifierTimeout)
	}
	cfg.ClassifierTimeout = classifierTimeout

	cfg.RuleTablePath = viper.GetString("RULE_TABLE_PATH")
	cfg.GeminiAPIKey = viper.GetString("GEMINI_API_KEY")
	cfg.GeminiModel = viper.GetString("GEMINI_MODEL")
	cfg.TaxTablePath = viper.GetString("TAX_TABLE_PATH")
	cfg.DefaultTimezone = viper.GetString("DEFAULT_TIMEZONE")
	cfg.WeekStartDay = viper.GetString("WEEK_START_DAY")

	cacheTTLStr := viper.GetString("SUMMARY_CACHE_TTL")
	cacheTTL, err := time.ParseDuration(cacheTTLStr)
	if err != nil {
		cacheTTL = 5 * time.Minute
		log.Printf("Warning: Invalid value for SUMMARY_CACHE_TTL ('%s'). Defaulting to %s.\n", cacheTTLStr, cacheTTL)
	}
	cfg.SummaryCacheTTL = cacheTTL

	cfg.IngestRateLimit = viper.GetString("INGEST_RATE_LIMIT")

	return cfg, nil
}

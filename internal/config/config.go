package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"propsearch/internal/logger"

	"github.com/joho/godotenv"
)

// Dataset sources
const (
	SourceCSV      = "csv"      // one normalized listings CSV
	SourceTables   = "tables"   // project/address/configuration/variant CSVs
	SourceDatabase = "database" // listings table via Database config
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Search     SearchConfig
	Ranking    RankingConfig
	Dataset    DatasetConfig
	Database   DatabaseConfig
	Enrichment EnrichmentConfig
	Cache      CacheConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// RankingConfig holds ranking weights configuration
type RankingConfig struct {
	WeightProjectName float64
	WeightLocality    float64
	WeightSoft        float64
	WeightBudget      float64
}

// DatasetConfig selects where listings are loaded from
type DatasetConfig struct {
	Source string
	Path   string // listings CSV for SourceCSV
	Dir    string // directory of source tables for SourceTables
}

// DatabaseConfig holds SQL connection configuration. The database backs the
// search log and, with DATASET_SOURCE=database, the listings themselves.
type DatabaseConfig struct {
	Driver             string // postgres or sqlite3
	DSN                string
	MaxConnections     int
	MaxIdleConnections int
}

// EnrichmentConfig holds the generative filter extractor configuration.
// The endpoint must speak the OpenAI chat-completions protocol.
type EnrichmentConfig struct {
	APIKey      string
	APIBase     string
	Model       string
	Temperature float64
	Timeout     int // seconds
	Enabled     bool
}

// CacheConfig holds Redis response cache configuration
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
	Enabled  bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("PORT", getEnvAsInt("SERVER_PORT", 8000)),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Search: SearchConfig{
			DefaultLimit: getEnvAsInt("SEARCH_DEFAULT_LIMIT", 10),
			MaxLimit:     getEnvAsInt("SEARCH_MAX_LIMIT", 100),
		},
		Ranking: RankingConfig{
			WeightProjectName: getEnvAsFloat("RANK_WEIGHT_PROJECT_NAME", 50),
			WeightLocality:    getEnvAsFloat("RANK_WEIGHT_LOCALITY", 30),
			WeightSoft:        getEnvAsFloat("RANK_WEIGHT_SOFT", 10),
			WeightBudget:      getEnvAsFloat("RANK_WEIGHT_BUDGET", 10),
		},
		Dataset: DatasetConfig{
			Source: strings.ToLower(getEnv("DATASET_SOURCE", SourceCSV)),
			Path:   getEnv("DATASET_PATH", "data/projects_df.csv"),
			Dir:    getEnv("DATASET_DIR", "data"),
		},
		Database: DatabaseConfig{
			Driver:             getEnv("DB_DRIVER", "postgres"),
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			MaxConnections:     getEnvAsInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DB_MAX_IDLE_CONNECTIONS", 5),
		},
		Enrichment: EnrichmentConfig{
			APIKey:      getEnv("GOOGLE_API_KEY", ""),
			APIBase:     getEnv("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai/"),
			Model:       strings.TrimPrefix(getEnv("GEMINI_MODEL", "models/gemini-2.5-flash"), "models/"),
			Temperature: getEnvAsFloat("GEMINI_TEMPERATURE", 0),
			Timeout:     getEnvAsInt("GEMINI_TIMEOUT", 15),
			Enabled:     getEnv("GOOGLE_API_KEY", "") != "",
		},
		Cache: CacheConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 300)) * time.Second,
			Prefix:   getEnv("CACHE_PREFIX", "propsearch:"),
			Enabled:  getEnv("REDIS_ADDR", "") != "",
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c *Config) Validate() error {
	switch c.Dataset.Source {
	case SourceCSV, SourceTables:
	case SourceDatabase:
		if c.Database.DSN == "" {
			return fmt.Errorf("DATASET_SOURCE=database requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown DATASET_SOURCE %q (want csv, tables or database)", c.Dataset.Source)
	}
	if c.Search.DefaultLimit < 0 || c.Search.MaxLimit < 0 {
		return fmt.Errorf("search limits must not be negative")
	}
	if c.Search.MaxLimit > 0 && c.Search.DefaultLimit > c.Search.MaxLimit {
		c.Search.DefaultLimit = c.Search.MaxLimit
	}
	return nil
}

// DatabaseEnabled reports whether a SQL database is configured
func (c *Config) DatabaseEnabled() bool {
	return c.Database.DSN != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logger.Logger.Warnf("Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		logger.Logger.Warnf("Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

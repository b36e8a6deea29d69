package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	App        AppConfig
	Store      StoreConfig
	Firebase   FirebaseConfig
	Gemini     GeminiConfig
	Redis      RedisConfig
	Postgres   PostgresConfig
	Aggregates AggregatesConfig
	RateLimit  RateLimitConfig
	Reconcile  ReconcileConfig
}

type ServerConfig struct {
	Port string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogJSON     bool
	Version     string
}

// StoreConfig selects the document store backend the service runs on.
// "firestore" is the production default; "redis" and "postgres" exist so the
// same repositories can run against any store with per-field atomic
// increment support.
type StoreConfig struct {
	Backend string // firestore | redis | postgres
}

type FirebaseConfig struct {
	CredentialsPath string
	ProjectID       string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	DSN string
}

// AggregatesConfig controls the derived-count maintenance rules.
// DecrementOnDelete is off by default: deleting an experience leaves the
// company's experienceCount untouched, matching the observed behavior of the
// original system. Turning it on trades parity for consistency.
type AggregatesConfig struct {
	DecrementOnDelete bool
}

type RateLimitConfig struct {
	// Requests per minute allowed per client on generation-backed routes
	// (summary regeneration, assistant). Zero disables limiting.
	GenerationPerMinute int
}

type ReconcileConfig struct {
	// Cron spec (with seconds) for the experience-count reconciliation job
	// run by cmd/worker.
	Schedule string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogJSON:     getEnvAsBool("LOG_JSON", false),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Store: StoreConfig{
			Backend: getEnv("STORE_BACKEND", "firestore"),
		},
		Firebase: FirebaseConfig{
			CredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Postgres: PostgresConfig{
			DSN: getEnv("POSTGRES_DSN", ""),
		},
		Aggregates: AggregatesConfig{
			DecrementOnDelete: getEnvAsBool("AGGREGATES_DECREMENT_ON_DELETE", false),
		},
		RateLimit: RateLimitConfig{
			GenerationPerMinute: getEnvAsInt("GENERATION_RATE_PER_MINUTE", 6),
		},
		Reconcile: ReconcileConfig{
			Schedule: getEnv("RECONCILE_CRON", "0 0 3 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Store.Backend {
	case "firestore":
		if c.Firebase.CredentialsPath == "" {
			return fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required for the firestore backend")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean for %s, using default: %t", key, defaultValue)
		return defaultValue
	}

	return value
}

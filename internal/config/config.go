package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	Environment string
	CORSOrigins []string

	// Generative provider (Gemini). Empty key means the gateway runs
	// in degraded mode with mock fallbacks.
	GeminiAPIKey    string
	GeminiModel     string
	EmbeddingsModel string

	// Vector index (Pinecone). Both values must be set for the real
	// search path to activate.
	PineconeAPIKey    string
	PineconeIndexName string

	// Redis Configuration (HTTP rate limiting; optional, fail-open)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// HTTP rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Pipeline tuning
	MaxChunkSize int
	SearchTopK   int

	// Live demo pacing and per-connection action limits
	StageDelay        time.Duration
	ProgressInterval  time.Duration
	IndexingDemoLimit int
	QueryDemoLimit    int
	DemoRateWindow    time.Duration
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		Environment: getEnv("APP_ENV", "development"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		EmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeIndexName: getEnv("PINECONE_INDEX_NAME", ""),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 1000),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 900),

		MaxChunkSize: getEnvInt("MAX_CHUNK_SIZE", 100),
		SearchTopK:   getEnvInt("SEARCH_TOP_K", 3),

		StageDelay:        getEnvDuration("DEMO_STAGE_DELAY", 1500*time.Millisecond),
		ProgressInterval:  getEnvDuration("DEMO_PROGRESS_INTERVAL", 200*time.Millisecond),
		IndexingDemoLimit: getEnvInt("INDEXING_DEMO_LIMIT", 3),
		QueryDemoLimit:    getEnvInt("QUERY_DEMO_LIMIT", 5),
		DemoRateWindow:    getEnvDuration("DEMO_RATE_WINDOW", time.Minute),
	}

	// Production runs with tighter HTTP limits unless overridden,
	// alongside the stricter CORS policy and redacted error bodies.
	if cfg.IsProduction() && os.Getenv("RATE_LIMIT_REQUESTS") == "" {
		cfg.RateLimitReqs = 100
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production
// hardening (strict CORS, generic error bodies, lower rate limits).
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// EmbeddingsConfigured reports whether the real embedding path can run.
func (c *Config) EmbeddingsConfigured() bool {
	return c.GeminiAPIKey != ""
}

// VectorIndexConfigured reports whether the real search path can run.
func (c *Config) VectorIndexConfigured() bool {
	return c.PineconeAPIKey != "" && c.PineconeIndexName != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

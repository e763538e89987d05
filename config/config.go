package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBUrl         string
	RunMigrations bool
	FrontendURL   string
	// Extra CORS origins on top of FrontendURL
	AllowedOrigins []string
	LogLevel       string
	GinMode        string
	// JWT Configuration
	JWTSecret string
	JWTExpire time.Duration
	// OpenAI Configuration (virtual mentor)
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAITimeout time.Duration
	// "async" detaches profile extraction, "sync" waits for it before replying
	MentorExtractionMode    string
	MentorExtractionTimeout time.Duration
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	RateLimitMentorThreshold int
	FailedLoginBlockMinutes  int
	FailedLoginMaxAttempts   int
}

const (
	ExtractionModeAsync = "async"
	ExtractionModeSync  = "sync"
)

func LoadConfig() (*Config, error) {
	// .env is only present locally; production relies on the real environment
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "5000"),
		DBUrl:          getEnv("DATABASE_URL", ""),
		RunMigrations:  getEnvBool("RUN_MIGRATIONS", true),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS"),
		LogLevel:       getEnv("LOG_LEVEL", "debug"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		// JWT
		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTExpire: getEnvDuration("JWT_EXPIRE", 30*24*time.Hour),
		// OpenAI
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAIBaseURL: strings.TrimRight(getEnv("OPENAI_BASE_URL", ""), "/"),
		OpenAITimeout: getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		// Mentor profile extraction
		MentorExtractionMode:    normalizeExtractionMode(getEnv("MENTOR_EXTRACTION_MODE", ExtractionModeAsync)),
		MentorExtractionTimeout: getEnvDuration("MENTOR_EXTRACTION_TIMEOUT", 20*time.Second),
		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate limiting (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitMentorThreshold: getEnvInt("RATE_LIMIT_MENTOR_THRESHOLD", 20),
		FailedLoginBlockMinutes:  getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", 15),
		FailedLoginMaxAttempts:   getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", 5),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Tokens cannot be issued or verified.")
	}
	if cfg.OpenAIAPIKey == "" {
		log.Println("WARNING: OPENAI_API_KEY not configured. Virtual mentor messages will be rejected.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// CORSOrigins returns the frontend URL plus any extra allowed origins.
func (c *Config) CORSOrigins() []string {
	origins := make([]string, 0, len(c.AllowedOrigins)+1)
	if c.FrontendURL != "" {
		origins = append(origins, c.FrontendURL)
	}
	return append(origins, c.AllowedOrigins...)
}

// IsProduction is true when gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90m") and whole days ("30d").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, ok := parseDuration(value); ok {
		return d
	}
	return fallback
}

func parseDuration(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil || days <= 0 {
			return 0, false
		}
		return time.Duration(days) * 24 * time.Hour, true
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func getEnvList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimRight(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeExtractionMode(mode string) string {
	if strings.EqualFold(strings.TrimSpace(mode), ExtractionModeSync) {
		return ExtractionModeSync
	}
	return ExtractionModeAsync
}

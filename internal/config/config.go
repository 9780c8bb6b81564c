package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	defaultUpstreamTimeout  = 120 * time.Second
	defaultMaxUploadBytes   = 100 << 20 // 100 MB
	defaultMaxResponseBytes = 100 << 20 // 100 MB
	defaultRateLimitMax     = 50
	defaultRateLimitWindow  = 15 * time.Minute
)

type Config struct {
	Server    ServerConfig
	Upstream  UpstreamConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	App       AppConfig
}

type ServerConfig struct {
	Port           string `validate:"required"`
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxUploadBytes int64 `validate:"gt=0"`
}

type UpstreamConfig struct {
	BaseURL          string        `validate:"required,url"`
	Token            string        `validate:"required"`
	Timeout          time.Duration `validate:"gt=0"`
	MaxResponseBytes int64         `validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	Max        int           `validate:"gt=0"`
	Window     time.Duration `validate:"gt=0"`
	TrustProxy bool
}

type AppConfig struct {
	Environment string
	Version     string
}

var validate = validator.New()

// Origins the frontend is served from during development. Matching is by
// exact string, so entries must include the scheme.
var defaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
}

func LoadConfig() (*Config, error) {
	upstreamTimeout := getEnvAsDuration("UPSTREAM_TIMEOUT", defaultUpstreamTimeout)

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			// Uploads up to the size ceiling need a generous read budget.
			ReadTimeout: 5 * time.Minute,
			// The outbound call may run up to the upstream timeout; leave
			// headroom so in-flight responses are not cut off.
			WriteTimeout:   upstreamTimeout + 30*time.Second,
			IdleTimeout:    60 * time.Second,
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", defaultMaxUploadBytes),
		},
		Upstream: UpstreamConfig{
			BaseURL:          os.Getenv("HF_SPACE_URL"),
			Token:            os.Getenv("HF_TOKEN"),
			Timeout:          upstreamTimeout,
			MaxResponseBytes: getEnvAsInt64("MAX_RESPONSE_BYTES", defaultMaxResponseBytes),
		},
		CORS: CORSConfig{
			AllowedOrigins: allowedOrigins(os.Getenv("ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			Max:        getEnvAsInt("RATE_LIMIT_MAX", defaultRateLimitMax),
			Window:     getEnvAsDuration("RATE_LIMIT_WINDOW", defaultRateLimitWindow),
			TrustProxy: getEnvAsBool("TRUST_PROXY", false),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the gateway runs with the strict CORS policy.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// allowedOrigins merges the compiled-in defaults with the comma-separated
// ALLOWED_ORIGINS value.
func allowedOrigins(extra string) []string {
	origins := append([]string(nil), defaultAllowedOrigins...)
	for _, origin := range strings.Split(extra, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %v", key, defaultValue)
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
		log.Printf("Warning: Invalid boolean for %s, using default: %v", key, defaultValue)
		return defaultValue
	}
	return value
}

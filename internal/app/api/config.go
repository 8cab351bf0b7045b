package api

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	assistantapp "github.com/Apurer/singgah-pos/internal/domains/assistant/application"
	"github.com/Apurer/singgah-pos/internal/domains/assistant/adapters/external/gemini"
	orderingapp "github.com/Apurer/singgah-pos/internal/domains/ordering/application"
	orderingdomain "github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
)

const defaultCORSOrigins = "http://localhost:3000,http://localhost:5173"

// Config carries environment-driven settings for the API process.
type Config struct {
	Port        string
	Environment string
	PostgresDSN string

	TaxRate  orderingdomain.TaxRate
	IDLength int

	GeminiAPIKey     string
	GeminiModel      string
	GeminiBaseURL    string
	AssistantTimeout time.Duration

	RedisAddr              string
	RecommendationCacheTTL time.Duration
	RabbitMQURL            string

	TemporalAddress   string
	TemporalNamespace string
	TemporalDisabled  bool

	CORSAllowedOrigins []string
}

// LoadDotEnv reads a .env file into the environment outside production. A missing file is fine.
func LoadDotEnv() {
	if strings.EqualFold(os.Getenv("APP_ENV"), "production") {
		return
	}
	_ = godotenv.Load()
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	cfg := Config{
		Port:              envDefault("PORT", "8080"),
		Environment:       envDefault("APP_ENV", "local"),
		PostgresDSN:       strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		TaxRate:           orderingdomain.DefaultTaxRate,
		IDLength:          orderingapp.DefaultIDLength,
		GeminiAPIKey:      strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:       envDefault("GEMINI_MODEL", gemini.DefaultModel),
		GeminiBaseURL:     envDefault("GEMINI_BASE_URL", gemini.DefaultBaseURL),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RabbitMQURL:       strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
		TemporalAddress:   envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace: envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:  isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		CORSAllowedOrigins: splitList(envDefault("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)),
	}
	if raw := strings.TrimSpace(os.Getenv("POS_TAX_RATE")); raw != "" {
		rate, err := orderingdomain.ParseTaxRate(raw)
		if err != nil {
			return Config{}, fmt.Errorf("POS_TAX_RATE: %w", err)
		}
		cfg.TaxRate = rate
	}
	if raw := strings.TrimSpace(os.Getenv("POS_ID_LENGTH")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 4 || n > 16 {
			return Config{}, fmt.Errorf("POS_ID_LENGTH must be an integer between 4 and 16")
		}
		cfg.IDLength = n
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS must list at least one origin")
	}
	for _, origin := range cfg.CORSAllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS: %q must be * or start with http:// or https://", origin)
		}
	}
	var err error
	if cfg.AssistantTimeout, err = durationEnv("ASSISTANT_TIMEOUT", assistantapp.DefaultTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RecommendationCacheTTL, err = durationEnv("RECOMMENDATION_CACHE_TTL", assistantapp.DefaultCacheTTL); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration such as 8s", key)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}

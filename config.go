package secop

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config collects the environment-driven settings shared by the CLI and
// the examples. Credentials are all optional: a missing key degrades the
// matching feature instead of failing hard.
type Config struct {
	SocrataAppToken string // X-App-Token for datos.gov.co; unauthenticated works but is throttled
	TavilyAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string // any OpenAI-compatible endpoint
	Model           string

	RequestsPerMinute int
	CacheDir          string
	CacheTTL          time.Duration
	ExportDir         string
}

// ConfigFromEnv reads configuration from the environment. Proxy settings
// (HTTPS_PROXY/HTTP_PROXY) are honored by the HTTP clients through the
// standard transport and need no field here.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		SocrataAppToken:   os.Getenv("SOCRATA_APP_TOKEN"),
		TavilyAPIKey:      os.Getenv("TAVILY_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		Model:             os.Getenv("SECOP_MODEL"),
		RequestsPerMinute: 30,
		CacheDir:          os.Getenv("SECOP_CACHE_DIR"),
		CacheTTL:          6 * time.Hour,
		ExportDir:         os.Getenv("SECOP_EXPORT_DIR"),
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = "."
	}

	var err error
	cfg.RequestsPerMinute, err = getEnvAsInt("SECOP_RPM", cfg.RequestsPerMinute)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL, err = getEnvAsDuration("SECOP_CACHE_TTL", cfg.CacheTTL)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected a duration like 6h, got '%s'", key, valueStr)
	}
	return value, nil
}

package secop

import (
	"testing"
	"time"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SOCRATA_APP_TOKEN", "TAVILY_API_KEY", "OPENAI_API_KEY",
		"OPENAI_BASE_URL", "SECOP_MODEL", "SECOP_RPM",
		"SECOP_CACHE_DIR", "SECOP_CACHE_TTL", "SECOP_EXPORT_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv returned error: %v", err)
	}
	if cfg.RequestsPerMinute != 30 {
		t.Errorf("RequestsPerMinute = %d, want 30", cfg.RequestsPerMinute)
	}
	if cfg.CacheTTL != 6*time.Hour {
		t.Errorf("CacheTTL = %v, want 6h", cfg.CacheTTL)
	}
	if cfg.Model != "gpt-4o-mini" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.ExportDir != "." {
		t.Errorf("ExportDir = %q", cfg.ExportDir)
	}
	if cfg.SocrataAppToken != "" || cfg.TavilyAPIKey != "" || cfg.OpenAIAPIKey != "" {
		t.Error("credentials should default to empty")
	}
}

func TestConfigFromEnvReadsValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SOCRATA_APP_TOKEN", "tok")
	t.Setenv("TAVILY_API_KEY", "tv")
	t.Setenv("OPENAI_API_KEY", "sk")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434")
	t.Setenv("SECOP_MODEL", "qwen3:8b")
	t.Setenv("SECOP_RPM", "12")
	t.Setenv("SECOP_CACHE_TTL", "90m")
	t.Setenv("SECOP_CACHE_DIR", "/tmp/secop-cache")
	t.Setenv("SECOP_EXPORT_DIR", "/tmp/exports")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv returned error: %v", err)
	}
	if cfg.SocrataAppToken != "tok" || cfg.TavilyAPIKey != "tv" || cfg.OpenAIAPIKey != "sk" {
		t.Errorf("credentials not read: %+v", cfg)
	}
	if cfg.OpenAIBaseURL != "http://localhost:11434" {
		t.Errorf("OpenAIBaseURL = %q", cfg.OpenAIBaseURL)
	}
	if cfg.Model != "qwen3:8b" {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.RequestsPerMinute != 12 {
		t.Errorf("RequestsPerMinute = %d", cfg.RequestsPerMinute)
	}
	if cfg.CacheTTL != 90*time.Minute {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}
	if cfg.CacheDir != "/tmp/secop-cache" || cfg.ExportDir != "/tmp/exports" {
		t.Errorf("dirs not read: %+v", cfg)
	}
}

func TestConfigFromEnvRejectsBadValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("SECOP_RPM", "treinta")
	if _, err := ConfigFromEnv(); err == nil {
		t.Error("expected an error for a non-numeric SECOP_RPM")
	}

	clearConfigEnv(t)
	t.Setenv("SECOP_CACHE_TTL", "pronto")
	if _, err := ConfigFromEnv(); err == nil {
		t.Error("expected an error for an unparseable SECOP_CACHE_TTL")
	}
}

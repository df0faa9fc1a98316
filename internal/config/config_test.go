package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OLLAMA_URL", "")
	t.Setenv("OLLAMA_MODEL", "")
	t.Setenv("OLLAMA_TIMEOUT", "")
	t.Setenv("OCR_DPI", "")
	t.Setenv("MAX_PAGES_PROCESS", "")
	t.Setenv("HEADER_PAGES", "")
	t.Setenv("FOOTER_PAGES", "")
	t.Setenv("CONF_THRESHOLD", "")

	cfg := Load()
	if cfg.OllamaURL != "http://localhost:11434" {
		t.Fatalf("expected default ollama url, got %q", cfg.OllamaURL)
	}
	if cfg.OllamaModel != "gemma-3" {
		t.Fatalf("expected default model gemma-3, got %q", cfg.OllamaModel)
	}
	if cfg.OllamaTimeout != 30*time.Second {
		t.Fatalf("expected default timeout 30s, got %v", cfg.OllamaTimeout)
	}
	if cfg.OCRDPI != 300 {
		t.Fatalf("expected default dpi 300, got %d", cfg.OCRDPI)
	}
	if cfg.MaxPagesProcess != 50 || cfg.HeaderPages != 5 || cfg.FooterPages != 3 {
		t.Fatalf("unexpected sampling defaults: %+v", cfg)
	}
	if cfg.ConfThreshold != 0.7 {
		t.Fatalf("expected default threshold 0.7, got %v", cfg.ConfThreshold)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "llama3.1:8b")
	t.Setenv("OLLAMA_TIMEOUT", "90")
	t.Setenv("CONF_THRESHOLD", "0.85")
	t.Setenv("MAX_PAGES_PROCESS", "20")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")

	cfg := Load()
	if cfg.OllamaModel != "llama3.1:8b" {
		t.Fatalf("expected model override, got %q", cfg.OllamaModel)
	}
	if cfg.OllamaTimeout != 90*time.Second {
		t.Fatalf("expected timeout 90s, got %v", cfg.OllamaTimeout)
	}
	if cfg.ConfThreshold != 0.85 {
		t.Fatalf("expected threshold 0.85, got %v", cfg.ConfThreshold)
	}
	if cfg.MaxPagesProcess != 20 {
		t.Fatalf("expected max pages 20, got %d", cfg.MaxPagesProcess)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5 rps, got %v", cfg.APIRateLimitRPS)
	}
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("OLLAMA_TIMEOUT", "soon")
	t.Setenv("CONF_THRESHOLD", "very high")

	cfg := Load()
	if cfg.OllamaTimeout != 30*time.Second {
		t.Fatalf("expected fallback timeout 30s, got %v", cfg.OllamaTimeout)
	}
	if cfg.ConfThreshold != 0.7 {
		t.Fatalf("expected fallback threshold 0.7, got %v", cfg.ConfThreshold)
	}
}

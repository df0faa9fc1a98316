package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIPort  string
	LogLevel string

	OllamaURL     string
	OllamaModel   string
	OllamaTimeout time.Duration

	OCRDPI            int
	ProcessingTempDir string
	MaxPagesProcess   int
	HeaderPages       int
	FooterPages       int

	ConfThreshold float64

	APIRateLimitRPS   float64
	APIRateLimitBurst int
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		OllamaURL:     mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaModel:   mustEnv("OLLAMA_MODEL", "gemma-3"),
		OllamaTimeout: time.Duration(mustEnvInt("OLLAMA_TIMEOUT", 30)) * time.Second,

		OCRDPI:            mustEnvInt("OCR_DPI", 300),
		ProcessingTempDir: mustEnv("PROCESSING_TEMP_DIR", ""),
		MaxPagesProcess:   mustEnvInt("MAX_PAGES_PROCESS", 50),
		HeaderPages:       mustEnvInt("HEADER_PAGES", 5),
		FooterPages:       mustEnvInt("FOOTER_PAGES", 3),

		ConfThreshold: mustEnvFloat("CONF_THRESHOLD", 0.7),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 10),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

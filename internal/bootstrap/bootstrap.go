package bootstrap

import (
	"log/slog"

	"github.com/clinicsync/medparse/internal/config"
	"github.com/clinicsync/medparse/internal/core/ports"
	"github.com/clinicsync/medparse/internal/core/usecase"
	"github.com/clinicsync/medparse/internal/infrastructure/extractor/pattern"
	"github.com/clinicsync/medparse/internal/infrastructure/llm/ollama"
	"github.com/clinicsync/medparse/internal/infrastructure/ocr"
	"github.com/clinicsync/medparse/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Parser ports.DocumentParser
}

func New(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}

	recognizer := ocr.NewRecognizer(ocr.Config{
		DPI:         cfg.OCRDPI,
		TempDir:     cfg.ProcessingTempDir,
		MaxPages:    cfg.MaxPagesProcess,
		HeaderPages: cfg.HeaderPages,
		FooterPages: cfg.FooterPages,
	}, nil, logger)

	exec := resilience.NewExecutor(resilience.DefaultConfig())
	model := ollama.New(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout, exec, logger)
	patterns := pattern.NewExtractor(logger)

	parser := usecase.NewParseDocumentUseCase(recognizer, model, patterns, cfg.ConfThreshold, logger)

	return &App{
		Config: cfg,
		Logger: logger,
		Parser: parser,
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"leaf-doctor/config"
	"leaf-doctor/internal/domain/port"
	"leaf-doctor/internal/infrastructure/catalog"
	"leaf-doctor/internal/infrastructure/onnx"
	"leaf-doctor/internal/infrastructure/vision"
)

// parseLogLevel переводит имя уровня в slog.Level. Неизвестное значение даёт info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupLogger(level string) *slog.Logger {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(level)}))
	slog.SetDefault(logger)
	return logger
}

// bootstrap загружает конфигурацию и настраивает логгер. Флаг --log-level
// важнее значения из конфигурации.
func bootstrap(flags *globalFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	return cfg, setupLogger(cfg.LogLevel), nil
}

// modelConfig параметры ONNX-модели из конфигурации сервиса.
func modelConfig(cfg *config.Config) onnx.Config {
	return onnx.Config{
		ModelPath:      cfg.Model.Path,
		LibraryPath:    cfg.Model.LibraryPath,
		InputName:      cfg.Model.InputName,
		OutputName:     cfg.Model.OutputName,
		InputShape:     cfg.TensorLayout().Shape(cfg.Model.ImageSize),
		OutputShape:    []int64{1, int64(len(cfg.Model.Labels))},
		Labels:         cfg.Model.Labels,
		PoolSize:       cfg.Model.PoolSize,
		AcquireTimeout: cfg.Model.AcquireTimeout,
		Threads:        cfg.Model.Threads,
	}
}

// model загруженный классификатор и подходящий ему препроцессор.
type model struct {
	preprocessor port.Preprocessor
	classifier   *onnx.Classifier
}

func loadModel(cfg *config.Config, logger *slog.Logger) (*model, error) {
	pre, err := vision.NewPreprocessor(cfg.Model.Preprocessor, cfg.Model.ImageSize, cfg.TensorLayout(), cfg.Model.MaxPixels)
	if err != nil {
		return nil, fmt.Errorf("preprocessor: %w", err)
	}

	cls, err := onnx.Load(modelConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	return &model{preprocessor: pre, classifier: cls}, nil
}

// loadCatalog читает справочник болезней: файл из конфигурации или встроенный.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load disease catalog: %w", err)
	}
	return c, nil
}

// watchCatalog включает перечитывание внешнего справочника. Возвращает функцию остановки.
func watchCatalog(ctx context.Context, cfg *config.Config, c *catalog.Catalog, logger *slog.Logger) (func(), error) {
	if cfg.Catalog.Path == "" || !cfg.Catalog.Watch {
		return func() {}, nil
	}

	w, err := catalog.NewWatcher(c, cfg.Catalog.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("catalog watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		return nil, fmt.Errorf("catalog watcher: %w", err)
	}

	return func() {
		if err := w.Stop(); err != nil {
			logger.Warn("Failed to stop catalog watcher", "error", err)
		}
	}, nil
}

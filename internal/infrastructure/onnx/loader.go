package onnx

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Модель загружается один раз за время жизни процесса.
var (
	loadOnce   sync.Once
	loaded     *Classifier
	loadErr    error
	envStarted bool
	envMu      sync.Mutex

	// openClassifier подменяется в тестах.
	openClassifier = open
)

// Load возвращает общий классификатор. Первый вызов инициализирует
// ONNX Runtime и создаёт пул сессий; последующие возвращают тот же
// экземпляр (или ту же ошибку) независимо от cfg.
func Load(cfg Config, logger *slog.Logger) (*Classifier, error) {
	loadOnce.Do(func() {
		loaded, loadErr = openClassifier(cfg, logger)
	})
	return loaded, loadErr
}

// Shutdown закрывает общий классификатор и окружение ONNX Runtime.
func Shutdown() {
	if loaded != nil {
		loaded.Close()
	}

	envMu.Lock()
	defer envMu.Unlock()
	if envStarted {
		if err := ort.DestroyEnvironment(); err != nil {
			slog.Warn("Failed to destroy ONNX environment", "error", err)
		}
		envStarted = false
	}
}

func open(cfg Config, logger *slog.Logger) (*Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model config: %w", err)
	}
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := startEnvironment(cfg.LibraryPath); err != nil {
		return nil, err
	}

	pool, err := newSessionPool(cfg.PoolSize, cfg.AcquireTimeout, func() (runner, error) {
		return newSession(cfg)
	}, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Model loaded",
		"path", cfg.ModelPath,
		"input_shape", cfg.InputShape,
		"output_shape", cfg.OutputShape,
		"labels", cfg.Labels,
		"sessions", pool.size)

	return newClassifier(cfg, pool, logger), nil
}

func startEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if envStarted {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	envStarted = true
	return nil
}

// Package config загружает настройки сервиса из .env, переменных окружения и YAML.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"leaf-doctor/internal/domain/entity"
)

// Config полная конфигурация сервиса.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Model     ModelConfig     `yaml:"model"`
	Diagnosis DiagnosisConfig `yaml:"diagnosis"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	LogLevel  string          `yaml:"log_level"`
}

// HTTPConfig веб-интерфейс и JSON API.
type HTTPConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ImagesDir      string        `yaml:"images_dir"` // эталонные фото болезней
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// TelegramConfig бот включается, только если задан токен.
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// ModelConfig обученная модель и пул сессий.
type ModelConfig struct {
	Path           string        `yaml:"path"`
	LibraryPath    string        `yaml:"library_path"`
	InputName      string        `yaml:"input_name"`
	OutputName     string        `yaml:"output_name"`
	Layout         string        `yaml:"layout"`
	ImageSize      int           `yaml:"image_size"`
	Labels         []string      `yaml:"labels"`
	PoolSize       int           `yaml:"pool_size"`
	AcquireTimeout time.Duration `yaml:"acquire_timeout"`
	Threads        int           `yaml:"threads"`
	Preprocessor   string        `yaml:"preprocessor"` // imaging | gocv
	MaxPixels      int           `yaml:"max_pixels"`   // предел размера фото до декодирования
}

// DiagnosisConfig порог принятия диагноза.
type DiagnosisConfig struct {
	Threshold float64 `yaml:"threshold"`
}

// CatalogConfig внешний справочник болезней вместо встроенного.
type CatalogConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Addr:           ":8080",
			MaxUploadBytes: 10 << 20,
			ImagesDir:      "images",
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   60 * time.Second,
		},
		Model: ModelConfig{
			Path:           "models/model_cashew_disease.onnx",
			InputName:      "input",
			OutputName:     "output",
			Layout:         string(entity.LayoutNHWC),
			ImageSize:      224,
			Labels:         append([]string(nil), entity.DefaultLabels...),
			PoolSize:       2,
			AcquireTimeout: 5 * time.Second,
			Preprocessor:   "imaging",
			MaxPixels:      entity.DefaultMaxPixels,
		},
		Diagnosis: DiagnosisConfig{
			Threshold: float64(entity.DefaultThreshold),
		},
		Catalog: CatalogConfig{
			Watch: true,
		},
		LogLevel: "info",
	}
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML-файл (если path
// не пуст), затем переменные окружения. Файл .env подхватывается, если он есть.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv переопределяет поля из переменных окружения.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("HTTP_ADDR", &c.HTTP.Addr)
	if port, ok := lookup("PORT"); ok && port != "" {
		c.HTTP.Addr = ":" + port
	}
	str("IMAGES_DIR", &c.HTTP.ImagesDir)
	str("TELEGRAM_TOKEN", &c.Telegram.Token)
	str("MODEL_PATH", &c.Model.Path)
	str("ONNXRUNTIME_LIB", &c.Model.LibraryPath)
	str("MODEL_INPUT_NAME", &c.Model.InputName)
	str("MODEL_OUTPUT_NAME", &c.Model.OutputName)
	str("MODEL_LAYOUT", &c.Model.Layout)
	str("PREPROCESSOR", &c.Model.Preprocessor)
	str("CATALOG_PATH", &c.Catalog.Path)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("MODEL_LABELS"); ok && v != "" {
		labels := strings.Split(v, ",")
		for i := range labels {
			labels[i] = strings.TrimSpace(labels[i])
		}
		c.Model.Labels = labels
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"MODEL_IMAGE_SIZE", &c.Model.ImageSize},
		{"MODEL_POOL_SIZE", &c.Model.PoolSize},
		{"MODEL_THREADS", &c.Model.Threads},
		{"MODEL_MAX_PIXELS", &c.Model.MaxPixels},
	}
	for _, e := range ints {
		if v, ok := lookup(e.key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}

	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		c.HTTP.MaxUploadBytes = n
	}
	if v, ok := lookup("DIAGNOSIS_THRESHOLD"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("DIAGNOSIS_THRESHOLD: %w", err)
		}
		c.Diagnosis.Threshold = f
	}
	if v, ok := lookup("MODEL_ACQUIRE_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("MODEL_ACQUIRE_TIMEOUT: %w", err)
		}
		c.Model.AcquireTimeout = d
	}
	if v, ok := lookup("CATALOG_WATCH"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CATALOG_WATCH: %w", err)
		}
		c.Catalog.Watch = b
	}
	return nil
}

// Validate проверяет конфигурацию.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		return fmt.Errorf("http.max_upload_bytes must be positive")
	}
	if c.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if _, err := entity.ParseLayout(c.Model.Layout); err != nil {
		return fmt.Errorf("model.layout: %w", err)
	}
	if c.Model.ImageSize <= 0 {
		return fmt.Errorf("model.image_size must be positive")
	}
	if c.Model.PoolSize <= 0 {
		return fmt.Errorf("model.pool_size must be positive")
	}
	if len(c.Model.Labels) == 0 {
		return fmt.Errorf("model.labels must not be empty")
	}
	if !slices.Contains(c.Model.Labels, entity.NonLeafLabel) {
		return fmt.Errorf("model.labels must include %q", entity.NonLeafLabel)
	}
	if c.Model.MaxPixels <= 0 {
		return fmt.Errorf("model.max_pixels must be positive")
	}
	switch c.Model.Preprocessor {
	case "", "imaging", "gocv":
	default:
		return fmt.Errorf("model.preprocessor must be imaging or gocv")
	}
	if c.Diagnosis.Threshold <= 0 || c.Diagnosis.Threshold > 1 {
		return fmt.Errorf("diagnosis.threshold must be in (0, 1]")
	}
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error")
	}
	return nil
}

// TensorLayout разобранная раскладка входа модели.
func (c *Config) TensorLayout() entity.TensorLayout {
	l, err := entity.ParseLayout(c.Model.Layout)
	if err != nil {
		return entity.LayoutNHWC
	}
	return l
}

// Package onnx запускает обученный классификатор листьев через ONNX Runtime.
package onnx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// Config параметры модели и пула сессий.
type Config struct {
	ModelPath      string
	LibraryPath    string // путь к libonnxruntime; пусто — по умолчанию
	InputName      string
	OutputName     string
	InputShape     []int64
	OutputShape    []int64
	Labels         []string
	PoolSize       int
	AcquireTimeout time.Duration
	Threads        int
}

// Validate проверяет согласованность форм тензоров и меток.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model path is required")
	}
	if c.InputName == "" || c.OutputName == "" {
		return fmt.Errorf("input and output tensor names are required")
	}
	if len(c.Labels) == 0 {
		return fmt.Errorf("labels are required")
	}

	in := c.InputShape
	if len(in) != 4 || in[0] != 1 {
		return fmt.Errorf("input shape %v: expected [1, H, W, 3] or [1, 3, H, W]", in)
	}
	nhwc := in[3] == 3 && in[1] == in[2]
	nchw := in[1] == 3 && in[2] == in[3]
	if !nhwc && !nchw {
		return fmt.Errorf("input shape %v: expected a square RGB image", in)
	}

	out := c.OutputShape
	if len(out) != 2 || out[0] != 1 || out[1] != int64(len(c.Labels)) {
		return fmt.Errorf("output shape %v does not match %d labels", out, len(c.Labels))
	}
	return nil
}

// Classifier классификатор поверх пула сессий ONNX Runtime.
type Classifier struct {
	cfg       Config
	pool      *sessionPool
	inputSize int
	logger    *slog.Logger
}

func newClassifier(cfg Config, pool *sessionPool, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		cfg:       cfg,
		pool:      pool,
		inputSize: entity.ShapeSize(cfg.InputShape),
		logger:    logger,
	}
}

// Labels метки классов в порядке выходов модели.
func (c *Classifier) Labels() []string {
	return c.cfg.Labels
}

// InputSize число элементов входного тензора.
func (c *Classifier) InputSize() int {
	return c.inputSize
}

// Classify запускает модель на подготовленном тензоре.
func (c *Classifier) Classify(ctx context.Context, input []float32) ([]float32, error) {
	if len(input) != c.inputSize {
		return nil, fmt.Errorf("%w: expected %d values, got %d", entity.ErrShapeMismatch, c.inputSize, len(input))
	}

	r, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}

	output, err := r.Run(input)
	c.pool.Release(r, err == nil)
	if err != nil {
		return nil, err
	}

	if len(output) != len(c.cfg.Labels) {
		return nil, fmt.Errorf("model returned %d values for %d labels", len(output), len(c.cfg.Labels))
	}
	return output, nil
}

// Stats счётчики пула сессий.
func (c *Classifier) Stats() PoolStats {
	return c.pool.Stats()
}

// Close освобождает сессии. Окружение ONNX Runtime освобождается в Shutdown.
func (c *Classifier) Close() {
	c.pool.Destroy()
}

var _ port.Classifier = (*Classifier)(nil)

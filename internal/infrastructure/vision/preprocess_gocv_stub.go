//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"leaf-doctor/internal/domain/entity"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

// GoCVPreprocessor заглушка для сборки без OpenCV.
type GoCVPreprocessor struct {
	Size      int
	Layout    entity.TensorLayout
	MaxPixels int // 0 — DefaultMaxPixels
}

// NewGoCVPreprocessor возвращает ошибку, если сборка без тега gocv.
func NewGoCVPreprocessor(size int, layout entity.TensorLayout) (*GoCVPreprocessor, error) {
	return nil, errNoGoCV
}

// Preprocess возвращает ошибку, если сборка без тега gocv.
func (p *GoCVPreprocessor) Preprocess(ctx context.Context, imageData []byte) ([]float32, error) {
	return nil, errNoGoCV
}

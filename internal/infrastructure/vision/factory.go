package vision

import (
	"fmt"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// Имена реализаций препроцессора в конфигурации.
const (
	BackendImaging = "imaging"
	BackendGoCV    = "gocv"
)

// NewPreprocessor выбирает реализацию по имени. Пустое имя — imaging.
// maxPixels ограничивает размер входного изображения (0 — DefaultMaxPixels).
func NewPreprocessor(backend string, size int, layout entity.TensorLayout, maxPixels int) (port.Preprocessor, error) {
	switch backend {
	case "", BackendImaging:
		p := NewImagingPreprocessor(size, layout)
		p.MaxPixels = maxPixels
		return p, nil
	case BackendGoCV:
		p, err := NewGoCVPreprocessor(size, layout)
		if err != nil {
			return nil, err
		}
		p.MaxPixels = maxPixels
		return p, nil
	default:
		return nil, fmt.Errorf("unknown preprocessor backend %q", backend)
	}
}

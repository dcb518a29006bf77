package entity

import (
	"fmt"
	"strings"
)

// DefaultMaxPixels предел размера фото до декодирования (как у PIL).
const DefaultMaxPixels = 89_478_485

// TensorLayout порядок осей входного тензора модели.
type TensorLayout string

const (
	LayoutNHWC TensorLayout = "NHWC" // Keras по умолчанию
	LayoutNCHW TensorLayout = "NCHW"
)

// ParseLayout разбирает строковое значение раскладки.
func ParseLayout(s string) (TensorLayout, error) {
	switch TensorLayout(strings.ToUpper(strings.TrimSpace(s))) {
	case LayoutNHWC, "":
		return LayoutNHWC, nil
	case LayoutNCHW:
		return LayoutNCHW, nil
	default:
		return "", fmt.Errorf("unknown tensor layout %q", s)
	}
}

// Shape возвращает форму входа для квадратного RGB-изображения со стороной size.
func (l TensorLayout) Shape(size int) []int64 {
	s := int64(size)
	if l == LayoutNCHW {
		return []int64{1, 3, s, s}
	}
	return []int64{1, s, s, 3}
}

// ShapeSize количество элементов тензора указанной формы.
func ShapeSize(shape []int64) int {
	if len(shape) == 0 {
		return 0
	}
	n := 1
	for _, dim := range shape {
		n *= int(dim)
	}
	return n
}

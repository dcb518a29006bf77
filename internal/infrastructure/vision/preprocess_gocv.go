//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"image"

	"gocv.io/x/gocv"

	"leaf-doctor/internal/domain/entity"
)

// GoCVPreprocessor готовит тензор через OpenCV.
type GoCVPreprocessor struct {
	Size      int
	Layout    entity.TensorLayout
	MaxPixels int // 0 — DefaultMaxPixels
}

// NewGoCVPreprocessor создаёт препроцессор на OpenCV.
func NewGoCVPreprocessor(size int, layout entity.TensorLayout) (*GoCVPreprocessor, error) {
	if size <= 0 {
		size = DefaultImageSize
	}
	if layout == "" {
		layout = entity.LayoutNHWC
	}
	return &GoCVPreprocessor{Size: size, Layout: layout}, nil
}

// Preprocess декодирует изображение, приводит к RGB и размеру Size x Size.
func (p *GoCVPreprocessor) Preprocess(ctx context.Context, imageData []byte) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// OpenCV декодирует больше форматов, чем мы принимаем.
	if _, err := checkHeader(imageData, p.MaxPixels); err != nil {
		return nil, err
	}

	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err != nil || mat.Empty() {
		if !mat.Empty() {
			mat.Close()
		}
		return nil, entity.ErrUnsupportedImage
	}
	defer mat.Close()

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(mat, &resized, image.Pt(p.Size, p.Size), 0, 0, gocv.InterpolationCubic)

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(resized, &rgb, gocv.ColorBGRToRGB)

	pix := rgb.ToBytes()
	if len(pix) != p.Size*p.Size*3 {
		return nil, errors.New("unexpected mat size after resize")
	}

	return bytesToTensor(pix, p.Size, p.Layout), nil
}

// bytesToTensor раскладывает упакованные RGB-байты в float32.
func bytesToTensor(pix []byte, size int, layout entity.TensorLayout) []float32 {
	plane := size * size
	out := make([]float32, plane*3)
	for i := 0; i < plane; i++ {
		r := float32(pix[i*3]) / 255.0
		g := float32(pix[i*3+1]) / 255.0
		b := float32(pix[i*3+2]) / 255.0
		if layout == entity.LayoutNCHW {
			out[i], out[plane+i], out[2*plane+i] = r, g, b
		} else {
			out[i*3], out[i*3+1], out[i*3+2] = r, g, b
		}
	}
	return out
}

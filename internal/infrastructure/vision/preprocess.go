package vision

import (
	"context"
	"image"

	"github.com/disintegration/imaging"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// DefaultImageSize сторона квадратного входа модели.
const DefaultImageSize = 224

// ImagingPreprocessor готовит тензор на чистом Go:
// RGB -> resize до Size x Size -> деление на 255.
type ImagingPreprocessor struct {
	Size      int
	Layout    entity.TensorLayout
	Filter    imaging.ResampleFilter
	MaxPixels int // 0 — DefaultMaxPixels
}

// NewImagingPreprocessor создаёт препроцессор. Ресэмплинг бикубический, как у PIL по умолчанию.
func NewImagingPreprocessor(size int, layout entity.TensorLayout) *ImagingPreprocessor {
	if size <= 0 {
		size = DefaultImageSize
	}
	if layout == "" {
		layout = entity.LayoutNHWC
	}
	return &ImagingPreprocessor{
		Size:   size,
		Layout: layout,
		Filter: imaging.CatmullRom,
	}
}

// Preprocess декодирует изображение и возвращает тензор формы Layout.Shape(Size).
func (p *ImagingPreprocessor) Preprocess(ctx context.Context, imageData []byte) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, _, err := Decode(imageData, p.MaxPixels)
	if err != nil {
		return nil, err
	}

	// Пропорции не сохраняются, как и у исходной модели при обучении.
	resized := imaging.Resize(opaque(img), p.Size, p.Size, p.Filter)

	return toTensor(resized, p.Layout), nil
}

// opaque отбрасывает альфа-канал до ресэмплинга: цвет пикселя сохраняется,
// даже если он был полностью прозрачным.
func opaque(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

// toTensor раскладывает NRGBA-пиксели в float32. Альфа-канал отбрасывается.
func toTensor(img *image.NRGBA, layout entity.TensorLayout) []float32 {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	plane := w * h
	out := make([]float32, plane*3)

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			r := float32(row[x*4]) / 255.0
			g := float32(row[x*4+1]) / 255.0
			b := float32(row[x*4+2]) / 255.0

			i := y*w + x
			if layout == entity.LayoutNCHW {
				out[i] = r
				out[plane+i] = g
				out[2*plane+i] = b
			} else {
				out[i*3] = r
				out[i*3+1] = g
				out[i*3+2] = b
			}
		}
	}

	return out
}

var _ port.Preprocessor = (*ImagingPreprocessor)(nil)

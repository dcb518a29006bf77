package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"leaf-doctor/internal/domain/entity"
)

// DefaultMaxPixels предел размера изображения до декодирования.
const DefaultMaxPixels = entity.DefaultMaxPixels

// Decode декодирует JPEG или PNG. Остальные форматы и изображения больше
// maxPixels пикселей не принимаются; maxPixels <= 0 означает DefaultMaxPixels.
func Decode(imageData []byte, maxPixels int) (image.Image, string, error) {
	if _, err := checkHeader(imageData, maxPixels); err != nil {
		return nil, "", err
	}

	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, "", entity.ErrUnsupportedImage
		}
		return nil, "", fmt.Errorf("%w: %v", entity.ErrUnsupportedImage, err)
	}

	return img, format, nil
}

// checkHeader читает только заголовок: формат и размеры.
func checkHeader(imageData []byte, maxPixels int) (string, error) {
	if len(imageData) == 0 {
		return "", entity.ErrEmptyImage
	}
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return "", entity.ErrUnsupportedImage
		}
		return "", fmt.Errorf("%w: %v", entity.ErrUnsupportedImage, err)
	}
	if format != "jpeg" && format != "png" {
		return "", entity.ErrUnsupportedImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("%w: empty %dx%d image", entity.ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return "", fmt.Errorf("%w: %dx%d exceeds %d pixels", entity.ErrUnsupportedImage, cfg.Width, cfg.Height, maxPixels)
	}
	return format, nil
}

// DetectFormat определяет формат по заголовку, не декодируя изображение целиком.
func DetectFormat(imageData []byte) (string, error) {
	if len(imageData) == 0 {
		return "", entity.ErrEmptyImage
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil || (format != "jpeg" && format != "png") {
		return "", entity.ErrUnsupportedImage
	}
	return format, nil
}

// MIMEType MIME-тип для формата, возвращённого Decode.
func MIMEType(format string) string {
	if format == "png" {
		return "image/png"
	}
	return "image/jpeg"
}

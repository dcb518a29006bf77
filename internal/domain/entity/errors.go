package entity

import "errors"

var (
	ErrEmptyImage       = errors.New("empty image")
	ErrUnsupportedImage = errors.New("unsupported image format, expected jpeg or png")
	ErrShapeMismatch    = errors.New("input tensor does not match model input shape")
	ErrModelUnavailable = errors.New("model is not loaded")
	ErrModelBusy        = errors.New("no inference session available")
	ErrDiseaseNotFound  = errors.New("disease not found")
)

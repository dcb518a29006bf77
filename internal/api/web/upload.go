package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	app "leaf-doctor/internal/application"
	"leaf-doctor/internal/domain/entity"
)

// Поля формы: файл из галереи и снимок с камеры.
const (
	fieldUpload = "image"
	fieldCamera = "camera"
)

var (
	errNoImage  = errors.New("no image provided, use the image or camera form field")
	errBadForm  = errors.New("failed to parse multipart form")
	errTooLarge = errors.New("request body is too large")
)

var allowedExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// readInput читает изображение из multipart-формы. Файл из галереи важнее снимка.
func readInput(w http.ResponseWriter, r *http.Request, maxBytes int64) (app.DiagnosisInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return app.DiagnosisInput{}, formError(err)
	}

	upload, err := formFile(r, fieldUpload, true)
	if err != nil {
		return app.DiagnosisInput{}, err
	}
	camera, err := formFile(r, fieldCamera, false)
	if err != nil {
		return app.DiagnosisInput{}, err
	}

	in, ok := app.PickInput(upload, camera)
	if !ok {
		return app.DiagnosisInput{}, errNoImage
	}
	return in, nil
}

func formFile(r *http.Request, field string, checkExt bool) (app.DiagnosisInput, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return app.DiagnosisInput{}, nil
	}
	if err != nil {
		return app.DiagnosisInput{}, formError(err)
	}
	defer file.Close()

	if checkExt {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != "" && !allowedExtensions[ext] {
			return app.DiagnosisInput{}, entity.ErrUnsupportedImage
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return app.DiagnosisInput{}, fmt.Errorf("read %s: %w", field, err)
	}
	return app.DiagnosisInput{Data: data, Filename: header.Filename}, nil
}

// formError отделяет превышение лимита тела от испорченной формы.
func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", errTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %v", errBadForm, err)
}

// classifyError сопоставляет ошибку с кодом ответа.
func classifyError(err error) (code string, status int) {
	switch {
	case errors.Is(err, errNoImage):
		return "missing_image", http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		return "too_large", http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadForm):
		return "invalid_request", http.StatusBadRequest
	case errors.Is(err, entity.ErrEmptyImage),
		errors.Is(err, entity.ErrUnsupportedImage),
		errors.Is(err, entity.ErrShapeMismatch):
		return "invalid_image", http.StatusBadRequest
	case errors.Is(err, entity.ErrDiseaseNotFound):
		return "not_found", http.StatusNotFound
	case errors.Is(err, entity.ErrModelUnavailable):
		return "model_unavailable", http.StatusServiceUnavailable
	case errors.Is(err, entity.ErrModelBusy),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return "model_busy", http.StatusServiceUnavailable
	default:
		return "internal_error", http.StatusInternalServerError
	}
}

// userMessage текст ошибки для страницы диагностики.
func userMessage(code string) string {
	switch code {
	case "missing_image":
		return "Silakan upload gambar daun atau ambil foto terlebih dahulu."
	case "too_large":
		return "Ukuran gambar terlalu besar."
	case "invalid_request", "invalid_image":
		return "Gambar tidak dapat dibaca. Gunakan file JPG atau PNG."
	case "model_unavailable":
		return "Model diagnosis belum dimuat. Coba lagi nanti."
	case "model_busy":
		return "Server sedang sibuk. Coba lagi beberapa saat lagi."
	default:
		return "Terjadi kesalahan saat mendiagnosis gambar."
	}
}

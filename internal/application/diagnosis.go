package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// DiagnosisInput изображение, присланное пользователем.
type DiagnosisInput struct {
	Data     []byte
	Filename string
	Source   entity.Source
}

// Empty сообщает, что изображения нет.
func (in DiagnosisInput) Empty() bool {
	return len(in.Data) == 0
}

// PickInput выбирает изображение для диагностики: загруженный файл важнее снимка с камеры.
func PickInput(upload, camera DiagnosisInput) (DiagnosisInput, bool) {
	if !upload.Empty() {
		upload.Source = entity.SourceUpload
		return upload, true
	}
	if !camera.Empty() {
		camera.Source = entity.SourceCamera
		return camera, true
	}
	return DiagnosisInput{}, false
}

// DiagnosisService прогоняет фото через модель и решает, принять ли результат.
type DiagnosisService struct {
	preprocessor port.Preprocessor
	classifier   port.Classifier
	catalog      port.DiseaseCatalog
	observer     port.DiagnosisObserver
	threshold    float32
	logger       *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewDiagnosisService создаёт сервис диагностики. observer и logger могут быть nil.
func NewDiagnosisService(
	preprocessor port.Preprocessor,
	classifier port.Classifier,
	catalog port.DiseaseCatalog,
	observer port.DiagnosisObserver,
	threshold float32,
	logger *slog.Logger,
) *DiagnosisService {
	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = entity.DefaultThreshold
	}
	return &DiagnosisService{
		preprocessor: preprocessor,
		classifier:   classifier,
		catalog:      catalog,
		observer:     observer,
		threshold:    threshold,
		logger:       logger,
		now:          time.Now,
		newID:        func() string { return uuid.New().String() },
	}
}

// Threshold текущий порог уверенности.
func (s *DiagnosisService) Threshold() float32 {
	return s.threshold
}

// Ready сообщает, загружена ли модель.
func (s *DiagnosisService) Ready() bool {
	return s.classifier != nil && s.preprocessor != nil
}

// Diagnose классифицирует изображение. Результат ниже порога или класс non-leaf
// возвращается как отказ (Accepted=false), а не как ошибка.
func (s *DiagnosisService) Diagnose(ctx context.Context, in DiagnosisInput) (*entity.Diagnosis, error) {
	if !s.Ready() {
		return nil, entity.ErrModelUnavailable
	}
	if in.Empty() {
		return nil, entity.ErrEmptyImage
	}

	tensor, err := s.preprocessor.Preprocess(ctx, in.Data)
	if err != nil {
		return nil, fmt.Errorf("preprocess image: %w", err)
	}

	start := time.Now()
	probs, err := s.classifier.Classify(ctx, tensor)
	if err != nil {
		return nil, fmt.Errorf("classify image: %w", err)
	}
	elapsed := time.Since(start)

	prediction, err := entity.NewPrediction(s.classifier.Labels(), probs)
	if err != nil {
		return nil, fmt.Errorf("read model output: %w", err)
	}

	source := in.Source
	if source == "" {
		source = entity.SourceUpload
	}

	d := &entity.Diagnosis{
		ID:         s.newID(),
		CreatedAt:  s.now(),
		Source:     source,
		Filename:   in.Filename,
		Prediction: *prediction,
		Threshold:  s.threshold,
		Accepted:   prediction.IsRecognized(s.threshold),
	}

	if d.Accepted && s.catalog != nil {
		if info, ok := s.catalog.Lookup(prediction.Label); ok {
			d.Disease = &info
		}
	}

	if s.observer != nil {
		s.observer.ObserveDiagnosis(d, elapsed)
	}

	s.logger.Info("Diagnosis finished",
		"id", d.ID,
		"source", d.Source,
		"filename", d.Filename,
		"label", d.Prediction.Label,
		"confidence", d.ConfidencePercent(),
		"outcome", d.Outcome(),
		"inference", elapsed)

	return d, nil
}

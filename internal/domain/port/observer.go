package port

import (
	"time"

	"leaf-doctor/internal/domain/entity"
)

// DiagnosisObserver получает каждый завершённый диагноз (метрики, аудит).
type DiagnosisObserver interface {
	ObserveDiagnosis(d *entity.Diagnosis, inference time.Duration)
}

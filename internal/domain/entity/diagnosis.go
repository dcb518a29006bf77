package entity

import (
	"errors"
	"fmt"
	"time"
)

// Source откуда получено изображение.
type Source string

const (
	SourceUpload Source = "upload" // файл из галереи
	SourceCamera Source = "camera" // снимок с камеры
)

// Prediction результат классификатора: лучший класс и распределение по всем классам.
type Prediction struct {
	Label         string
	Confidence    float32
	Probabilities map[string]float32
}

// NewPrediction выбирает класс с максимальной вероятностью.
// При равенстве побеждает класс с меньшим индексом.
func NewPrediction(labels []string, probs []float32) (*Prediction, error) {
	if len(probs) == 0 {
		return nil, errors.New("empty model output")
	}
	if len(probs) != len(labels) {
		return nil, fmt.Errorf("model returned %d probabilities for %d labels", len(probs), len(labels))
	}

	best := 0
	all := make(map[string]float32, len(labels))
	for i, p := range probs {
		all[labels[i]] = p
		if p > probs[best] {
			best = i
		}
	}

	return &Prediction{
		Label:         labels[best],
		Confidence:    probs[best],
		Probabilities: all,
	}, nil
}

// IsRecognized сообщает, принимается ли предсказание как диагноз.
// Отклоняются класс non-leaf и всё, что ниже порога уверенности.
func (p Prediction) IsRecognized(threshold float32) bool {
	return p.Label != NonLeafLabel && p.Confidence >= threshold
}

// Diagnosis итог проверки одного изображения.
type Diagnosis struct {
	ID         string
	CreatedAt  time.Time
	Source     Source
	Filename   string
	Prediction Prediction
	Threshold  float32
	Accepted   bool     // false — скорее всего не лист кешью
	Disease    *Disease // справка, если для класса она есть
}

// ConfidencePercent уверенность в процентах с двумя знаками: "87.50%".
func (d *Diagnosis) ConfidencePercent() string {
	return fmt.Sprintf("%.2f%%", d.Prediction.Confidence*100)
}

// Outcome короткий итог для логов и метрик.
func (d *Diagnosis) Outcome() string {
	if d.Accepted {
		return "accepted"
	}
	return "rejected"
}

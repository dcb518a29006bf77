package app

import (
	"context"
	"sync"
	"time"

	"leaf-doctor/internal/domain/entity"
)

type fakePreprocessor struct {
	err   error
	calls int
}

func (f *fakePreprocessor) Preprocess(ctx context.Context, imageData []byte) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return make([]float32, 4), nil
}

type fakeClassifier struct {
	probs []float32
	err   error
	calls int
}

func (f *fakeClassifier) Classify(ctx context.Context, input []float32) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.probs, nil
}

func (f *fakeClassifier) Labels() []string {
	return entity.DefaultLabels
}

type fakeCatalog struct {
	diseases []entity.Disease
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{diseases: []entity.Disease{
		{Label: "Cashew anthracnose", Description: "jamur", Treatment: []string{"fungisida"}, Image: "anthracnose.jpg"},
		{Label: "Cashew leaf miner", Description: "hama", Treatment: []string{"insektisida"}, Image: "leaf_miner.jpg"},
		{Label: "Cashew red rust", Description: "karat", Treatment: []string{"fungisida"}, Image: "red_rust.jpg"},
	}}
}

func (c *fakeCatalog) Lookup(label string) (entity.Disease, bool) {
	for _, d := range c.diseases {
		if d.Label == label {
			return d, true
		}
	}
	return entity.Disease{}, false
}

func (c *fakeCatalog) All() []entity.Disease {
	return append([]entity.Disease(nil), c.diseases...)
}

type recordingObserver struct {
	mu    sync.Mutex
	seen  []*entity.Diagnosis
	times []time.Duration
}

func (o *recordingObserver) ObserveDiagnosis(d *entity.Diagnosis, inference time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, d)
	o.times = append(o.times, inference)
}

package onnx

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"leaf-doctor/internal/domain/entity"
)

func testConfig() Config {
	return Config{
		ModelPath:   "models/model_cashew_disease.onnx",
		InputName:   "input",
		OutputName:  "output",
		InputShape:  entity.LayoutNHWC.Shape(224),
		OutputShape: []int64{1, int64(len(entity.DefaultLabels))},
		Labels:      entity.DefaultLabels,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid NHWC", func(c *Config) {}, false},
		{"valid NCHW", func(c *Config) { c.InputShape = entity.LayoutNCHW.Shape(224) }, false},
		{"missing model", func(c *Config) { c.ModelPath = "" }, true},
		{"missing names", func(c *Config) { c.OutputName = "" }, true},
		{"no labels", func(c *Config) { c.Labels = nil }, true},
		{"batch of two", func(c *Config) { c.InputShape = []int64{2, 224, 224, 3} }, true},
		{"not square", func(c *Config) { c.InputShape = []int64{1, 224, 200, 3} }, true},
		{"grayscale", func(c *Config) { c.InputShape = []int64{1, 224, 224, 1} }, true},
		{"output mismatch", func(c *Config) { c.OutputShape = []int64{1, 4} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func newTestClassifier(t *testing.T, f *fakeFactory) *Classifier {
	t.Helper()
	pool, err := newSessionPool(1, 50*time.Millisecond, f.New, nil)
	require.NoError(t, err)
	c := newClassifier(testConfig(), pool, nil)
	t.Cleanup(c.Close)
	return c
}

func TestClassifier_Classify(t *testing.T) {
	f := &fakeFactory{out: []float32{0.1, 0.1, 0.1, 0.6, 0.1}}
	c := newTestClassifier(t, f)

	require.Equal(t, 224*224*3, c.InputSize())
	require.Equal(t, entity.DefaultLabels, c.Labels())

	out, err := c.Classify(context.Background(), make([]float32, c.InputSize()))
	require.NoError(t, err)
	require.Equal(t, []float32{0.1, 0.1, 0.1, 0.6, 0.1}, out)
	require.Equal(t, int32(1), f.created[0].runs.Load())
}

func TestClassifier_ShapeMismatch(t *testing.T) {
	f := &fakeFactory{out: make([]float32, 5)}
	c := newTestClassifier(t, f)

	_, err := c.Classify(context.Background(), make([]float32, 10))
	require.ErrorIs(t, err, entity.ErrShapeMismatch)
	require.Zero(t, f.created[0].runs.Load())
}

func TestClassifier_WrongOutputSize(t *testing.T) {
	f := &fakeFactory{out: []float32{1, 0}}
	c := newTestClassifier(t, f)

	_, err := c.Classify(context.Background(), make([]float32, c.InputSize()))
	require.Error(t, err)
}

func TestClassifier_RunFailureReplacesSession(t *testing.T) {
	f := &fakeFactory{out: make([]float32, 5)}
	c := newTestClassifier(t, f)
	f.created[0].err = errors.New("boom")

	_, err := c.Classify(context.Background(), make([]float32, c.InputSize()))
	require.Error(t, err)
	require.Equal(t, 2, f.count())
	require.Equal(t, int64(1), c.Stats().Replaced)

	_, err = c.Classify(context.Background(), make([]float32, c.InputSize()))
	require.NoError(t, err)
}

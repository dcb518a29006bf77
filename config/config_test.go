package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaf-doctor/internal/domain/entity"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 224, cfg.Model.ImageSize)
	assert.Equal(t, entity.DefaultLabels, cfg.Model.Labels)
	assert.InDelta(t, 0.6, cfg.Diagnosis.Threshold, 1e-6)
	assert.Equal(t, entity.LayoutNHWC, cfg.TensorLayout())
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"threshold of one", func(c *Config) { c.Diagnosis.Threshold = 1 }, false},
		{"zero threshold", func(c *Config) { c.Diagnosis.Threshold = 0 }, true},
		{"threshold above one", func(c *Config) { c.Diagnosis.Threshold = 1.2 }, true},
		{"missing model path", func(c *Config) { c.Model.Path = "" }, true},
		{"unknown layout", func(c *Config) { c.Model.Layout = "HWC" }, true},
		{"zero image size", func(c *Config) { c.Model.ImageSize = 0 }, true},
		{"zero pool", func(c *Config) { c.Model.PoolSize = 0 }, true},
		{"no labels", func(c *Config) { c.Model.Labels = nil }, true},
		{"labels without non-leaf", func(c *Config) { c.Model.Labels = entity.DefaultLabels[:4] }, true},
		{"zero max pixels", func(c *Config) { c.Model.MaxPixels = 0 }, true},
		{"unknown preprocessor", func(c *Config) { c.Model.Preprocessor = "pil" }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"no upload limit", func(c *Config) { c.HTTP.MaxUploadBytes = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
http:
  addr: ":9090"
  images_dir: /srv/images
model:
  path: /srv/model.onnx
  layout: NCHW
  acquire_timeout: 2s
diagnosis:
  threshold: 0.75
telegram:
  token: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("TELEGRAM_TOKEN", "from-env")
	t.Setenv("MODEL_POOL_SIZE", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "/srv/images", cfg.HTTP.ImagesDir)
	assert.Equal(t, "/srv/model.onnx", cfg.Model.Path)
	assert.Equal(t, entity.LayoutNCHW, cfg.TensorLayout())
	assert.Equal(t, 2*time.Second, cfg.Model.AcquireTimeout)
	assert.InDelta(t, 0.75, cfg.Diagnosis.Threshold, 1e-9)
	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, 4, cfg.Model.PoolSize)
	// Поля, которых нет в файле, остаются по умолчанию.
	assert.Equal(t, 224, cfg.Model.ImageSize)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	t.Setenv("DIAGNOSIS_THRESHOLD", "high")
	_, err = Load("")
	require.Error(t, err)

	t.Setenv("DIAGNOSIS_THRESHOLD", "1.5")
	_, err = Load("")
	require.Error(t, err)
}

func TestLoad_LabelsMustKeepNonLeaf(t *testing.T) {
	t.Setenv("MODEL_LABELS", "Cashew anthracnose,Cashew healthy,Cashew leaf miner,Cashew red rust")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), entity.NonLeafLabel)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":             "7000",
		"MODEL_LABELS":     "a, b ,non-leaf",
		"CATALOG_PATH":     "/etc/diseases.yaml",
		"CATALOG_WATCH":    "false",
		"MAX_UPLOAD_BYTES": "1024",
		"MODEL_IMAGE_SIZE": "256",
		"PREPROCESSOR":     "gocv",
		"MODEL_MAX_PIXELS": "4000000",
	}
	cfg := DefaultConfig()
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.Equal(t, []string{"a", "b", "non-leaf"}, cfg.Model.Labels)
	assert.Equal(t, "/etc/diseases.yaml", cfg.Catalog.Path)
	assert.False(t, cfg.Catalog.Watch)
	assert.Equal(t, int64(1024), cfg.HTTP.MaxUploadBytes)
	assert.Equal(t, 256, cfg.Model.ImageSize)
	assert.Equal(t, "gocv", cfg.Model.Preprocessor)
	assert.Equal(t, 4_000_000, cfg.Model.MaxPixels)

	err = cfg.applyEnv(func(k string) (string, bool) {
		if k == "MODEL_POOL_SIZE" {
			return "many", true
		}
		return "", false
	})
	require.Error(t, err)
}

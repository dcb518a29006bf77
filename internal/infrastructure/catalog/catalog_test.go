package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaf-doctor/internal/domain/entity"
)

func TestDefault_HasOriginalDiseases(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	all := c.All()
	require.Len(t, all, 3)
	assert.Equal(t, "Cashew anthracnose", all[0].Label)
	assert.Equal(t, "Cashew leaf miner", all[1].Label)
	assert.Equal(t, "Cashew red rust", all[2].Label)

	rust, ok := c.Lookup("Cashew red rust")
	require.True(t, ok)
	assert.Equal(t, "red_rust.jpg", rust.Image)
	assert.Contains(t, rust.Description, "karat merah/oranye")
	assert.Equal(t, []string{
		"Semprotkan fungisida secara berkala.",
		"Singkirkan daun-daun terinfeksi.",
		"Hindari kelembapan tinggi di sekitar tanaman.",
	}, rust.Treatment)

	_, ok = c.Lookup("Cashew healthy")
	assert.False(t, ok)
	_, ok = c.Lookup(entity.NonLeafLabel)
	assert.False(t, ok)
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "diseases: []"},
		{"no label", "diseases:\n  - description: x"},
		{"no description", "diseases:\n  - label: A"},
		{"duplicate", "diseases:\n  - label: A\n    description: x\n  - label: A\n    description: y"},
		{"non-leaf", "diseases:\n  - label: non-leaf\n    description: x"},
		{"broken yaml", "diseases: [ {"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	c := New([]entity.Disease{{Label: "A", Description: "x"}})
	all := c.All()
	all[0].Label = "B"

	_, ok := c.Lookup("A")
	require.True(t, ok)
	require.Equal(t, "A", c.All()[0].Label)
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 3, c.Len())

	path := filepath.Join(t.TempDir(), "diseases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diseases:\n  - label: A\n    description: x\n"), 0o644))

	c, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestReload_KeepsPreviousOnError(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diseases: []"), 0o644))

	require.Error(t, c.Reload(path))
	require.Equal(t, 3, c.Len())
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diseases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("diseases:\n  - label: A\n    description: x\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	w, err := NewWatcher(c, path, nil)
	require.NoError(t, err)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	updated := "diseases:\n  - label: A\n    description: x\n  - label: B\n    description: y\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		_, ok := c.Lookup("B")
		return ok
	}, 5*time.Second, 20*time.Millisecond)
}

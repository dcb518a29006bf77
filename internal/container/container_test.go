package container

import (
	"testing"

	"github.com/stretchr/testify/require"

	"leaf-doctor/internal/infrastructure/catalog"
	"leaf-doctor/internal/infrastructure/storage"
)

func TestNew_WithoutModel(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	c := New(Deps{
		Users:   storage.NewMemoryUserRepository(),
		Catalog: cat,
	})

	require.False(t, c.DiagnosisService.Ready())
	require.Len(t, c.DiseaseService.List(), 3)
	require.NotNil(t, c.UserService)
}

package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisease_Slug(t *testing.T) {
	d := Disease{Label: "Cashew red rust"}
	require.Equal(t, "cashew-red-rust", d.Slug())
	require.Equal(t, "non-leaf", Slugify(" non-leaf "))
}

func TestDisease_TreatmentText(t *testing.T) {
	d := Disease{Treatment: []string{"Gunakan insektisida sistemik.", "Jaga kebersihan area kebun."}}
	require.Equal(t, "- Gunakan insektisida sistemik.\n- Jaga kebersihan area kebun.", d.TreatmentText())
	require.Empty(t, Disease{}.TreatmentText())
}

package telegram

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leaf-doctor/internal/domain/entity"
)

var redRust = entity.Disease{
	Label:       "Cashew red rust",
	Description: "Penyakit jamur yang menyebabkan bercak karat merah/oranye di permukaan daun.",
	Treatment:   []string{"Semprotkan fungisida secara berkala.", "Singkirkan daun-daun terinfeksi."},
	Image:       "red_rust.jpg",
}

func TestMenuKeyboard(t *testing.T) {
	kb := menuKeyboard()
	require.Len(t, kb.Keyboard, 1)
	row := kb.Keyboard[0]
	require.Len(t, row, 3)
	assert.Equal(t, "🏠 Welcome", row[0].Text)
	assert.Equal(t, "🩺 Diagnosis", row[1].Text)
	assert.Equal(t, "📖 Penyakit", row[2].Text)
	assert.True(t, kb.ResizeKeyboard)
}

func TestPageFromText(t *testing.T) {
	tests := []struct {
		text string
		page entity.Page
		ok   bool
	}{
		{"🏠 Welcome", entity.PageWelcome, true},
		{"🩺 Diagnosis", entity.PageDiagnosis, true},
		{" 📖 Penyakit ", entity.PageDiseases, true},
		{"penyakit", entity.PageDiseases, true},
		{"hello", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			page, ok := pageFromText(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.page, page)
		})
	}
}

func TestFormatDiagnosis_Accepted(t *testing.T) {
	d := &entity.Diagnosis{
		Prediction: entity.Prediction{Label: "Cashew red rust", Confidence: 0.875},
		Accepted:   true,
		Disease:    &redRust,
	}

	text := formatDiagnosis(d)
	assert.True(t, strings.HasPrefix(text, msgResultHeader))
	assert.Contains(t, text, "✅ Gambar dikenali sebagai: Cashew red rust")
	assert.Contains(t, text, "Keyakinan: 87.50%")
	assert.Contains(t, text, "ℹ️ Informasi Penyakit: Cashew red rust")
	assert.Contains(t, text, "Penanganan:\n- Semprotkan fungisida secara berkala.\n- Singkirkan daun-daun terinfeksi.")
}

func TestFormatDiagnosis_HealthyHasNoInfo(t *testing.T) {
	d := &entity.Diagnosis{
		Prediction: entity.Prediction{Label: "Cashew healthy", Confidence: 0.9},
		Accepted:   true,
	}

	text := formatDiagnosis(d)
	assert.Contains(t, text, "Gambar dikenali sebagai: Cashew healthy")
	assert.NotContains(t, text, "Informasi Penyakit")
}

func TestFormatDiagnosis_Rejected(t *testing.T) {
	d := &entity.Diagnosis{
		Prediction: entity.Prediction{Label: "Cashew anthracnose", Confidence: 0.41},
		Accepted:   false,
	}

	text := formatDiagnosis(d)
	assert.Contains(t, text, msgRejected)
	assert.Contains(t, text, "Prediksi: Cashew anthracnose")
	assert.Contains(t, text, "Keyakinan: 41.00%")
}

func TestFormatDisease(t *testing.T) {
	text := formatDisease(redRust)
	assert.True(t, strings.HasPrefix(text, "📌 Cashew red rust\n\nDeskripsi: "))
	assert.Contains(t, text, "- Singkirkan daun-daun terinfeksi.")
}

func TestCaption(t *testing.T) {
	assert.Equal(t, "short", caption("short"))

	long := strings.Repeat("ä", maxCaptionLen+10)
	got := caption(long)
	assert.Len(t, []rune(got), maxCaptionLen)
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestIsImageDocument(t *testing.T) {
	assert.False(t, isImageDocument(nil))
	assert.True(t, isImageDocument(&tgbotapi.Document{MimeType: "image/jpeg"}))
	assert.True(t, isImageDocument(&tgbotapi.Document{MimeType: "image/PNG"}))
	assert.True(t, isImageDocument(&tgbotapi.Document{FileName: "leaf.JPG"}))
	assert.False(t, isImageDocument(&tgbotapi.Document{MimeType: "application/pdf", FileName: "leaf.pdf"}))
	assert.False(t, isImageDocument(&tgbotapi.Document{MimeType: "image/gif", FileName: "leaf.gif"}))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{entity.ErrModelUnavailable, msgModelUnavailable},
		{fmt.Errorf("classify image: %w", entity.ErrModelBusy), msgModelBusy},
		{fmt.Errorf("preprocess image: %w", entity.ErrUnsupportedImage), msgUnsupportedImage},
		{entity.ErrEmptyImage, msgUnsupportedImage},
		{errors.New("boom"), msgProcessingError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorMessage(tt.err), tt.err.Error())
	}
}

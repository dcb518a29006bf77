package telegram

import (
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leaf-doctor/internal/domain/entity"
)

// maxCaptionLen ограничение Telegram на подпись к фото.
const maxCaptionLen = 1024

// menuKeyboard клавиатура с тремя пунктами меню.
func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	buttons := make([]tgbotapi.KeyboardButton, 0, len(entity.Pages()))
	for _, p := range entity.Pages() {
		buttons = append(buttons, tgbotapi.NewKeyboardButton(buttonText(p)))
	}
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(buttons...))
	kb.ResizeKeyboard = true
	return kb
}

func buttonText(p entity.Page) string {
	return p.Icon() + " " + p.Title()
}

// pageFromText распознаёт нажатую кнопку меню (с иконкой или без).
func pageFromText(text string) (entity.Page, bool) {
	text = strings.TrimSpace(text)
	for _, p := range entity.Pages() {
		if text == buttonText(p) || strings.EqualFold(text, p.Title()) {
			return p, true
		}
	}
	return "", false
}

// formatDiagnosis текст ответа с результатом диагностики.
func formatDiagnosis(d *entity.Diagnosis) string {
	var sb strings.Builder
	sb.WriteString(msgResultHeader)
	sb.WriteString("\n")

	if !d.Accepted {
		sb.WriteString(msgRejected)
		sb.WriteString("\nPrediksi: ")
		sb.WriteString(d.Prediction.Label)
		sb.WriteString("\nKeyakinan: ")
		sb.WriteString(d.ConfidencePercent())
		return sb.String()
	}

	sb.WriteString(msgRecognized)
	sb.WriteString(d.Prediction.Label)
	sb.WriteString("\nKeyakinan: ")
	sb.WriteString(d.ConfidencePercent())

	if d.Disease != nil {
		sb.WriteString("\n\nℹ️ Informasi Penyakit: ")
		sb.WriteString(d.Disease.Label)
		sb.WriteString("\n\n")
		sb.WriteString(formatDiseaseBody(*d.Disease))
	}
	return sb.String()
}

// formatDisease карточка болезни для справочника.
func formatDisease(d entity.Disease) string {
	return "📌 " + d.Label + "\n\n" + formatDiseaseBody(d)
}

func formatDiseaseBody(d entity.Disease) string {
	return "Deskripsi: " + d.Description + "\n\nPenanganan:\n" + d.TreatmentText()
}

// caption обрезает текст до допустимой длины подписи.
func caption(text string) string {
	runes := []rune(text)
	if len(runes) <= maxCaptionLen {
		return text
	}
	return string(runes[:maxCaptionLen-1]) + "…"
}

// isImageDocument принимает только файлы JPG и PNG, присланные документом.
func isImageDocument(doc *tgbotapi.Document) bool {
	if doc == nil {
		return false
	}
	switch strings.ToLower(doc.MimeType) {
	case "image/jpeg", "image/png":
		return true
	}
	name := strings.ToLower(doc.FileName)
	return strings.HasSuffix(name, ".jpg") || strings.HasSuffix(name, ".jpeg") || strings.HasSuffix(name, ".png")
}

// errorMessage текст для пользователя по ошибке диагностики.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrModelUnavailable):
		return msgModelUnavailable
	case errors.Is(err, entity.ErrModelBusy):
		return msgModelBusy
	case errors.Is(err, entity.ErrUnsupportedImage), errors.Is(err, entity.ErrEmptyImage):
		return msgUnsupportedImage
	default:
		return msgProcessingError
	}
}

package entity

import "strings"

// Disease справочная информация о болезни листа кешью.
type Disease struct {
	Label       string   // метка класса модели
	Description string   // описание болезни
	Treatment   []string // шаги по лечению
	Image       string   // имя файла эталонного изображения
}

// Slug возвращает идентификатор для URL: "Cashew red rust" -> "cashew-red-rust".
func (d Disease) Slug() string {
	return Slugify(d.Label)
}

// TreatmentText склеивает шаги лечения в маркированный список.
func (d Disease) TreatmentText() string {
	lines := make([]string, 0, len(d.Treatment))
	for _, step := range d.Treatment {
		lines = append(lines, "- "+step)
	}
	return strings.Join(lines, "\n")
}

// Slugify приводит метку к виду, пригодному для URL.
func Slugify(label string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(label)), " ", "-")
}

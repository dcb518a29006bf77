package entity

import "strings"

// Page страница бокового меню. Страницы взаимоисключающие.
type Page string

const (
	PageWelcome   Page = "welcome"
	PageDiagnosis Page = "diagnosis"
	PageDiseases  Page = "diseases"
)

// Pages возвращает страницы в порядке пунктов меню.
func Pages() []Page {
	return []Page{PageWelcome, PageDiagnosis, PageDiseases}
}

// ParsePage разбирает название страницы. Неизвестное значение даёт PageWelcome.
func ParsePage(s string) Page {
	switch Page(strings.ToLower(strings.TrimSpace(s))) {
	case PageDiagnosis:
		return PageDiagnosis
	case PageDiseases, "penyakit":
		return PageDiseases
	default:
		return PageWelcome
	}
}

// Title подпись пункта меню.
func (p Page) Title() string {
	switch p {
	case PageDiagnosis:
		return "Diagnosis"
	case PageDiseases:
		return "Penyakit"
	default:
		return "Welcome"
	}
}

// Icon иконка пункта меню.
func (p Page) Icon() string {
	switch p {
	case PageDiagnosis:
		return "🩺"
	case PageDiseases:
		return "📖"
	default:
		return "🏠"
	}
}

// State состояние пользователя, соответствующее странице.
func (p Page) State() UserState {
	switch p {
	case PageDiagnosis:
		return StateAwaitingPhoto
	case PageDiseases:
		return StateBrowsingDiseases
	default:
		return StateWelcome
	}
}

package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateWelcome          UserState = "welcome"           // На приветственной странице
	StateAwaitingPhoto    UserState = "awaiting_photo"    // Страница диагностики, ждём фото листа
	StateProcessing       UserState = "processing"        // Обработка изображения
	StateBrowsingDiseases UserState = "browsing_diseases" // Справочник болезней
)

// User представляет пользователя бота
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущее состояние пользователя
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateWelcome,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// Page возвращает страницу меню, на которой находится пользователь.
func (u *User) Page() Page {
	switch u.State {
	case StateAwaitingPhoto, StateProcessing:
		return PageDiagnosis
	case StateBrowsingDiseases:
		return PageDiseases
	default:
		return PageWelcome
	}
}

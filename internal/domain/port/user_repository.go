package port

import (
	"context"

	"leaf-doctor/internal/domain/entity"
)

// UserRepository хранит, на какой странице меню находится каждый пользователь бота
type UserRepository interface {
	// Get возвращает пользователя, при первом обращении создаёт его на странице Welcome
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет пользователя целиком
	Save(ctx context.Context, user *entity.User) error

	// UpdateState меняет только состояние; неизвестный пользователь игнорируется
	UpdateState(ctx context.Context, userID int64, state entity.UserState) error

	// Count количество известных пользователей
	Count(ctx context.Context) (int, error)
}

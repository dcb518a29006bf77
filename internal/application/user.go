package app

import (
	"context"

	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/domain/port"
)

// UserService ведёт пользователя бота по страницам меню.
type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Navigate открывает страницу меню.
func (s *UserService) Navigate(ctx context.Context, userID, chatID int64, page entity.Page) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, page.State())
}

// BeginProcessing помечает, что фото пользователя в работе.
func (s *UserService) BeginProcessing(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateProcessing)
}

// FinishProcessing возвращает пользователя на страницу диагностики.
func (s *UserService) FinishProcessing(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.Navigate(ctx, userID, chatID, entity.PageDiagnosis)
}

// Cancel возвращает пользователя на приветственную страницу.
func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.Navigate(ctx, userID, chatID, entity.PageWelcome)
}

// ActiveUsers количество пользователей бота, известных процессу.
func (s *UserService) ActiveUsers(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mkravchenko/lendit-backend/internal/models"
	"github.com/mkravchenko/lendit-backend/internal/pkg/apperror"
	"github.com/mkravchenko/lendit-backend/internal/repository"
)

// UserRepositoryIface описывает зависимости сервиса пользователей.
type UserRepositoryIface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	SetBanned(ctx context.Context, id uuid.UUID, banned bool) error
}

// UserService отвечает за публичные профили и административные действия
// над пользователями.
type UserService struct {
	repo UserRepositoryIface
}

// NewUserService создаёт сервис пользователей.
func NewUserService(repo UserRepositoryIface) *UserService {
	return &UserService{repo: repo}
}

// GetUser возвращает пользователя по идентификатору.
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListUsers возвращает страницу пользователей (для админки).
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.List(ctx, limit, offset)
}

// SetBanned блокирует или разблокирует пользователя.
func (s *UserService) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	if err := s.repo.SetBanned(ctx, id, banned); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}
	return nil
}

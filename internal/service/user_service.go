package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/pagination"
	"github.com/dedicate-place/backend/internal/pkg/apperror"
	"github.com/dedicate-place/backend/internal/repository"
	"github.com/dedicate-place/backend/internal/validation"
)

// UserRepositoryIface описывает зависимости UserService от слоя хранилища.
type UserRepositoryIface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	UpdateRole(ctx context.Context, userID uuid.UUID, role string) error
	Delete(ctx context.Context, userID uuid.UUID) error
	ListProfiles(ctx context.Context, params pagination.Request) ([]models.Profile, int, error)
}

// UserService инкапсулирует бизнес-логику профилей и админского управления.
type UserService struct {
	repo UserRepositoryIface
}

// NewUserService создаёт сервис пользователей.
func NewUserService(repo UserRepositoryIface) *UserService {
	return &UserService{repo: repo}
}

// GetProfile возвращает профиль пользователя.
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}
	return profile, nil
}

// UpdateProfile обновляет профиль. Пользователь правит только свой профиль,
// админ - любой. Смена роли доступна только админу и идёт отдельной веткой.
func (s *UserService) UpdateProfile(ctx context.Context, actorID uuid.UUID, actorRole string, userID uuid.UUID, form *dto.ProfileUpdateForm) (*models.Profile, error) {
	if actorRole != models.RoleAdmin && actorID != userID {
		return nil, apperror.ErrForbidden
	}

	profile, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if form.FirstName != "" {
		if err := validation.ValidateName("имя", form.FirstName); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		profile.FirstName = strings.TrimSpace(form.FirstName)
	}
	if form.LastName != "" {
		if err := validation.ValidateName("фамилия", form.LastName); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		profile.LastName = strings.TrimSpace(form.LastName)
	}

	if form.CompanyWebsite != nil {
		if err := validation.ValidateURL("сайт компании", *form.CompanyWebsite); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	if form.CompanyName != nil {
		profile.CompanyName = form.CompanyName
	}
	if form.CompanyWebsite != nil {
		profile.CompanyWebsite = form.CompanyWebsite
	}
	if form.GuardianArea != nil {
		profile.GuardianArea = form.GuardianArea
	}
	if form.GuardianPhone != nil {
		profile.GuardianPhone = form.GuardianPhone
	}

	// Смена роли только админом. Проверяется до записи профиля, чтобы
	// запрещённая форма не оставила частично сохранённых полей.
	roleChanged := form.Role != "" && form.Role != profile.Role
	if roleChanged {
		if actorRole != models.RoleAdmin {
			return nil, apperror.ErrForbidden
		}
		if !models.ValidRole(form.Role) {
			return nil, apperror.New(apperror.ErrCodeValidation, "недопустимая роль")
		}
	}

	if err := s.repo.UpdateProfile(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
	}

	if roleChanged {
		if err := s.repo.UpdateRole(ctx, userID, form.Role); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return nil, apperror.ErrUserNotFound
			}
			return nil, err
		}
		profile.Role = form.Role
	}

	return profile, nil
}

// Delete удаляет пользователя. Доступно только админу, самого себя
// админ удалить не может.
func (s *UserService) Delete(ctx context.Context, actorID uuid.UUID, userID uuid.UUID) error {
	if actorID == userID {
		return apperror.New(apperror.ErrCodeConflict, "нельзя удалить собственную учётную запись")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return err
	}

	return nil
}

// List возвращает страницу профилей для админского списка.
func (s *UserService) List(ctx context.Context, page pagination.Request) ([]models.Profile, pagination.Meta, error) {
	profiles, total, err := s.repo.ListProfiles(ctx, page)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return profiles, pagination.NewMeta(page, total), nil
}

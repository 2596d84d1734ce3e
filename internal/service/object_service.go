package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dedicate-place/backend/internal/debounce"
	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/logger"
	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/pagination"
	"github.com/dedicate-place/backend/internal/pkg/apperror"
	"github.com/dedicate-place/backend/internal/repository"
	"github.com/dedicate-place/backend/internal/validation"
)

// ObjectRepositoryIface описывает зависимости ObjectService от слоя хранилища.
type ObjectRepositoryIface interface {
	Create(ctx context.Context, object *models.Object) error
	GetByID(ctx context.Context, id int64) (*models.Object, error)
	Update(ctx context.Context, object *models.Object) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, params repository.ObjectListParams) ([]models.Object, int, error)
	Stats(ctx context.Context) (*models.ObjectStats, error)
}

// ObjectService инкапсулирует бизнес-логику объектов спонсорства.
// Статистика по объектам кэшируется и пересчитывается с дебаунсом: всплеск
// изменений (массовая загрузка провайдера) приводит к одному пересчёту,
// а не к пересчёту на каждую запись.
type ObjectService struct {
	repo ObjectRepositoryIface

	statsMu      sync.RWMutex
	statsCache   *models.ObjectStats
	statsRefresh *debounce.Debouncer
}

// NewObjectService создаёт сервис объектов.
func NewObjectService(repo ObjectRepositoryIface) *ObjectService {
	return &ObjectService{
		repo:         repo,
		statsRefresh: debounce.New(debounce.DefaultWait),
	}
}

// validateObjectForm проверяет поля формы объекта.
func validateObjectForm(form *dto.ObjectForm) error {
	if form.TitleDE == "" && form.TitleEN == "" {
		return apperror.New(apperror.ErrCodeValidation, "нужно указать название хотя бы на одном языке")
	}
	if err := validation.ValidateLength("название (DE)", form.TitleDE, 0, validation.MaxTitleLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("название (EN)", form.TitleEN, 0, validation.MaxTitleLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание (DE)", form.DescriptionDE, 0, validation.MaxDescriptionLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание (EN)", form.DescriptionEN, 0, validation.MaxDescriptionLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	if !models.ValidObjectType(form.Type) {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый тип объекта")
	}
	if form.Type == models.ObjectTypeCustom && form.CustomTypeName == "" {
		return apperror.New(apperror.ErrCodeValidation, "для произвольного типа нужно название типа")
	}

	status := form.Status
	if status != "" && !models.ValidObjectStatus(status) {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый статус объекта")
	}

	if err := validation.ValidateLatitude(form.Latitude.Value); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLongitude(form.Longitude.Value); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePrice(form.Price.Value); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePlaque(form.PlaqueAllowed, form.PlaqueMaxChars.Value); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateImageURLs(form.ImageURLs); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	for field, value := range map[string]string{
		"booking_url": form.BookingURL,
		"share_url":   form.ShareURL,
		"map_url":     form.MapURL,
	} {
		if err := validation.ValidateURL(field, value); err != nil {
			return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	return nil
}

// applyObjectForm переносит данные формы в модель.
func applyObjectForm(object *models.Object, form *dto.ObjectForm) {
	object.TitleDE = optString(form.TitleDE)
	object.TitleEN = optString(form.TitleEN)
	object.DescriptionDE = optString(form.DescriptionDE)
	object.DescriptionEN = optString(form.DescriptionEN)
	object.Type = form.Type
	object.CustomTypeName = optString(form.CustomTypeName)
	object.SpecialTag = optString(form.SpecialTag)
	object.Latitude = form.Latitude.Value
	object.Longitude = form.Longitude.Value
	object.LocationText = optString(form.LocationText)
	object.Price = form.Price.Value
	object.PlaqueAllowed = form.PlaqueAllowed
	object.PlaqueMaxChars = form.PlaqueMaxChars.Value
	object.ImageURLs = form.ImageURLs
	object.BookingURL = optString(form.BookingURL)
	object.ShareURL = optString(form.ShareURL)
	object.MapURL = optString(form.MapURL)

	if form.Status != "" {
		object.Status = form.Status
	} else if object.Status == "" {
		object.Status = models.ObjectStatusAvailable
	}

	// Лимит символов таблички без разрешённой таблички не хранится
	if !object.PlaqueAllowed {
		object.PlaqueMaxChars = nil
	}
}

// Create создаёт объект от имени провайдера.
func (s *ObjectService) Create(ctx context.Context, providerID uuid.UUID, form *dto.ObjectForm) (*models.Object, error) {
	if err := validateObjectForm(form); err != nil {
		return nil, err
	}

	object := &models.Object{ProviderID: providerID}
	applyObjectForm(object, form)

	if err := s.repo.Create(ctx, object); err != nil {
		return nil, err
	}

	s.scheduleStatsRefresh()
	return object, nil
}

// GetByID возвращает объект.
func (s *ObjectService) GetByID(ctx context.Context, id int64) (*models.Object, error) {
	object, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, apperror.ErrObjectNotFound
		}
		return nil, err
	}
	return object, nil
}

// Update редактирует объект. Провайдер может менять только свои объекты,
// админ - любые.
func (s *ObjectService) Update(ctx context.Context, actorID uuid.UUID, actorRole string, id int64, form *dto.ObjectForm) (*models.Object, error) {
	object, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actorRole != models.RoleAdmin && object.ProviderID != actorID {
		return nil, apperror.ErrForbidden
	}

	if err := validateObjectForm(form); err != nil {
		return nil, err
	}

	applyObjectForm(object, form)

	if err := s.repo.Update(ctx, object); err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, apperror.ErrObjectNotFound
		}
		return nil, err
	}

	s.scheduleStatsRefresh()
	return object, nil
}

// UpdateStatus меняет статус объекта с той же проверкой владения.
func (s *ObjectService) UpdateStatus(ctx context.Context, actorID uuid.UUID, actorRole string, id int64, status string) error {
	if !models.ValidObjectStatus(status) {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый статус объекта")
	}

	object, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if actorRole != models.RoleAdmin && object.ProviderID != actorID {
		return apperror.ErrForbidden
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return apperror.ErrObjectNotFound
		}
		return err
	}

	s.scheduleStatsRefresh()
	return nil
}

// Delete удаляет объект с той же проверкой владения.
func (s *ObjectService) Delete(ctx context.Context, actorID uuid.UUID, actorRole string, id int64) error {
	object, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if actorRole != models.RoleAdmin && object.ProviderID != actorID {
		return apperror.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return apperror.ErrObjectNotFound
		}
		return err
	}

	s.scheduleStatsRefresh()
	return nil
}

// ListPublic возвращает публичную витрину объектов.
func (s *ObjectService) ListPublic(ctx context.Context, page pagination.Request) ([]models.Object, pagination.Meta, error) {
	objects, total, err := s.repo.List(ctx, repository.ObjectListParams{
		Page:       page,
		PublicOnly: true,
	})
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return objects, pagination.NewMeta(page, total), nil
}

// ListByProvider возвращает объекты провайдера.
func (s *ObjectService) ListByProvider(ctx context.Context, providerID uuid.UUID, page pagination.Request) ([]models.Object, pagination.Meta, error) {
	objects, total, err := s.repo.List(ctx, repository.ObjectListParams{
		Page:       page,
		ProviderID: &providerID,
	})
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return objects, pagination.NewMeta(page, total), nil
}

// ListAll возвращает все объекты для админки.
func (s *ObjectService) ListAll(ctx context.Context, page pagination.Request) ([]models.Object, pagination.Meta, error) {
	objects, total, err := s.repo.List(ctx, repository.ObjectListParams{Page: page})
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return objects, pagination.NewMeta(page, total), nil
}

// Stats возвращает статистику по объектам из кэша.
// При пустом кэше статистика считается синхронно.
func (s *ObjectService) Stats(ctx context.Context) (*models.ObjectStats, error) {
	s.statsMu.RLock()
	cached := s.statsCache
	s.statsMu.RUnlock()

	if cached != nil {
		return cached, nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}

	s.statsMu.Lock()
	s.statsCache = stats
	s.statsMu.Unlock()

	return stats, nil
}

// scheduleStatsRefresh планирует пересчёт кэша статистики с дебаунсом.
func (s *ObjectService) scheduleStatsRefresh() {
	s.statsRefresh.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		stats, err := s.repo.Stats(ctx)
		if err != nil {
			if logger.Log != nil {
				logger.Log.WithField("error", err.Error()).Warn("object service: не удалось пересчитать статистику")
			}
			return
		}

		s.statsMu.Lock()
		s.statsCache = stats
		s.statsMu.Unlock()
	})
}

// Close останавливает отложенные задачи сервиса.
func (s *ObjectService) Close() {
	s.statsRefresh.Stop()
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/pagination"
	"github.com/dedicate-place/backend/internal/pkg/apperror"
	"github.com/dedicate-place/backend/internal/repository"
	"github.com/dedicate-place/backend/internal/validation"
)

// ReportRepositoryIface описывает зависимости ReportService от слоя хранилища.
type ReportRepositoryIface interface {
	Create(ctx context.Context, report *models.GuardianReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GuardianReport, error)
	Update(ctx context.Context, report *models.GuardianReport) error
	Approve(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params repository.ReportListParams) ([]models.ReportWithDetails, int, error)
}

// ReportObjectRepository нужен сервису для проверки существования объекта.
type ReportObjectRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Object, error)
}

// ReportService инкапсулирует бизнес-логику отчётов хранителей.
type ReportService struct {
	repo    ReportRepositoryIface
	objects ReportObjectRepository
}

// NewReportService создаёт сервис отчётов.
func NewReportService(repo ReportRepositoryIface, objects ReportObjectRepository) *ReportService {
	return &ReportService{
		repo:    repo,
		objects: objects,
	}
}

func validateReportForm(form *dto.ReportForm) error {
	if !models.ValidReportStatus(form.StatusType) {
		return apperror.New(apperror.ErrCodeValidation, "недопустимый статус состояния")
	}
	if err := validation.ValidateLength("примечание", form.StatusNote, 0, validation.MaxNoteLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("описание места", form.LocationText, 0, validation.MaxLocationLength); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateImageURLs(form.ImageURLs); err != nil {
		return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	return nil
}

// Create создаёт отчёт от имени хранителя. Объект должен существовать.
func (s *ReportService) Create(ctx context.Context, guardianID uuid.UUID, form *dto.ReportForm) (*models.GuardianReport, error) {
	if err := validateReportForm(form); err != nil {
		return nil, err
	}

	if _, err := s.objects.GetByID(ctx, form.ObjectID); err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			return nil, apperror.ErrObjectNotFound
		}
		return nil, err
	}

	report := &models.GuardianReport{
		GuardianID:   guardianID,
		ObjectID:     form.ObjectID,
		StatusType:   form.StatusType,
		StatusNote:   optString(form.StatusNote),
		LocationText: optString(form.LocationText),
		ImageURLs:    form.ImageURLs,
		IsPublic:     form.IsPublic,
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

// GetByID возвращает отчёт. Чужой отчёт доступен только админу,
// либо всем, если он публичный и одобренный.
func (s *ReportService) GetByID(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID) (*models.GuardianReport, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, err
	}

	if actorRole == models.RoleAdmin || report.GuardianID == actorID {
		return report, nil
	}
	if report.IsPublic && report.Approved {
		return report, nil
	}

	return nil, apperror.ErrForbidden
}

// Update редактирует отчёт. Хранитель правит только свои отчёты и только
// пока они не одобрены, админ правит любые.
func (s *ReportService) Update(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID, form *dto.ReportForm) (*models.GuardianReport, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, err
	}

	if actorRole != models.RoleAdmin {
		if report.GuardianID != actorID {
			return nil, apperror.ErrForbidden
		}
		if report.Approved {
			return nil, apperror.New(apperror.ErrCodeForbidden, "одобренный отчёт редактировать нельзя")
		}
	}

	if err := validateReportForm(form); err != nil {
		return nil, err
	}

	report.StatusType = form.StatusType
	report.StatusNote = optString(form.StatusNote)
	report.LocationText = optString(form.LocationText)
	report.ImageURLs = form.ImageURLs
	report.IsPublic = form.IsPublic

	if err := s.repo.Update(ctx, report); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, err
	}

	return report, nil
}

// Approve одобряет отчёт. Доступно только админу, переход только false -> true.
func (s *ReportService) Approve(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Approve(ctx, id); err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			return apperror.ErrReportNotFound
		}
		return err
	}
	return nil
}

// ListByGuardian возвращает отчёты хранителя.
func (s *ReportService) ListByGuardian(ctx context.Context, guardianID uuid.UUID, page pagination.Request) ([]models.ReportWithDetails, pagination.Meta, error) {
	reports, total, err := s.repo.List(ctx, repository.ReportListParams{
		Page:       page,
		GuardianID: &guardianID,
	})
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return reports, pagination.NewMeta(page, total), nil
}

// ListPublicByObject возвращает публичные одобренные отчёты по объекту.
func (s *ReportService) ListPublicByObject(ctx context.Context, objectID int64, page pagination.Request) ([]models.ReportWithDetails, pagination.Meta, error) {
	reports, total, err := s.repo.List(ctx, repository.ReportListParams{
		Page:               page,
		ObjectID:           &objectID,
		PublicApprovedOnly: true,
	})
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return reports, pagination.NewMeta(page, total), nil
}

// ListAll возвращает все отчёты для админки.
func (s *ReportService) ListAll(ctx context.Context, page pagination.Request) ([]models.ReportWithDetails, pagination.Meta, error) {
	reports, total, err := s.repo.List(ctx, repository.ReportListParams{Page: page})
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return reports, pagination.NewMeta(page, total), nil
}

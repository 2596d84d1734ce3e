package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/pagination"
	"github.com/dedicate-place/backend/internal/repository/common"
)

// ErrReportNotFound возвращается, когда отчёт не найден.
var ErrReportNotFound = errors.New("report not found")

// ReportRepository отвечает за работу с таблицей guardian_reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository создаёт экземпляр репозитория.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create сохраняет новый отчёт. Новый отчёт всегда не одобрен.
func (r *ReportRepository) Create(ctx context.Context, report *models.GuardianReport) error {
	query := `
		INSERT INTO guardian_reports (guardian_id, object_id, status_type, status_note, location_text, image_urls, is_public, approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		RETURNING id, approved, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		report.GuardianID, report.ObjectID, report.StatusType, report.StatusNote,
		report.LocationText, report.ImageURLs, report.IsPublic,
	).Scan(&report.ID, &report.Approved, &report.CreatedAt, &report.UpdatedAt); err != nil {
		return fmt.Errorf("report repository: create %w", err)
	}

	return nil
}

// GetByID возвращает отчёт по идентификатору.
func (r *ReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GuardianReport, error) {
	return common.GetByID[models.GuardianReport](ctx, r.db, "guardian_reports", id, ErrReportNotFound)
}

// Update перезаписывает содержимое отчёта. Флаг approved здесь не трогается:
// одобрение идёт только через Approve.
func (r *ReportRepository) Update(ctx context.Context, report *models.GuardianReport) error {
	query := `
		UPDATE guardian_reports
		SET status_type = $2,
			status_note = $3,
			location_text = $4,
			image_urls = $5,
			is_public = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		report.ID, report.StatusType, report.StatusNote, report.LocationText,
		report.ImageURLs, report.IsPublic,
	).Scan(&report.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReportNotFound
		}
		return fmt.Errorf("report repository: update %w", err)
	}

	return nil
}

// Approve одобряет отчёт. Переход только false -> true: уже одобренный отчёт
// обратно не снимается, поэтому условие approved = FALSE.
func (r *ReportRepository) Approve(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(
		ctx,
		`UPDATE guardian_reports SET approved = TRUE, updated_at = NOW() WHERE id = $1 AND approved = FALSE`,
		id,
	)
	if err != nil {
		return fmt.Errorf("report repository: approve %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("report repository: approve rows affected %w", err)
	}
	if affected == 0 {
		// Либо отчёта нет, либо он уже одобрен. Повторное одобрение не ошибка.
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM guardian_reports WHERE id = $1)`, id); err != nil {
			return fmt.Errorf("report repository: approve check %w", err)
		}
		if !exists {
			return ErrReportNotFound
		}
	}

	return nil
}

// ReportListParams задаёт выборку списка отчётов.
// GuardianID сужает список до отчётов конкретного хранителя,
// PublicApprovedOnly оставляет только публичные одобренные отчёты.
type ReportListParams struct {
	Page               pagination.Request
	GuardianID         *uuid.UUID
	ObjectID           *int64
	PublicApprovedOnly bool
}

// List возвращает страницу отчётов с данными хранителя и объекта.
// Поиск идёт по location_text и status_note, фильтр status_type по статусу
// состояния. Подсчёт и выборка выполняются в одной транзакции.
func (r *ReportRepository) List(ctx context.Context, params ReportListParams) ([]models.ReportWithDetails, int, error) {
	page := params.Page.Normalized()

	query := `
		SELECT gr.id, gr.guardian_id, gr.object_id, gr.status_type, gr.status_note,
		       gr.location_text, gr.image_urls, gr.is_public, gr.approved,
		       gr.created_at, gr.updated_at,
		       p.first_name AS guardian_first_name,
		       p.last_name AS guardian_last_name,
		       p.email AS guardian_email,
		       o.title_de AS object_title_de,
		       o.title_en AS object_title_en
		FROM guardian_reports gr
		LEFT JOIN profiles p ON p.id = gr.guardian_id
		LEFT JOIN objects o ON o.id = gr.object_id
		WHERE 1=1
	`
	countQuery := `SELECT COUNT(*) FROM guardian_reports gr WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if params.GuardianID != nil {
		clause := fmt.Sprintf(" AND gr.guardian_id = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, *params.GuardianID)
		argIndex++
	}

	if params.ObjectID != nil {
		clause := fmt.Sprintf(" AND gr.object_id = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, *params.ObjectID)
		argIndex++
	}

	if params.PublicApprovedOnly {
		clause := " AND gr.is_public = TRUE AND gr.approved = TRUE"
		query += clause
		countQuery += clause
	}

	// Поиск по тексту
	if page.Search != "" {
		clause := fmt.Sprintf(" AND (gr.location_text ILIKE $%d OR gr.status_note ILIKE $%d)", argIndex, argIndex)
		query += clause
		countQuery += clause
		args = append(args, "%"+page.Search+"%")
		argIndex++
	}

	// Фильтр по статусу состояния
	if statusType, ok := page.ActiveFilters()["status_type"]; ok {
		clause := fmt.Sprintf(" AND gr.status_type = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, statusType)
		argIndex++
	}

	query += " ORDER BY gr.created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)

	var (
		reports []models.ReportWithDetails
		total   int
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total, countQuery, args...); err != nil {
			return fmt.Errorf("report repository: count %w", err)
		}

		pageArgs := append(args, page.RowsPerPage, page.Offset())
		if err := tx.SelectContext(ctx, &reports, query, pageArgs...); err != nil {
			return fmt.Errorf("report repository: list %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

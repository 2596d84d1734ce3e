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

// ErrObjectNotFound возвращается, когда объект не найден.
var ErrObjectNotFound = errors.New("object not found")

// ObjectRepository отвечает за работу с таблицей objects.
type ObjectRepository struct {
	db *sqlx.DB
}

// NewObjectRepository создаёт экземпляр репозитория.
func NewObjectRepository(db *sqlx.DB) *ObjectRepository {
	return &ObjectRepository{db: db}
}

// Create сохраняет новый объект.
func (r *ObjectRepository) Create(ctx context.Context, object *models.Object) error {
	query := `
		INSERT INTO objects (
			provider_id, title_de, title_en, description_de, description_en,
			type, custom_type_name, special_tag, latitude, longitude, location_text,
			price, status, plaque_allowed, plaque_max_chars, image_urls,
			booking_url, share_url, map_url
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		object.ProviderID, object.TitleDE, object.TitleEN, object.DescriptionDE, object.DescriptionEN,
		object.Type, object.CustomTypeName, object.SpecialTag, object.Latitude, object.Longitude, object.LocationText,
		object.Price, object.Status, object.PlaqueAllowed, object.PlaqueMaxChars, object.ImageURLs,
		object.BookingURL, object.ShareURL, object.MapURL,
	).Scan(&object.ID, &object.CreatedAt, &object.UpdatedAt); err != nil {
		return fmt.Errorf("object repository: create %w", err)
	}

	return nil
}

// GetByID возвращает объект по идентификатору.
func (r *ObjectRepository) GetByID(ctx context.Context, id int64) (*models.Object, error) {
	return common.GetByID[models.Object](ctx, r.db, "objects", id, ErrObjectNotFound)
}

// Update перезаписывает все редактируемые поля объекта.
func (r *ObjectRepository) Update(ctx context.Context, object *models.Object) error {
	query := `
		UPDATE objects
		SET title_de = $2,
			title_en = $3,
			description_de = $4,
			description_en = $5,
			type = $6,
			custom_type_name = $7,
			special_tag = $8,
			latitude = $9,
			longitude = $10,
			location_text = $11,
			price = $12,
			status = $13,
			plaque_allowed = $14,
			plaque_max_chars = $15,
			image_urls = $16,
			booking_url = $17,
			share_url = $18,
			map_url = $19,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		object.ID,
		object.TitleDE, object.TitleEN, object.DescriptionDE, object.DescriptionEN,
		object.Type, object.CustomTypeName, object.SpecialTag,
		object.Latitude, object.Longitude, object.LocationText,
		object.Price, object.Status, object.PlaqueAllowed, object.PlaqueMaxChars,
		object.ImageURLs, object.BookingURL, object.ShareURL, object.MapURL,
	).Scan(&object.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("object repository: update %w", err)
	}

	return nil
}

// UpdateStatus меняет только статус объекта.
func (r *ObjectRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE objects SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("object repository: update status %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("object repository: update status rows affected %w", err)
	}
	if affected == 0 {
		return ErrObjectNotFound
	}

	return nil
}

// Delete удаляет объект. Удаление жёсткое, строка исчезает из таблицы.
func (r *ObjectRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM objects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("object repository: delete %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("object repository: delete rows affected %w", err)
	}
	if affected == 0 {
		return ErrObjectNotFound
	}

	return nil
}

// ObjectListParams задаёт выборку списка объектов.
// ProviderID сужает список до объектов конкретного провайдера,
// PublicOnly скрывает объекты со статусом unavailable для публичной витрины.
type ObjectListParams struct {
	Page       pagination.Request
	ProviderID *uuid.UUID
	PublicOnly bool
}

// List возвращает страницу объектов и общее число строк под теми же условиями.
// Поиск идёт по title_de и title_en, фильтры status и type применяются поверх.
// Подсчёт и выборка выполняются в одной транзакции: обе стороны видят один
// снимок данных, и метаданные пагинации не могут разойтись со страницей.
func (r *ObjectRepository) List(ctx context.Context, params ObjectListParams) ([]models.Object, int, error) {
	page := params.Page.Normalized()

	query := `
		SELECT id, provider_id, title_de, title_en, description_de, description_en,
		       type, custom_type_name, special_tag, latitude, longitude, location_text,
		       price, status, plaque_allowed, plaque_max_chars, image_urls,
		       booking_url, share_url, map_url, created_at, updated_at
		FROM objects
		WHERE 1=1
	`
	countQuery := `SELECT COUNT(*) FROM objects WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if params.ProviderID != nil {
		clause := fmt.Sprintf(" AND provider_id = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, *params.ProviderID)
		argIndex++
	}

	if params.PublicOnly {
		clause := " AND status <> 'unavailable'"
		query += clause
		countQuery += clause
	}

	// Поиск по названию
	if page.Search != "" {
		clause := fmt.Sprintf(" AND (title_de ILIKE $%d OR title_en ILIKE $%d)", argIndex, argIndex)
		query += clause
		countQuery += clause
		args = append(args, "%"+page.Search+"%")
		argIndex++
	}

	filters := page.ActiveFilters()

	// Фильтр по статусу
	if status, ok := filters["status"]; ok {
		clause := fmt.Sprintf(" AND status = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, status)
		argIndex++
	}

	// Фильтр по типу объекта
	if objectType, ok := filters["type"]; ok {
		clause := fmt.Sprintf(" AND type = $%d", argIndex)
		query += clause
		countQuery += clause
		args = append(args, objectType)
		argIndex++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)

	var (
		objects []models.Object
		total   int
	)

	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total, countQuery, args...); err != nil {
			return fmt.Errorf("object repository: count %w", err)
		}

		pageArgs := append(args, page.RowsPerPage, page.Offset())
		if err := tx.SelectContext(ctx, &objects, query, pageArgs...); err != nil {
			return fmt.Errorf("object repository: list %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return objects, total, nil
}

// Stats возвращает агрегированную статистику по объектам.
func (r *ObjectRepository) Stats(ctx context.Context) (*models.ObjectStats, error) {
	var stats models.ObjectStats
	query := `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE status = 'available') AS available
		FROM objects
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("object repository: stats %w", err)
	}

	return &stats, nil
}

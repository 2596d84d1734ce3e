package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/repository/common"
)

// ErrPaymentNotFound возвращается, когда платёж не найден.
var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository отвечает за работу с таблицей payments.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository создаёт экземпляр репозитория.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create сохраняет новую попытку оплаты.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	query := `
		INSERT INTO payments (object_id, amount, currency, provider_intent_id, client_secret, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	if err := r.db.QueryRowxContext(
		ctx, query,
		payment.ObjectID, payment.Amount, payment.Currency,
		payment.ProviderIntentID, payment.ClientSecret, payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt); err != nil {
		return fmt.Errorf("payment repository: create %w", err)
	}

	return nil
}

// GetByID возвращает платёж по идентификатору.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return common.GetByID[models.Payment](ctx, r.db, "payments", id, ErrPaymentNotFound)
}

// GetByIntentID возвращает платёж по идентификатору intent у платёжного провайдера.
// Используется вебхуком, который знает только внешний идентификатор.
func (r *PaymentRepository) GetByIntentID(ctx context.Context, intentID string) (*models.Payment, error) {
	return common.GetByField[models.Payment](ctx, r.db, "payments", "provider_intent_id", intentID, ErrPaymentNotFound)
}

// UpdateStatus записывает новый статус платежа и код ошибки, если он есть.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorCode *string) error {
	query := `
		UPDATE payments
		SET status = $2, error_code = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	var updatedAt sql.NullTime
	if err := r.db.QueryRowxContext(ctx, query, id, status, errorCode).Scan(&updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPaymentNotFound
		}
		return fmt.Errorf("payment repository: update status %w", err)
	}

	return nil
}

// ListByObject возвращает платежи по объекту, новые сверху.
func (r *PaymentRepository) ListByObject(ctx context.Context, objectID int64) ([]models.Payment, error) {
	query := `
		SELECT id, object_id, amount, currency, provider_intent_id, client_secret, status, error_code, created_at, updated_at
		FROM payments
		WHERE object_id = $1
		ORDER BY created_at DESC
	`

	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, objectID); err != nil {
		return nil, fmt.Errorf("payment repository: list by object %w", err)
	}

	return payments, nil
}
